package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quantfarm/harvest/internal/commodity"
	"github.com/quantfarm/harvest/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harvest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
logging:
  level: debug
  development: true
pipeline:
  initial_cash: 25000
  permutations: 1000
  seed: 42
commodities:
  coffee:
    hot_threshold: 35
    holding_months: 4
storage:
  cold:
    type: s3
    s3:
      bucket: harvest-reports
      region: us-east-1
notifiers:
  webhook:
    enabled: true
    url: https://example.com/hook
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 25000.0, cfg.Pipeline.InitialCash)
	assert.Equal(t, 1000, cfg.Pipeline.Permutations)
	assert.Equal(t, int64(42), cfg.Pipeline.Seed)

	// defaults survive partial files
	assert.Equal(t, 12, cfg.Pipeline.MaxHoldingMonths)
	assert.Equal(t, 2025, cfg.Pipeline.CutoffYear)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	require.Contains(t, cfg.Commodities, "coffee")
	require.NotNil(t, cfg.Commodities["coffee"].HotThreshold)
	assert.Equal(t, 35.0, *cfg.Commodities["coffee"].HotThreshold)

	assert.Equal(t, "s3", cfg.Storage.Cold.Type)
	assert.Equal(t, "harvest-reports", cfg.Storage.Cold.S3.Bucket)
	assert.True(t, cfg.Notifiers["webhook"].Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("HARVEST_TEST_BUCKET", "secret-bucket")
	path := writeConfig(t, `
storage:
  cold:
    type: s3
    s3:
      bucket: ${HARVEST_TEST_BUCKET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-bucket", cfg.Storage.Cold.S3.Bucket)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestOverride_Apply(t *testing.T) {
	cfg, err := commodity.Lookup(core.CommodityCoffee)
	require.NoError(t, err)

	hot := 40.0
	hold := 3
	o := Override{Symbol: "KC=X", HotThreshold: &hot, HoldingMonths: &hold}
	o.Apply(&cfg)

	assert.Equal(t, "KC=X", cfg.Symbol)
	assert.Equal(t, 40.0, cfg.Rules.Hot.Threshold)
	assert.Equal(t, 3, cfg.HoldingMonths)
	// untouched fields keep catalog values
	assert.Equal(t, 2.0, cfg.Rules.Cold.Threshold)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr *core.Error
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, core.ErrConfigInvalid},
		{"zero cash", func(c *Config) { c.Pipeline.InitialCash = 0 }, core.ErrConfigInvalid},
		{"inverted holding range", func(c *Config) {
			c.Pipeline.MinHoldingMonths = 6
			c.Pipeline.MaxHoldingMonths = 2
		}, core.ErrConfigInvalid},
		{"zero permutations", func(c *Config) { c.Pipeline.Permutations = 0 }, core.ErrConfigInvalid},
		{"unknown commodity override", func(c *Config) {
			c.Commodities = map[string]Override{"tulips": {}}
		}, core.ErrConfigInvalid},
		{"s3 without bucket", func(c *Config) { c.Storage.Cold.Type = "s3" }, core.ErrConfigMissing},
		{"unknown storage type", func(c *Config) { c.Storage.Cold.Type = "tape" }, core.ErrConfigInvalid},
		{"empty alert expr", func(c *Config) {
			c.Alerts.Rules = []AlertRule{{Name: "pv"}}
		}, core.ErrConfigMissing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.wantErr)
		})
	}

	assert.NoError(t, Defaults().Validate())
}
