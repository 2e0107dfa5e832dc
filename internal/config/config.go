package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/quantfarm/harvest/internal/commodity"
	"github.com/quantfarm/harvest/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server      Server                `mapstructure:"server"`
	Logging     Logging               `mapstructure:"logging"`
	Data        Data                  `mapstructure:"data"`
	Pipeline    Pipeline              `mapstructure:"pipeline"`
	Commodities map[string]Override   `mapstructure:"commodities"`
	Storage     Storage               `mapstructure:"storage"`
	Metrics     Metrics               `mapstructure:"metrics"`
	Notifiers   map[string]Notifier   `mapstructure:"notifiers"`
	Alerts      Alerts                `mapstructure:"alerts"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type Logging struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Data locates the on-disk CSV cache for temperature and price series.
type Data struct {
	Dir string `mapstructure:"dir"`
}

// Pipeline holds the run parameters shared by every commodity. Per-commodity
// values from the catalog win unless overridden below.
type Pipeline struct {
	InitialCash      float64 `mapstructure:"initial_cash"`
	MinHoldingMonths int     `mapstructure:"min_holding_months"`
	MaxHoldingMonths int     `mapstructure:"max_holding_months"`
	Permutations     int     `mapstructure:"permutations"`
	Seed             int64   `mapstructure:"seed"`
	CutoffYear       int     `mapstructure:"cutoff_year"`
}

// Override adjusts a single commodity's catalog entry.
type Override struct {
	Enabled       *bool    `mapstructure:"enabled"`
	Symbol        string   `mapstructure:"symbol"`
	HotThreshold  *float64 `mapstructure:"hot_threshold"`
	ColdThreshold *float64 `mapstructure:"cold_threshold"`
	HoldingMonths *int     `mapstructure:"holding_months"`
}

// Apply layers the override onto a catalog entry.
func (o Override) Apply(cfg *commodity.Config) {
	if o.Symbol != "" {
		cfg.Symbol = o.Symbol
	}
	if o.HotThreshold != nil {
		cfg.Rules.Hot.Threshold = *o.HotThreshold
	}
	if o.ColdThreshold != nil {
		cfg.Rules.Cold.Threshold = *o.ColdThreshold
	}
	if o.HoldingMonths != nil {
		cfg.HoldingMonths = *o.HoldingMonths
	}
}

type Storage struct {
	Cold ColdStorage `mapstructure:"cold"`
}

type ColdStorage struct {
	Type string `mapstructure:"type"` // "localfs" or "s3"
	Path string `mapstructure:"path"` // For localfs
	S3   S3     `mapstructure:"s3"`   // For S3
}

type S3 struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type Notifier struct {
	Enabled bool              `mapstructure:"enabled"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

type Alerts struct {
	Enabled bool        `mapstructure:"enabled"`
	Rules   []AlertRule `mapstructure:"rules"`
}

// AlertRule defines a single alert rule evaluated against report metrics.
type AlertRule struct {
	Name     string `mapstructure:"name"`
	Expr     string `mapstructure:"expr"`
	Severity string `mapstructure:"severity"`
	Message  string `mapstructure:"message"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logging: Logging{
			Level: "info",
		},
		Data: Data{
			Dir: "data",
		},
		Pipeline: Pipeline{
			InitialCash:      10000,
			MinHoldingMonths: 1,
			MaxHoldingMonths: 12,
			Permutations:     5000,
			Seed:             time.Now().UnixNano(),
			CutoffYear:       2025,
		},
		Storage: Storage{
			Cold: ColdStorage{
				Type: "localfs",
				Path: "archive",
			},
		},
		Metrics: Metrics{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Pipeline.InitialCash <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_cash must be positive, got %f", c.Pipeline.InitialCash))
	}
	if c.Pipeline.MinHoldingMonths < 1 || c.Pipeline.MaxHoldingMonths < c.Pipeline.MinHoldingMonths {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("holding month range [%d, %d] is invalid",
				c.Pipeline.MinHoldingMonths, c.Pipeline.MaxHoldingMonths))
	}
	if c.Pipeline.Permutations < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("permutations must be positive, got %d", c.Pipeline.Permutations))
	}

	for name := range c.Commodities {
		if _, err := commodity.Lookup(core.Commodity(name)); err != nil {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown commodity %q in overrides", name))
		}
	}

	switch c.Storage.Cold.Type {
	case "localfs":
		if c.Storage.Cold.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage path required for localfs"))
		}
	case "s3":
		if c.Storage.Cold.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when cold storage is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown cold storage type %q", c.Storage.Cold.Type))
	}

	for i, rule := range c.Alerts.Rules {
		if rule.Expr == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("alert rule %d has empty expr", i))
		}
	}

	return nil
}
