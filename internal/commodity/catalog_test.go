package commodity

import (
	"testing"
	"time"

	"github.com/quantfarm/harvest/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_CoversAllCommodities(t *testing.T) {
	catalog := Catalog()
	for _, c := range core.All() {
		cfg, ok := catalog[c]
		require.True(t, ok, "catalog missing %s", c)
		assert.Equal(t, c, cfg.Commodity)
		assert.NotEmpty(t, cfg.Symbol)
		assert.NotEmpty(t, cfg.Region.Name)
		assert.Equal(t, 10000.0, cfg.InitialCash)
		assert.Equal(t, 5000, cfg.Permutations)
		assert.Equal(t, 120, cfg.UniverseMonths)
		assert.Equal(t, 2025, cfg.CutoffYear)
		assert.Equal(t, 1, cfg.SweepMinMonths)
		assert.Equal(t, 12, cfg.SweepMaxMonths)
	}
}

func TestCatalog_CoffeeRules(t *testing.T) {
	cfg, err := Lookup(core.CommodityCoffee)
	require.NoError(t, err)

	assert.Equal(t, "KC=F", cfg.Symbol)
	assert.Equal(t, 33.0, cfg.Rules.Hot.Threshold)
	assert.ElementsMatch(t, []time.Month{time.September, time.October}, cfg.Rules.Hot.Months)
	assert.Equal(t, 2.0, cfg.Rules.Cold.Threshold)
	assert.ElementsMatch(t, []time.Month{time.June, time.July, time.August}, cfg.Rules.Cold.Months)
	assert.Equal(t, 7, cfg.ABHoldingMonths)
	assert.False(t, cfg.RollDrag)
}

func TestCatalog_LeanHogs(t *testing.T) {
	cfg, err := Lookup(core.CommodityLeanHogs)
	require.NoError(t, err)

	assert.Equal(t, "HE=F", cfg.Symbol)
	assert.True(t, cfg.RollDrag)
	assert.True(t, cfg.HasHumidity)
	assert.Equal(t, 6, cfg.ABHoldingMonths)

	// the shipped heat window never maps to a real month
	for m := time.January; m <= time.December; m++ {
		assert.False(t, cfg.Rules.Hot.Active(m), "hot rule unexpectedly active in %v", m)
	}
	assert.True(t, cfg.Rules.Cold.Active(time.December))
	assert.True(t, cfg.Rules.Cold.Active(time.March))
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup(core.Commodity("orange_juice"))
	assert.ErrorIs(t, err, core.ErrUnknownName)
}
