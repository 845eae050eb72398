package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "QQQ", cfg.IndexSymbol)
	assert.InDelta(t, 0.005, cfg.Filters.Tolerance, 1e-9)
	assert.InDelta(t, 0.15, cfg.Filters.Drawdown20DMax, 1e-9)
	assert.InDelta(t, 1.05, cfg.Filters.High52wMaxMultiple, 1e-9)
	assert.True(t, cfg.Triggers.Pullback25.Enabled)
	assert.True(t, cfg.Triggers.Pullback50.Enabled)
	assert.True(t, cfg.Triggers.Breakout20D.Enabled)
	assert.InDelta(t, 1.2, cfg.Triggers.BreakoutVolumeMult, 1e-9)
	assert.InDelta(t, -7.5, cfg.Regime.RiskOffScoreDrop, 1e-9)
	assert.InDelta(t, 0.5, cfg.Regime.RiskOffHaircut, 1e-9)
	assert.Equal(t, "twelvedata", cfg.Data.ProviderPrimary)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Filters, cfg.Filters)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
symbols: [AAPL, MSFT]
filters:
  tolerance: 0.01
triggers:
  pullback_50:
    enabled: false
regime:
  bands:
    risk_on_min: 80
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Symbols)
	assert.InDelta(t, 0.01, cfg.Filters.Tolerance, 1e-9)
	assert.False(t, cfg.Triggers.Pullback50.Enabled)
	assert.InDelta(t, 80, cfg.Regime.Bands.RiskOnMin, 1e-9)

	// untouched keys keep their defaults
	assert.True(t, cfg.Triggers.Pullback25.Enabled)
	assert.InDelta(t, 0.15, cfg.Filters.Drawdown20DMax, 1e-9)
	assert.InDelta(t, 25, cfg.Regime.Bands.CautionMin, 1e-9)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SYMBOLS", "NVDA, AMD ,TSLA")
	t.Setenv("INDEX_SYMBOL", "SPY")
	t.Setenv("SQLITE_PATH", "/tmp/t.db")
	t.Setenv("CRON_DAILY", "0 0 22 * * *")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, []string{"NVDA", "AMD", "TSLA"}, cfg.Symbols)
	assert.Equal(t, "SPY", cfg.IndexSymbol)
	assert.Equal(t, "/tmp/t.db", cfg.Database.SQLitePath)
	assert.Equal(t, "0 0 22 * * *", cfg.Schedule.DailyCron)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Symbols = []string{"AAPL"}
		return cfg
	}
	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no symbols", func(c *Config) { c.Symbols = nil }},
		{"empty index", func(c *Config) { c.IndexSymbol = "" }},
		{"negative tolerance", func(c *Config) { c.Filters.Tolerance = -0.1 }},
		{"drawdown out of range", func(c *Config) { c.Filters.Drawdown20DMax = 1.5 }},
		{"nonpositive multiple", func(c *Config) { c.Filters.High52wMaxMultiple = 0 }},
		{"nonpositive volume mult", func(c *Config) { c.Triggers.BreakoutVolumeMult = 0 }},
		{"bands out of order", func(c *Config) { c.Regime.Bands.NeutralMin = 80 }},
		{"exposure out of range", func(c *Config) { c.Regime.Exposure.RiskOn = 1.5 }},
		{"exposure not monotone", func(c *Config) { c.Regime.Exposure.Caution = 0.9 }},
		{"score drop not negative", func(c *Config) { c.Regime.RiskOffScoreDrop = 0 }},
		{"haircut out of range", func(c *Config) { c.Regime.RiskOffHaircut = 0 }},
		{"retry attempts", func(c *Config) { c.Data.Retry.MaxAttempts = 0 }},
		{"rate limit", func(c *Config) { c.Data.RateLimit.RequestsPerMinute = 0 }},
		{"empty cron", func(c *Config) { c.Schedule.DailyCron = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrConfiguration)
		})
	}
}
