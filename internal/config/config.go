package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfiguration indicates an invalid configuration value. Configuration
// problems are fatal at startup, never per evaluation.
var ErrConfiguration = errors.New("invalid configuration")

// FiltersConfig holds the per-stock eligibility thresholds.
type FiltersConfig struct {
	Tolerance          float64 `yaml:"tolerance"`
	Drawdown20DMax     float64 `yaml:"drawdown_20d_max"`
	High52wMaxMultiple float64 `yaml:"high_52w_max_multiple"`
}

// TriggerToggle enables or disables one trigger kind.
type TriggerToggle struct {
	Enabled bool `yaml:"enabled"`
}

// TriggersConfig holds the trigger feature switches and thresholds.
type TriggersConfig struct {
	Pullback25         TriggerToggle `yaml:"pullback_25"`
	Pullback50         TriggerToggle `yaml:"pullback_50"`
	Breakout20D        TriggerToggle `yaml:"breakout_20d"`
	BreakoutVolumeMult float64       `yaml:"breakout_volume_mult"`
}

// RegimeBands holds the lower bound of each regime band above RiskOff.
// Lower bounds are inclusive.
type RegimeBands struct {
	CautionMin float64 `yaml:"caution_min"`
	NeutralMin float64 `yaml:"neutral_min"`
	RiskOnMin  float64 `yaml:"risk_on_min"`
}

// RegimeExposure holds the default maximum exposure fraction per state.
type RegimeExposure struct {
	RiskOff float64 `yaml:"risk_off"`
	Caution float64 `yaml:"caution"`
	Neutral float64 `yaml:"neutral"`
	RiskOn  float64 `yaml:"risk_on"`
}

// RegimeConfig holds the regime classifier calibration.
type RegimeConfig struct {
	Bands            RegimeBands    `yaml:"bands"`
	Exposure         RegimeExposure `yaml:"exposure"`
	RiskOffScoreDrop float64        `yaml:"risk_off_score_drop"`
	RiskOffHaircut   float64        `yaml:"risk_off_haircut"`
}

// ProviderConfig holds one market-data provider's endpoint settings.
type ProviderConfig struct {
	BaseURL    string `yaml:"base_url"`
	OutputSize int    `yaml:"output_size"`
}

// DataConfig holds data-provider, cache, retry and throttle settings.
type DataConfig struct {
	ProviderPrimary  string         `yaml:"provider_primary"`
	ProviderFallback string         `yaml:"provider_fallback"`
	TwelveData       ProviderConfig `yaml:"twelvedata"`
	AlphaVantage     ProviderConfig `yaml:"alphavantage"`
	Conditions       struct {
		FredURL    string `yaml:"fred_url"`
		ChicagoURL string `yaml:"chicago_url"`
	} `yaml:"conditions"`
	Cache struct {
		Enabled    bool   `yaml:"enabled"`
		Dir        string `yaml:"dir"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"cache"`
	Retry struct {
		MaxAttempts      int     `yaml:"max_attempts"`
		BaseDelaySeconds float64 `yaml:"base_delay_seconds"`
		MaxDelaySeconds  float64 `yaml:"max_delay_seconds"`
	} `yaml:"retry"`
	RateLimit struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerMinute float64 `yaml:"requests_per_minute"`
	} `yaml:"rate_limit"`
}

// NotificationsConfig selects delivery channels. Credentials come from the
// environment, not the config file.
type NotificationsConfig struct {
	SlackEnabled    bool `yaml:"slack_enabled"`
	PushoverEnabled bool `yaml:"pushover_enabled"`
	EmailEnabled    bool `yaml:"email_enabled"`
}

// Config holds all application configuration. It is immutable after Load and
// passed explicitly into every computation.
type Config struct {
	App struct {
		LogLevel string `yaml:"log_level"`
		Timezone string `yaml:"timezone"`
	} `yaml:"app"`
	Symbols       []string            `yaml:"symbols"`
	IndexSymbol   string              `yaml:"index_symbol"`
	Filters       FiltersConfig       `yaml:"filters"`
	Triggers      TriggersConfig      `yaml:"triggers"`
	Regime        RegimeConfig        `yaml:"regime"`
	Data          DataConfig          `yaml:"data"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Database      struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
}

// Default returns a Config with every recognized option set to its default.
func Default() *Config {
	cfg := &Config{}
	cfg.App.LogLevel = "info"
	cfg.App.Timezone = "UTC"
	cfg.IndexSymbol = "QQQ"

	cfg.Filters.Tolerance = 0.005
	cfg.Filters.Drawdown20DMax = 0.15
	cfg.Filters.High52wMaxMultiple = 1.05

	cfg.Triggers.Pullback25.Enabled = true
	cfg.Triggers.Pullback50.Enabled = true
	cfg.Triggers.Breakout20D.Enabled = true
	cfg.Triggers.BreakoutVolumeMult = 1.2

	cfg.Regime.Bands = RegimeBands{CautionMin: 25, NeutralMin: 50, RiskOnMin: 75}
	cfg.Regime.Exposure = RegimeExposure{RiskOff: 0.0, Caution: 0.25, Neutral: 0.5, RiskOn: 1.0}
	cfg.Regime.RiskOffScoreDrop = -7.5
	cfg.Regime.RiskOffHaircut = 0.5

	cfg.Data.ProviderPrimary = "twelvedata"
	cfg.Data.ProviderFallback = "alphavantage"
	cfg.Data.TwelveData = ProviderConfig{BaseURL: "https://api.twelvedata.com/time_series", OutputSize: 320}
	cfg.Data.AlphaVantage = ProviderConfig{BaseURL: "https://www.alphavantage.co/query", OutputSize: 320}
	cfg.Data.Conditions.FredURL = "https://fred.stlouisfed.org/graph/fredgraph.csv?id=NFCI"
	cfg.Data.Conditions.ChicagoURL = "https://www.chicagofed.org/~/media/publications/nfci/nfci-data-series-csv.csv"
	cfg.Data.Cache.Enabled = true
	cfg.Data.Cache.Dir = ".cache"
	cfg.Data.Cache.TTLSeconds = 6 * 3600
	cfg.Data.Retry.MaxAttempts = 3
	cfg.Data.Retry.BaseDelaySeconds = 2
	cfg.Data.Retry.MaxDelaySeconds = 30
	cfg.Data.RateLimit.Enabled = true
	cfg.Data.RateLimit.RequestsPerMinute = 8

	cfg.Notifications.SlackEnabled = true
	cfg.Notifications.PushoverEnabled = false
	cfg.Notifications.EmailEnabled = true

	cfg.Schedule.DailyCron = "0 30 21 * * 1-5" // after US close, UTC

	return cfg
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. A missing file yields pure defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = cfg.Symbols[:0]
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Symbols = append(cfg.Symbols, s)
			}
		}
	}
	if v := os.Getenv("INDEX_SYMBOL"); v != "" {
		cfg.IndexSymbol = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}

	return cfg, nil
}

// Validate checks threshold ranges and band ordering.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("%w: symbols must not be empty", ErrConfiguration)
	}
	if c.IndexSymbol == "" {
		return fmt.Errorf("%w: index_symbol is required", ErrConfiguration)
	}
	if c.Filters.Tolerance < 0 {
		return fmt.Errorf("%w: filters.tolerance must be non-negative", ErrConfiguration)
	}
	if c.Filters.Drawdown20DMax < 0 || c.Filters.Drawdown20DMax > 1 {
		return fmt.Errorf("%w: filters.drawdown_20d_max must be in [0,1]", ErrConfiguration)
	}
	if c.Filters.High52wMaxMultiple <= 0 {
		return fmt.Errorf("%w: filters.high_52w_max_multiple must be positive", ErrConfiguration)
	}
	if c.Triggers.BreakoutVolumeMult <= 0 {
		return fmt.Errorf("%w: triggers.breakout_volume_mult must be positive", ErrConfiguration)
	}
	b := c.Regime.Bands
	if !(0 < b.CautionMin && b.CautionMin < b.NeutralMin && b.NeutralMin < b.RiskOnMin && b.RiskOnMin <= 100) {
		return fmt.Errorf("%w: regime.bands must satisfy 0 < caution_min < neutral_min < risk_on_min <= 100", ErrConfiguration)
	}
	e := c.Regime.Exposure
	for name, v := range map[string]float64{
		"risk_off": e.RiskOff, "caution": e.Caution, "neutral": e.Neutral, "risk_on": e.RiskOn,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: regime.exposure.%s must be in [0,1]", ErrConfiguration, name)
		}
	}
	if !(e.RiskOff <= e.Caution && e.Caution <= e.Neutral && e.Neutral <= e.RiskOn) {
		return fmt.Errorf("%w: regime.exposure must be non-decreasing from risk_off to risk_on", ErrConfiguration)
	}
	if c.Regime.RiskOffScoreDrop >= 0 {
		return fmt.Errorf("%w: regime.risk_off_score_drop must be negative", ErrConfiguration)
	}
	if c.Regime.RiskOffHaircut <= 0 || c.Regime.RiskOffHaircut > 1 {
		return fmt.Errorf("%w: regime.risk_off_haircut must be in (0,1]", ErrConfiguration)
	}
	if c.Data.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: data.retry.max_attempts must be at least 1", ErrConfiguration)
	}
	if c.Data.RateLimit.Enabled && c.Data.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("%w: data.rate_limit.requests_per_minute must be positive", ErrConfiguration)
	}
	if c.Schedule.DailyCron == "" {
		return fmt.Errorf("%w: schedule.daily_cron is required", ErrConfiguration)
	}
	return nil
}
