package config

import (
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/worktrack/earnings-engine/engine"
)

type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	DatabasePath string `yaml:"database_path"`

	HourlyRate float64 `yaml:"hourly_rate"`
	Currency   string  `yaml:"currency"`

	TargetHoursDay   float64 `yaml:"target_hours_day"`
	TargetHoursWeek  float64 `yaml:"target_hours_week"`
	TargetHoursMonth float64 `yaml:"target_hours_month"`

	BulkDelayMillis     int `yaml:"bulk_delay_ms"`
	LockCooldownSeconds int `yaml:"lock_cooldown_seconds"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return default config if file doesn't exist
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing values
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":3050"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "worktrack.db"
	}
	if cfg.HourlyRate <= 0 {
		cfg.HourlyRate = 25
	}
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	if cfg.TargetHoursDay <= 0 {
		cfg.TargetHoursDay = 8
	}
	if cfg.TargetHoursWeek <= 0 {
		cfg.TargetHoursWeek = 40
	}
	if cfg.TargetHoursMonth <= 0 {
		cfg.TargetHoursMonth = 160
	}
	if cfg.BulkDelayMillis <= 0 {
		cfg.BulkDelayMillis = 500
	}
	if cfg.LockCooldownSeconds <= 0 {
		cfg.LockCooldownSeconds = 30
	}

	return &cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		ListenAddr:          ":3050",
		DatabasePath:        "worktrack.db",
		HourlyRate:          25,
		Currency:            "EUR",
		TargetHoursDay:      8,
		TargetHoursWeek:     40,
		TargetHoursMonth:    160,
		BulkDelayMillis:     500,
		LockCooldownSeconds: 30,
	}
}

func (c *Config) Rate() decimal.Decimal {
	return decimal.NewFromFloat(c.HourlyRate)
}

func (c *Config) Targets() engine.Targets {
	return engine.Targets{
		HoursPerDay: decimal.NewFromFloat(c.TargetHoursDay),
		WeekHours:   decimal.NewFromFloat(c.TargetHoursWeek),
		MonthHours:  decimal.NewFromFloat(c.TargetHoursMonth),
	}
}

func (c *Config) BulkDelay() time.Duration {
	return time.Duration(c.BulkDelayMillis) * time.Millisecond
}

func (c *Config) LockCooldown() time.Duration {
	return time.Duration(c.LockCooldownSeconds) * time.Second
}
