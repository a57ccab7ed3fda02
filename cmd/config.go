package cmd

import (
	"fmt"
	"time"

	"db-seed/internal/engine"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Active bool   `mapstructure:"active"`
}

// Settings is the settings section of db-seed.yaml, with bound flags applied.
type Settings struct {
	DefaultCount int      `mapstructure:"default_count"`
	BatchSize    int      `mapstructure:"batch_size"`
	Seed         int64    `mapstructure:"seed"`
	Strict       bool     `mapstructure:"strict"`
	UseTZ        bool     `mapstructure:"use_tz"`
	TimeZone     string   `mapstructure:"time_zone"`
	Tables       []string `mapstructure:"tables"`
}

func init() {
	viper.SetDefault("settings.default_count", 100)
	viper.SetDefault("settings.batch_size", engine.DefaultBatchSize)
	viper.SetDefault("settings.time_zone", "UTC")
}

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}

func LoadSettings() (Settings, error) {
	var s Settings
	if err := viper.UnmarshalKey("settings", &s); err != nil {
		return s, fmt.Errorf("failed to parse settings: %w", err)
	}
	// bound flags are only visible through Get
	s.DefaultCount = viper.GetInt("settings.default_count")
	s.BatchSize = viper.GetInt("settings.batch_size")
	s.Seed = viper.GetInt64("settings.seed")
	s.Strict = viper.GetBool("settings.strict")
	return s, nil
}

// Location is the zone for zone-aware timestamps, nil when timestamps are naive.
func (s Settings) Location() (*time.Location, error) {
	if !s.UseTZ {
		return nil, nil
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time_zone %q: %w", s.TimeZone, err)
	}
	return loc, nil
}
