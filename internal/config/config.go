package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// TagKeys configures which instance tags carry the schedule.
type TagKeys struct {
	OnTime        string `mapstructure:"on_time"`
	OffTime       string `mapstructure:"off_time"`
	DisabledUntil string `mapstructure:"disabled_until"`
	Stakeholders  string `mapstructure:"stakeholders"`
}

// Config is the runtime configuration, loaded from an optional YAML
// file with POWERSCHED_* environment overrides.
type Config struct {
	Regions          []string `mapstructure:"regions"`
	FallbackTimezone string   `mapstructure:"fallback_timezone"`
	LogLevel         string   `mapstructure:"log_level"`
	DryRun           bool     `mapstructure:"dry_run"`
	Cron             string   `mapstructure:"cron"`
	Tags             TagKeys  `mapstructure:"tags"`
}

// Load reads configuration from the given file path. An empty path
// looks for powersched.yaml in the working directory; a missing file
// is not an error and leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Every key needs a default registered, even a zero one, or viper
	// never considers it for AutomaticEnv lookups.
	v.SetDefault("regions", []string{})
	v.SetDefault("fallback_timezone", "UTC")
	v.SetDefault("log_level", "info")
	v.SetDefault("dry_run", false)
	v.SetDefault("cron", "")
	v.SetDefault("tags.on_time", "PowerScheduleOnTime")
	v.SetDefault("tags.off_time", "PowerScheduleOffTime")
	v.SetDefault("tags.disabled_until", "PowerScheduleDisabledUntil")
	v.SetDefault("tags.stakeholders", "Stakeholders")

	v.SetEnvPrefix("POWERSCHED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("powersched")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
