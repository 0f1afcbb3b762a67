package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config file and environment
// variables. Environment variables use the BOOSTIFY_ prefix with
// underscores for nesting (e.g. BOOSTIFY_SERVER_PORT) and take precedence
// over file values. Returns a validated Config or an error.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults keep the orchestrator usable with zero configuration.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("orchestrator.concurrency", 4)
	v.SetDefault("orchestrator.poll_interval_seconds", 3)
	v.SetDefault("orchestrator.max_wait_seconds", 300)
	v.SetDefault("orchestrator.max_backoff_seconds", 30)
	v.SetDefault("orchestrator.transient_poll_budget", 5)
	v.SetDefault("providers.veo.api_key", "")
	v.SetDefault("providers.veo.model", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything can come from
		// defaults and environment.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("BOOSTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
