package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"       validate:"required"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator" validate:"required"`
	Providers    ProvidersConfig    `mapstructure:"providers"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// OrchestratorConfig tunes the generation orchestration core.
type OrchestratorConfig struct {
	// Concurrency is the default worker-pool size for batches submitted
	// without an explicit concurrency.
	Concurrency int `mapstructure:"concurrency" validate:"required,gt=0"`

	// PollIntervalSeconds is the base cadence between status polls.
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds" validate:"required,gt=0"`

	// MaxWaitSeconds is the default per-task wall-clock deadline.
	MaxWaitSeconds int `mapstructure:"max_wait_seconds" validate:"required,gt=0"`

	// MaxBackoffSeconds caps the wait applied after transient poll errors.
	MaxBackoffSeconds int `mapstructure:"max_backoff_seconds" validate:"required,gt=0"`

	// TransientPollBudget is how many consecutive transport errors are
	// tolerated before a task is failed with a polling error.
	TransientPollBudget int `mapstructure:"transient_poll_budget" validate:"required,gt=0"`
}

// PollInterval returns the poll cadence as a duration.
func (c OrchestratorConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// MaxWait returns the per-task deadline as a duration.
func (c OrchestratorConfig) MaxWait() time.Duration {
	return time.Duration(c.MaxWaitSeconds) * time.Second
}

// MaxBackoff returns the backoff cap as a duration.
func (c OrchestratorConfig) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffSeconds) * time.Second
}

// ProvidersConfig wires the concrete generation providers.
type ProvidersConfig struct {
	// Veo enables the Veo adapter when its API key is set.
	Veo VeoConfig `mapstructure:"veo"`

	// Rest lists submit/poll REST providers to register at startup.
	Rest []RestProviderConfig `mapstructure:"rest" validate:"dive"`
}

// VeoConfig contains the Veo adapter settings.
type VeoConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Enabled reports whether the Veo adapter should be registered.
func (c VeoConfig) Enabled() bool {
	return c.APIKey != ""
}

// RestProviderConfig describes one submit/poll REST provider.
type RestProviderConfig struct {
	Kind       string `mapstructure:"kind"        validate:"required"`
	BaseURL    string `mapstructure:"base_url"    validate:"required,url"`
	SubmitPath string `mapstructure:"submit_path"`
	StatusPath string `mapstructure:"status_path"`
	APIKey     string `mapstructure:"api_key"`
	AuthHeader string `mapstructure:"auth_header"`
}
