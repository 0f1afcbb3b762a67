package orchestrator

import "time"

// Config holds the orchestration tuning knobs shared by TaskOrchestrator
// and BatchCoordinator.
type Config struct {
	// PollInterval is the base cadence between status polls. Held constant
	// for successful polls; per-request overrides take precedence.
	PollInterval time.Duration

	// MaxWait is the default wall-clock deadline for one task, measured
	// from successful submission. Per-request overrides take precedence.
	MaxWait time.Duration

	// MaxBackoff caps the doubled wait applied after transient polling
	// errors.
	MaxBackoff time.Duration

	// TransientPollBudget is how many consecutive transport errors are
	// tolerated before the task is classified as failed with a polling
	// error. Bounded retries are a hard requirement, never indefinite.
	TransientPollBudget int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:        3 * time.Second,
		MaxWait:             5 * time.Minute,
		MaxBackoff:          30 * time.Second,
		TransientPollBudget: 5,
	}
}

// withDefaults fills in zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.MaxWait <= 0 {
		c.MaxWait = def.MaxWait
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = def.MaxBackoff
	}
	if c.TransientPollBudget <= 0 {
		c.TransientPollBudget = def.TransientPollBudget
	}
	return c
}
