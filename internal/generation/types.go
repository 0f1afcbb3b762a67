package generation

import "time"

// ProviderKind identifies one concrete generation provider (e.g. "veo",
// "flux", "kling"). Requests are routed to adapters by kind.
type ProviderKind string

// GenerationRequest is the immutable input for one unit of generation work.
// It is owned by the caller and read-only to the orchestrator.
type GenerationRequest struct {
	// Provider selects the adapter that will carry this request.
	Provider ProviderKind `json:"provider"`

	// Payload holds provider-specific parameters (prompt, image reference,
	// model name, resolution, duration, ...). Opaque to the orchestrator.
	Payload any `json:"payload"`

	// MaxWait overrides the configured per-task deadline when non-zero.
	MaxWait time.Duration `json:"max_wait,omitempty"`

	// PollInterval overrides the configured base polling cadence when
	// non-zero.
	PollInterval time.Duration `json:"poll_interval,omitempty"`
}

// TaskHandle identifies a successfully submitted task. Immutable once
// created. The zero value means the submit call itself never succeeded.
type TaskHandle struct {
	// TaskID is the provider-assigned identifier. Opaque.
	TaskID string `json:"task_id"`

	// Provider is the kind of the adapter that accepted the task.
	Provider ProviderKind `json:"provider"`

	// SubmittedAt is when Submit returned successfully. The per-task
	// deadline is measured from this instant.
	SubmittedAt time.Time `json:"submitted_at"`
}

// TaskState is the mutable record of one task's lifecycle. It is owned
// exclusively by the TaskOrchestrator driving the task (single writer);
// other components only ever see copies of it.
type TaskState struct {
	// Status is the canonical lifecycle state.
	Status Status `json:"status"`

	// Attempts counts poll calls made for this task, including polls that
	// failed at the transport level.
	Attempts int `json:"attempts"`

	// LastPolledAt is when the most recent poll call returned.
	LastPolledAt time.Time `json:"last_polled_at,omitempty"`

	// ProgressPercent is the last provider-reported progress in [0,100].
	// Monotonically non-decreasing; when the provider omits progress it
	// stays at the last known value.
	ProgressPercent int `json:"progress_percent"`

	// Result is a URL or opaque reference to the generated asset.
	// Populated if and only if Status is StatusCompleted.
	Result string `json:"result,omitempty"`

	// ErrorKind classifies the failure. Populated if and only if Status is
	// one of the non-Completed terminal states.
	ErrorKind ErrorKind `json:"error_kind,omitempty"`

	// ErrorDetail carries the human-readable failure description.
	ErrorDetail string `json:"error_detail,omitempty"`
}

// TaskOutcome pairs a finished task's state with its position in the batch
// and, when submission succeeded, its provider handle.
type TaskOutcome struct {
	// Index is the task's position in the caller-supplied request slice.
	Index int `json:"index"`

	// Handle identifies the provider task. Zero when Submit never succeeded.
	Handle TaskHandle `json:"handle,omitempty"`

	// State is the task's final state. Always terminal.
	State TaskState `json:"state"`
}

// Succeeded reports whether the task completed with a result.
func (o TaskOutcome) Succeeded() bool {
	return o.State.Status == StatusCompleted
}

// BatchResult is the final, fully populated account of one batch run.
// Results preserve the input request order regardless of completion order;
// a batch with partial failures still returns every outcome and the caller
// decides whether partial success is acceptable.
type BatchResult struct {
	// Results holds one terminal outcome per request, positionally.
	Results []TaskOutcome `json:"results"`

	// Succeeded counts tasks that reached StatusCompleted.
	Succeeded int `json:"succeeded"`

	// Failed counts tasks that reached any other terminal state.
	Failed int `json:"failed"`
}
