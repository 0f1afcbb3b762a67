package generation

import "context"

// ProgressUnknown is the PollResult progress value used when the provider
// did not report a progress figure.
const ProgressUnknown = -1

// PollResult is one normalized status observation from a provider.
//
// A PollResult is only produced when the poll call itself succeeded at the
// transport level; transport failures are returned as plain errors from
// Poll and are the orchestrator's concern, not the adapter's.
type PollResult struct {
	// Status is the canonical status the adapter mapped the provider's
	// vocabulary onto. One of StatusPending, StatusProcessing,
	// StatusCompleted or StatusFailed. Unrecognized provider strings map
	// to StatusProcessing (fail open on an unknown-but-live task).
	Status Status

	// ProgressPercent is the provider-reported progress in [0,100], or
	// ProgressUnknown when the provider omitted it.
	ProgressPercent int

	// Result references the generated asset. Populated only when Status is
	// StatusCompleted.
	Result string

	// FailureDetail is the provider's failure description. Populated only
	// when Status is StatusFailed.
	FailureDetail string
}

// ProviderClient is the adapter contract for one concrete generation
// provider. Implementations hold no per-task state between calls and have
// no side effects beyond the network call itself.
//
// Retry and backoff are solely the orchestrator's responsibility; an
// adapter maps exactly one request to one response.
type ProviderClient interface {
	// Kind returns the provider identifier requests are routed by.
	Kind() ProviderKind

	// Submit sends one generation request and returns the provider-assigned
	// task ID. It never partially submits: any non-2xx or malformed
	// response yields an error wrapping ErrSubmissionFailed.
	Submit(ctx context.Context, payload any) (string, error)

	// Poll fetches the task's current status and normalizes it. A non-nil
	// error means the transport failed (timeout, connection reset, 5xx)
	// and the observation is unusable; a semantic provider failure is
	// instead reported as a PollResult with StatusFailed.
	Poll(ctx context.Context, taskID string) (PollResult, error)
}
