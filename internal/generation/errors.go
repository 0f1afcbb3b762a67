package generation

import "errors"

// Common errors returned by the generation subsystem
var (
	// ErrSubmissionFailed is returned when the initial request to a provider
	// was rejected or the transport failed before a task ID was obtained.
	// Submissions are never retried by this subsystem.
	ErrSubmissionFailed = errors.New("failed to submit generation request")

	// ErrPollingFailed is returned when transient transport failures during
	// status polling exhausted the bounded retry budget.
	ErrPollingFailed = errors.New("polling failed after exhausting retries")

	// ErrProviderFailed is returned when the provider explicitly reported
	// that the generation itself failed (content policy rejection, internal
	// provider error). Terminal, not retried.
	ErrProviderFailed = errors.New("provider reported generation failure")

	// ErrTaskTimedOut is returned when the wall-clock deadline elapsed while
	// the task was still non-terminal.
	ErrTaskTimedOut = errors.New("generation task timed out")

	// ErrTaskCancelled is returned when the caller cancelled an in-flight
	// task or the whole batch.
	ErrTaskCancelled = errors.New("generation task cancelled")

	// ErrUnknownProvider is returned when a request names a provider kind
	// that has not been registered.
	ErrUnknownProvider = errors.New("unknown generation provider")
)

// ErrorKind classifies a terminal task failure. Individual task errors never
// propagate as Go errors that abort a batch; they are captured as data and
// returned positionally in the BatchResult.
type ErrorKind string

// Possible error kind values
const (
	// ErrorKindNone means the task did not fail.
	ErrorKindNone ErrorKind = ""

	// ErrorKindSubmission means the provider rejected the submit call or the
	// transport failed before a task ID existed.
	ErrorKindSubmission ErrorKind = "submission_error"

	// ErrorKindPolling means transient transport failures during polling
	// exceeded the bounded attempt budget.
	ErrorKindPolling ErrorKind = "polling_error"

	// ErrorKindProvider means the provider reported the generation failed.
	ErrorKindProvider ErrorKind = "provider_failure"

	// ErrorKindTimeout means the per-task wall-clock deadline was exceeded.
	ErrorKindTimeout ErrorKind = "timeout"

	// ErrorKindCancelled means the caller cancelled the task or batch.
	ErrorKindCancelled ErrorKind = "cancelled"
)
