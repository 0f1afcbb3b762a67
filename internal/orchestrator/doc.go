// Package orchestrator drives generation tasks through their lifecycle
// against slow, unreliable submit/poll providers.
//
// TaskOrchestrator owns exactly one task: it submits the request, polls the
// provider until a terminal status with bounded retries for transport
// failures, and enforces the per-task wall-clock deadline.
//
// BatchCoordinator runs many orchestrators under a caller-supplied
// concurrency limit with partial-failure isolation: one task's failure or
// timeout never cancels or blocks its siblings. Results are positional,
// matching the input request order regardless of completion order, and
// per-transition progress is pushed through the ProgressReporter interface
// so callers can render incremental progress ("scene 3 of 8 complete")
// without coupling to orchestration internals.
package orchestrator
