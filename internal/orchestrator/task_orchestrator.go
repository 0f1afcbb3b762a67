package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/generation"
)

// TaskOrchestrator owns the lifecycle of exactly one generation task:
// submit, poll until a terminal status, apply the wall-clock deadline, and
// classify the outcome. The TaskState it maintains has a single writer —
// this orchestrator — and is only handed to other components as a copy.
//
// Known limitation: on cancellation the orchestrator stops polling
// immediately but does not attempt to cancel the remote task; the
// submit/poll providers this subsystem targets do not support remote
// cancellation.
type TaskOrchestrator struct {
	provider generation.ProviderClient
	cfg      Config
	logger   *slog.Logger
	observer func(state generation.TaskState)
	state    generation.TaskState
}

// NewTaskOrchestrator creates an orchestrator for a single task driven
// against the given provider. Zero-valued config fields fall back to
// DefaultConfig.
func NewTaskOrchestrator(
	provider generation.ProviderClient,
	cfg Config,
	logger *slog.Logger,
) *TaskOrchestrator {
	return &TaskOrchestrator{
		provider: provider,
		cfg:      cfg.withDefaults(),
		logger:   logger.With("component", "task_orchestrator", "provider", provider.Kind()),
		state:    generation.TaskState{Status: generation.StatusPending},
	}
}

// SetObserver registers a callback invoked with a copy of the task state
// after every observable transition: the move to Pending at submission,
// the move to Processing, progress increases, and the terminal state.
// Must be set before Run is called.
func (o *TaskOrchestrator) SetObserver(fn func(state generation.TaskState)) {
	o.observer = fn
}

// Run drives the task to a terminal state and returns the provider handle
// together with the final state. It blocks until the task completes,
// fails, times out or ctx is cancelled; both the inter-poll sleep and the
// network calls honor ctx, so a cancelled task unblocks promptly rather
// than waiting out its current sleep.
func (o *TaskOrchestrator) Run(
	ctx context.Context,
	req generation.GenerationRequest,
) (generation.TaskHandle, generation.TaskState) {
	maxWait := o.cfg.MaxWait
	if req.MaxWait > 0 {
		maxWait = req.MaxWait
	}
	interval := o.cfg.PollInterval
	if req.PollInterval > 0 {
		interval = req.PollInterval
	}

	if ctx.Err() != nil {
		o.terminate(generation.StatusCancelled, generation.ErrorKindCancelled,
			generation.ErrTaskCancelled.Error())
		return generation.TaskHandle{}, o.state
	}

	taskID, err := o.provider.Submit(ctx, req.Payload)
	if err != nil {
		if ctx.Err() != nil {
			o.terminate(generation.StatusCancelled, generation.ErrorKindCancelled,
				generation.ErrTaskCancelled.Error())
			return generation.TaskHandle{}, o.state
		}
		// Submissions are never retried here; the failure surfaces
		// immediately for this request.
		o.logger.Error("generation submit failed", "error", err)
		o.terminate(generation.StatusFailed, generation.ErrorKindSubmission,
			fmt.Sprintf("%v: %v", generation.ErrSubmissionFailed, err))
		return generation.TaskHandle{}, o.state
	}

	handle := generation.TaskHandle{
		TaskID:      taskID,
		Provider:    o.provider.Kind(),
		SubmittedAt: time.Now(),
	}
	logger := o.logger.With("task_id", taskID)
	logger.Info("generation task submitted",
		"max_wait", maxWait,
		"poll_interval", interval)
	o.publish()

	deadline := handle.SubmittedAt.Add(maxWait)
	wait := interval
	consecutiveTransportErrs := 0

	for {
		// Deadline check at the top of every iteration, not only at sleep
		// boundaries: a task already past its deadline is never polled
		// again.
		if !time.Now().Before(deadline) {
			logger.Warn("generation task timed out",
				"max_wait", maxWait,
				"attempts", o.state.Attempts)
			o.terminate(generation.StatusTimedOut, generation.ErrorKindTimeout,
				fmt.Sprintf("%v: no terminal status within %s", generation.ErrTaskTimedOut, maxWait))
			return handle, o.state
		}

		select {
		case <-ctx.Done():
			logger.Info("generation task cancelled", "attempts", o.state.Attempts)
			o.terminate(generation.StatusCancelled, generation.ErrorKindCancelled,
				generation.ErrTaskCancelled.Error())
			return handle, o.state
		case <-time.After(wait):
		}

		res, pollErr := o.provider.Poll(ctx, taskID)
		o.state.Attempts++
		o.state.LastPolledAt = time.Now()

		if pollErr != nil {
			if ctx.Err() != nil {
				o.terminate(generation.StatusCancelled, generation.ErrorKindCancelled,
					generation.ErrTaskCancelled.Error())
				return handle, o.state
			}

			consecutiveTransportErrs++
			logger.Warn("transient polling error",
				"error", pollErr,
				"consecutive_errors", consecutiveTransportErrs,
				"attempt", o.state.Attempts)

			if consecutiveTransportErrs >= o.cfg.TransientPollBudget {
				o.terminate(generation.StatusFailed, generation.ErrorKindPolling,
					fmt.Sprintf("%v: %d consecutive transport errors, last: %v",
						generation.ErrPollingFailed, consecutiveTransportErrs, pollErr))
				return handle, o.state
			}

			// Back off the next attempt by doubling the wait, capped.
			wait *= 2
			if wait > o.cfg.MaxBackoff {
				wait = o.cfg.MaxBackoff
			}
			continue
		}

		// A successful poll resets both the transient budget and the
		// polling cadence.
		consecutiveTransportErrs = 0
		wait = interval

		switch res.Status {
		case generation.StatusCompleted:
			o.state.ProgressPercent = 100
			o.state.Result = res.Result
			o.state.Status = generation.StatusCompleted
			o.publish()
			logger.Info("generation task completed",
				"attempts", o.state.Attempts,
				"result", res.Result)
			return handle, o.state

		case generation.StatusFailed:
			logger.Warn("provider reported generation failure",
				"attempts", o.state.Attempts,
				"detail", res.FailureDetail)
			o.terminate(generation.StatusFailed, generation.ErrorKindProvider,
				fmt.Sprintf("%v: %s", generation.ErrProviderFailed, res.FailureDetail))
			return handle, o.state

		default:
			// Pending and Processing both mean the task is live. The first
			// successful poll moves the state to Processing.
			changed := o.state.Status != generation.StatusProcessing
			o.state.Status = generation.StatusProcessing
			if res.ProgressPercent > o.state.ProgressPercent && res.ProgressPercent <= 100 {
				o.state.ProgressPercent = res.ProgressPercent
				changed = true
			}
			if changed {
				o.publish()
			}
		}
	}
}

// terminate records a non-Completed terminal state and publishes it.
func (o *TaskOrchestrator) terminate(
	status generation.Status,
	kind generation.ErrorKind,
	detail string,
) {
	o.state.Status = status
	o.state.ErrorKind = kind
	o.state.ErrorDetail = detail
	o.publish()
}

// publish hands a copy of the current state to the observer, if any.
func (o *TaskOrchestrator) publish() {
	if o.observer != nil {
		o.observer(o.state)
	}
}
