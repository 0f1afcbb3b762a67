package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/generation"
)

// Contract-violation errors reported before any work begins. Individual
// task failures are never surfaced this way; they come back as data in the
// BatchResult.
var (
	ErrNoRequests         = errors.New("request list cannot be empty")
	ErrInvalidConcurrency = errors.New("concurrency must be positive")
)

// ProviderResolver resolves a provider kind to its registered adapter.
type ProviderResolver interface {
	// Resolve returns the adapter for the given kind, or an error wrapping
	// generation.ErrUnknownProvider.
	Resolve(kind generation.ProviderKind) (generation.ProviderClient, error)
}

// BatchCoordinator runs a batch of generation requests concurrently under
// a bounded worker pool and collects per-task outcomes. The worker pool
// size is the sole backpressure mechanism: it bounds simultaneous outbound
// connections to the providers and caps the state held for in-flight
// tasks, regardless of batch size.
type BatchCoordinator struct {
	resolver ProviderResolver
	cfg      Config
	logger   *slog.Logger
	reporter ProgressReporter
}

// NewBatchCoordinator creates a coordinator that resolves each request's
// provider through the given resolver.
func NewBatchCoordinator(resolver ProviderResolver, cfg Config, logger *slog.Logger) *BatchCoordinator {
	return &BatchCoordinator{
		resolver: resolver,
		cfg:      cfg.withDefaults(),
		logger:   logger.With("component", "batch_coordinator"),
	}
}

// SetReporter registers the observer that receives a callback after every
// individual task transition plus the recomputed batch aggregate. Must be
// set before Run is called.
func (c *BatchCoordinator) SetReporter(reporter ProgressReporter) {
	c.reporter = reporter
}

// Run drives every request to a terminal state and returns the fully
// populated BatchResult. It blocks until the batch is terminal, which
// happens only when every member task is terminal, successful or not:
// a single task's failure or timeout never cancels its siblings.
//
// Cancelling ctx propagates to every in-flight orchestrator; each stops
// within one poll interval of the signal. A cancelled batch still returns
// a BatchResult describing whichever tasks had already reached a terminal
// state, with the remainder marked cancelled.
func (c *BatchCoordinator) Run(
	ctx context.Context,
	requests []generation.GenerationRequest,
	concurrency int,
) (generation.BatchResult, error) {
	if len(requests) == 0 {
		return generation.BatchResult{}, ErrNoRequests
	}
	if concurrency <= 0 {
		return generation.BatchResult{}, ErrInvalidConcurrency
	}

	workers := concurrency
	if workers > len(requests) {
		workers = len(requests)
	}

	c.logger.Info("starting batch",
		"tasks", len(requests),
		"workers", workers)

	// Outcomes are written into a pre-sized slice addressed by request
	// index, so the result order always matches the input order even
	// though tasks complete in arbitrary order. Each slot has exactly one
	// writer: the worker that claimed that index.
	results := make([]generation.TaskOutcome, len(requests))

	agg := newBatchState(len(requests))

	indexes := make(chan int, len(requests))
	for i := range requests {
		indexes <- i
	}
	close(indexes)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				results[idx] = c.runOne(ctx, idx, requests[idx], agg)
			}
		}()
	}
	wg.Wait()

	succeeded, failed := 0, 0
	for _, outcome := range results {
		if outcome.Succeeded() {
			succeeded++
		} else {
			failed++
		}
	}

	c.logger.Info("batch finished",
		"tasks", len(requests),
		"succeeded", succeeded,
		"failed", failed)

	return generation.BatchResult{
		Results:   results,
		Succeeded: succeeded,
		Failed:    failed,
	}, nil
}

// runOne drives a single request to a terminal outcome.
func (c *BatchCoordinator) runOne(
	ctx context.Context,
	idx int,
	req generation.GenerationRequest,
	agg *batchState,
) generation.TaskOutcome {
	// Requests the batch cancellation reached before they started are
	// marked cancelled without ever being submitted.
	if ctx.Err() != nil {
		state := generation.TaskState{
			Status:      generation.StatusCancelled,
			ErrorKind:   generation.ErrorKindCancelled,
			ErrorDetail: generation.ErrTaskCancelled.Error(),
		}
		c.observe(idx, state, agg)
		return generation.TaskOutcome{Index: idx, State: state}
	}

	client, err := c.resolver.Resolve(req.Provider)
	if err != nil {
		c.logger.Error("cannot resolve provider for request",
			"task_index", idx,
			"provider", req.Provider,
			"error", err)
		state := generation.TaskState{
			Status:      generation.StatusFailed,
			ErrorKind:   generation.ErrorKindSubmission,
			ErrorDetail: err.Error(),
		}
		c.observe(idx, state, agg)
		return generation.TaskOutcome{Index: idx, State: state}
	}

	orch := NewTaskOrchestrator(client, c.cfg, c.logger)
	orch.SetObserver(func(state generation.TaskState) {
		c.observe(idx, state, agg)
	})

	handle, state := orch.Run(ctx, req)
	return generation.TaskOutcome{Index: idx, Handle: handle, State: state}
}

// observe folds one task transition into the aggregate and notifies the
// reporter. Called concurrently from worker goroutines; batchState does
// the locking.
func (c *BatchCoordinator) observe(idx int, state generation.TaskState, agg *batchState) {
	progress := agg.update(idx, state)
	if c.reporter != nil {
		c.reporter.TaskTransition(idx, state)
		c.reporter.BatchProgress(progress)
	}
}

// batchState tracks aggregate progress across one batch run. It is the one
// point of shared mutable state in the subsystem — worker goroutines
// report transitions concurrently — so every access goes through the
// mutex.
type batchState struct {
	mu        sync.Mutex
	percent   []int
	terminal  []bool
	succeeded int
	failed    int
}

func newBatchState(size int) *batchState {
	return &batchState{
		percent:  make([]int, size),
		terminal: make([]bool, size),
	}
}

// update folds a task transition into the aggregate and returns the
// recomputed batch progress.
//
// Terminal tasks count as 100 percent regardless of outcome so the batch
// percentage stays monotonic: a failed scene must not drag an otherwise
// near-complete batch's reported progress back down. Tasks that have not
// produced a progress figure yet count as 0.
func (b *batchState) update(idx int, state generation.TaskState) BatchProgress {
	b.mu.Lock()
	defer b.mu.Unlock()

	if state.Status.IsTerminal() && !b.terminal[idx] {
		b.terminal[idx] = true
		if state.Status == generation.StatusCompleted {
			b.succeeded++
		} else {
			b.failed++
		}
	}

	p := state.ProgressPercent
	if state.Status.IsTerminal() {
		p = 100
	}
	if p > b.percent[idx] {
		b.percent[idx] = p
	}

	sum := 0
	for _, v := range b.percent {
		sum += v
	}

	return BatchProgress{
		Total:     len(b.percent),
		Terminal:  b.succeeded + b.failed,
		Succeeded: b.succeeded,
		Failed:    b.failed,
		Percent:   float64(sum) / float64(len(b.percent)),
	}
}
