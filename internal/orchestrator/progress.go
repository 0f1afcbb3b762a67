package orchestrator

import (
	"log/slog"
	"sync"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/generation"
)

// BatchProgress is the aggregate view of one batch, recomputed after every
// task transition.
type BatchProgress struct {
	// Total is the number of tasks in the batch.
	Total int `json:"total"`

	// Terminal is how many tasks have reached a terminal state.
	Terminal int `json:"terminal"`

	// Succeeded is how many tasks completed with a result.
	Succeeded int `json:"succeeded"`

	// Failed is how many tasks reached a non-Completed terminal state.
	Failed int `json:"failed"`

	// Percent is the mean of per-task progress, with terminal tasks
	// counted as 100. Monotonically non-decreasing over a batch run.
	Percent float64 `json:"percent"`
}

// ProgressReporter receives progress updates from a BatchCoordinator.
// Implementations decouple progress consumers (dashboard, CLI, logs) from
// orchestration internals. The callback stream is best-effort and may
// interleave arbitrarily across tasks; no ordering is guaranteed between
// updates for different tasks.
type ProgressReporter interface {
	// TaskTransition is invoked after every individual task transition
	// with the task's position in the batch and a copy of its state.
	TaskTransition(taskIndex int, state generation.TaskState)

	// BatchProgress is invoked with the recomputed aggregate after every
	// task transition.
	BatchProgress(progress BatchProgress)
}

// LogReporter is a ProgressReporter that writes transitions to a
// structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter that logs task transitions at debug
// level and batch aggregates at info level.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{
		logger: logger.With("component", "progress_reporter"),
	}
}

// TaskTransition implements ProgressReporter.
func (r *LogReporter) TaskTransition(taskIndex int, state generation.TaskState) {
	r.logger.Debug("task transition",
		"task_index", taskIndex,
		"status", state.Status,
		"progress_percent", state.ProgressPercent,
		"attempts", state.Attempts,
		"error_kind", state.ErrorKind)
}

// BatchProgress implements ProgressReporter.
func (r *LogReporter) BatchProgress(progress BatchProgress) {
	r.logger.Info("batch progress",
		"terminal", progress.Terminal,
		"total", progress.Total,
		"succeeded", progress.Succeeded,
		"failed", progress.Failed,
		"percent", progress.Percent)
}

// FanoutReporter dispatches every update to all registered reporters, so
// several consumers (dashboard snapshot, logs) can observe one batch run.
type FanoutReporter struct {
	mu        sync.RWMutex
	reporters []ProgressReporter
}

// NewFanoutReporter creates an empty fanout reporter.
func NewFanoutReporter() *FanoutReporter {
	return &FanoutReporter{}
}

// Register adds a reporter to receive updates.
func (f *FanoutReporter) Register(reporter ProgressReporter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reporters = append(f.reporters, reporter)
}

// TaskTransition implements ProgressReporter.
func (f *FanoutReporter) TaskTransition(taskIndex int, state generation.TaskState) {
	f.mu.RLock()
	reporters := make([]ProgressReporter, len(f.reporters))
	copy(reporters, f.reporters)
	f.mu.RUnlock()

	for _, r := range reporters {
		r.TaskTransition(taskIndex, state)
	}
}

// BatchProgress implements ProgressReporter.
func (f *FanoutReporter) BatchProgress(progress BatchProgress) {
	f.mu.RLock()
	reporters := make([]ProgressReporter, len(f.reporters))
	copy(reporters, f.reporters)
	f.mu.RUnlock()

	for _, r := range reporters {
		r.BatchProgress(progress)
	}
}
