package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/generation"
	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/orchestrator"
)

// ErrBatchNotFound indicates the requested batch ID is not in the registry.
var ErrBatchNotFound = errors.New("batch not found")

// Batch run states exposed through snapshots.
const (
	BatchRunning  = "running"
	BatchFinished = "finished"
)

// TaskSnapshot is the externally visible view of one task in a batch.
type TaskSnapshot struct {
	Index    int                     `json:"index"`
	Provider generation.ProviderKind `json:"provider"`
	TaskID   string                  `json:"task_id,omitempty"`
	State    generation.TaskState    `json:"state"`
}

// BatchSnapshot is a point-in-time copy of a batch run's state. Snapshots
// are safe to hold after the batch advances; they never alias live state.
type BatchSnapshot struct {
	ID         uuid.UUID                  `json:"id"`
	Status     string                     `json:"status"`
	CreatedAt  time.Time                  `json:"created_at"`
	FinishedAt *time.Time                 `json:"finished_at,omitempty"`
	Progress   orchestrator.BatchProgress `json:"progress"`
	Tasks      []TaskSnapshot             `json:"tasks"`
}

// BatchService runs generation batches and tracks their progress in an
// in-memory registry keyed by batch ID.
type BatchService struct {
	providers   *orchestrator.Registry
	cfg         orchestrator.Config
	concurrency int
	logger      *slog.Logger

	mu      sync.RWMutex
	batches map[uuid.UUID]*batchRecord
}

// NewBatchService creates a service that resolves providers through the
// given registry. defaultConcurrency is used for batches submitted without
// an explicit concurrency.
func NewBatchService(
	providers *orchestrator.Registry,
	cfg orchestrator.Config,
	defaultConcurrency int,
	logger *slog.Logger,
) *BatchService {
	if defaultConcurrency <= 0 {
		defaultConcurrency = 4
	}
	return &BatchService{
		providers:   providers,
		cfg:         cfg,
		concurrency: defaultConcurrency,
		logger:      logger.With("component", "batch_service"),
		batches:     make(map[uuid.UUID]*batchRecord),
	}
}

// RegisterProvider adds a provider adapter to the service's registry.
func (s *BatchService) RegisterProvider(client generation.ProviderClient) {
	s.providers.Register(client)
}

// ProviderKinds lists the kinds the service can route requests to.
func (s *BatchService) ProviderKinds() []generation.ProviderKind {
	return s.providers.Kinds()
}

// SubmitBatch runs the batch synchronously and returns its ID alongside
// the complete result. The batch remains queryable through GetBatch
// afterwards.
func (s *BatchService) SubmitBatch(
	ctx context.Context,
	requests []generation.GenerationRequest,
	concurrency int,
) (uuid.UUID, generation.BatchResult, error) {
	id, rec, err := s.newRecord(requests)
	if err != nil {
		return uuid.Nil, generation.BatchResult{}, err
	}

	result, err := s.run(ctx, rec, requests, concurrency)
	return id, result, err
}

// StartBatch validates the batch, registers it, and runs it in the
// background. The returned ID can be polled through GetBatch. The given
// context governs the whole run; cancelling it cancels the batch.
func (s *BatchService) StartBatch(
	ctx context.Context,
	requests []generation.GenerationRequest,
	concurrency int,
) (uuid.UUID, error) {
	id, rec, err := s.newRecord(requests)
	if err != nil {
		return uuid.Nil, err
	}

	go func() {
		if _, err := s.run(ctx, rec, requests, concurrency); err != nil {
			s.logger.Error("background batch failed to run",
				"batch_id", id,
				"error", err)
		}
	}()

	return id, nil
}

// GetBatch returns a snapshot of the batch with the given ID.
func (s *BatchService) GetBatch(id uuid.UUID) (BatchSnapshot, error) {
	s.mu.RLock()
	rec, ok := s.batches[id]
	s.mu.RUnlock()
	if !ok {
		return BatchSnapshot{}, ErrBatchNotFound
	}
	return rec.snapshot(), nil
}

// ListBatches returns snapshots of every known batch in unspecified order.
func (s *BatchService) ListBatches() []BatchSnapshot {
	s.mu.RLock()
	records := make([]*batchRecord, 0, len(s.batches))
	for _, rec := range s.batches {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	snapshots := make([]BatchSnapshot, len(records))
	for i, rec := range records {
		snapshots[i] = rec.snapshot()
	}
	return snapshots
}

// newRecord validates the request list, resolves every provider up front
// so unroutable batches are rejected before any work starts, and registers
// a fresh record.
func (s *BatchService) newRecord(requests []generation.GenerationRequest) (uuid.UUID, *batchRecord, error) {
	if len(requests) == 0 {
		return uuid.Nil, nil, orchestrator.ErrNoRequests
	}
	for _, req := range requests {
		if _, err := s.providers.Resolve(req.Provider); err != nil {
			return uuid.Nil, nil, err
		}
	}

	id := uuid.New()
	rec := newBatchRecord(id, requests)

	s.mu.Lock()
	s.batches[id] = rec
	s.mu.Unlock()

	return id, rec, nil
}

func (s *BatchService) run(
	ctx context.Context,
	rec *batchRecord,
	requests []generation.GenerationRequest,
	concurrency int,
) (generation.BatchResult, error) {
	if concurrency <= 0 {
		concurrency = s.concurrency
	}

	coordinator := orchestrator.NewBatchCoordinator(s.providers, s.cfg, s.logger)

	fanout := orchestrator.NewFanoutReporter()
	fanout.Register(orchestrator.NewLogReporter(s.logger))
	fanout.Register(rec)
	coordinator.SetReporter(fanout)

	result, err := coordinator.Run(ctx, requests, concurrency)
	if err != nil {
		rec.finish(generation.BatchResult{})
		return generation.BatchResult{}, err
	}

	rec.finish(result)
	return result, nil
}

// batchRecord holds the live state of one batch run. It implements
// orchestrator.ProgressReporter so the coordinator's callbacks flow
// straight into the record.
type batchRecord struct {
	mu         sync.RWMutex
	id         uuid.UUID
	status     string
	createdAt  time.Time
	finishedAt *time.Time
	progress   orchestrator.BatchProgress
	tasks      []TaskSnapshot
}

func newBatchRecord(id uuid.UUID, requests []generation.GenerationRequest) *batchRecord {
	tasks := make([]TaskSnapshot, len(requests))
	for i, req := range requests {
		tasks[i] = TaskSnapshot{
			Index:    i,
			Provider: req.Provider,
			State:    generation.TaskState{Status: generation.StatusPending},
		}
	}
	return &batchRecord{
		id:        id,
		status:    BatchRunning,
		createdAt: time.Now().UTC(),
		progress:  orchestrator.BatchProgress{Total: len(requests)},
		tasks:     tasks,
	}
}

// TaskTransition implements orchestrator.ProgressReporter.
func (r *batchRecord) TaskTransition(taskIndex int, state generation.TaskState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if taskIndex < 0 || taskIndex >= len(r.tasks) {
		return
	}
	r.tasks[taskIndex].State = state
}

// BatchProgress implements orchestrator.ProgressReporter.
func (r *batchRecord) BatchProgress(progress orchestrator.BatchProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = progress
}

// finish records the final outcome, including the provider task IDs that
// only become known once the run returns.
func (r *batchRecord) finish(result generation.BatchResult) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = BatchFinished
	r.finishedAt = &now
	for _, outcome := range result.Results {
		if outcome.Index < 0 || outcome.Index >= len(r.tasks) {
			continue
		}
		r.tasks[outcome.Index].TaskID = outcome.Handle.TaskID
		r.tasks[outcome.Index].State = outcome.State
	}
}

func (r *batchRecord) snapshot() BatchSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]TaskSnapshot, len(r.tasks))
	copy(tasks, r.tasks)

	var finished *time.Time
	if r.finishedAt != nil {
		t := *r.finishedAt
		finished = &t
	}

	return BatchSnapshot{
		ID:         r.id,
		Status:     r.status,
		CreatedAt:  r.createdAt,
		FinishedAt: finished,
		Progress:   r.progress,
		Tasks:      tasks,
	}
}
