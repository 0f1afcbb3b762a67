package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/api/shared"
	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/generation"
	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/service"
)

// BatchRunner is the service surface the handlers depend on.
type BatchRunner interface {
	StartBatch(ctx context.Context, requests []generation.GenerationRequest, concurrency int) (uuid.UUID, error)
	GetBatch(id uuid.UUID) (service.BatchSnapshot, error)
	ListBatches() []service.BatchSnapshot
	ProviderKinds() []generation.ProviderKind
}

// GenerationRequestDTO is one generation request in the create-batch body.
type GenerationRequestDTO struct {
	Provider            string `json:"provider" validate:"required"`
	Payload             any    `json:"payload"  validate:"required"`
	MaxWaitSeconds      int    `json:"max_wait_seconds,omitempty"      validate:"gte=0"`
	PollIntervalSeconds int    `json:"poll_interval_seconds,omitempty" validate:"gte=0"`
}

// CreateBatchRequest represents the request body for starting a batch.
type CreateBatchRequest struct {
	Requests    []GenerationRequestDTO `json:"requests"    validate:"required,min=1,dive"`
	Concurrency int                    `json:"concurrency" validate:"gte=0"`
}

// CreateBatchResponse is returned when a batch has been accepted.
type CreateBatchResponse struct {
	BatchID string `json:"batch_id"`
	Status  string `json:"status"`
	Tasks   int    `json:"tasks"`
}

// BatchHandler handles batch-related HTTP requests.
type BatchHandler struct {
	batches   BatchRunner
	validator *validator.Validate
	logger    *slog.Logger
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batches BatchRunner, logger *slog.Logger) *BatchHandler {
	return &BatchHandler{
		batches:   batches,
		validator: validator.New(),
		logger:    logger.With("component", "batch_handler"),
	}
}

// CreateBatch handles POST /api/batches requests. The batch runs in the
// background; the response carries the ID to poll.
func (h *BatchHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req CreateBatchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	requests := make([]generation.GenerationRequest, len(req.Requests))
	for i, dto := range req.Requests {
		requests[i] = generation.GenerationRequest{
			Provider:     generation.ProviderKind(dto.Provider),
			Payload:      dto.Payload,
			MaxWait:      time.Duration(dto.MaxWaitSeconds) * time.Second,
			PollInterval: time.Duration(dto.PollIntervalSeconds) * time.Second,
		}
	}

	// The batch outlives this request, so cancellation must not propagate
	// from the handler's context.
	id, err := h.batches.StartBatch(context.WithoutCancel(r.Context()), requests, req.Concurrency)
	if err != nil {
		if errors.Is(err, generation.ErrUnknownProvider) {
			shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to start batch", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to start batch")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, CreateBatchResponse{
		BatchID: id.String(),
		Status:  service.BatchRunning,
		Tasks:   len(requests),
	})
}

// GetBatch handles GET /api/batches/{batchID} requests.
func (h *BatchHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "batchID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid batch ID")
		return
	}

	snapshot, err := h.batches.GetBatch(id)
	if err != nil {
		if errors.Is(err, service.ErrBatchNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Batch not found")
			return
		}
		h.logger.Error("failed to load batch", "batch_id", id, "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to load batch")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}

// ListBatches handles GET /api/batches requests.
func (h *BatchHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.batches.ListBatches())
}

// HealthResponse is the body returned by the health endpoint.
type HealthResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers"`
}

// Health handles GET /health requests. It reports the registered provider
// kinds so operators can verify routing at a glance.
func (h *BatchHandler) Health(w http.ResponseWriter, r *http.Request) {
	kinds := h.batches.ProviderKinds()
	providers := make([]string, len(kinds))
	for i, kind := range kinds {
		providers[i] = string(kind)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		Providers: providers,
	})
}
