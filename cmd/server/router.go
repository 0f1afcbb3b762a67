package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/api"
)

// setupRouter configures the application router with all routes and
// middleware.
func setupRouter(batches api.BatchRunner, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	handler := api.NewBatchHandler(batches, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/batches", func(r chi.Router) {
			r.Post("/", handler.CreateBatch)
			r.Get("/", handler.ListBatches)
			r.Get("/{batchID}", handler.GetBatch)
		})
	})

	r.Get("/health", handler.Health)

	return r
}
