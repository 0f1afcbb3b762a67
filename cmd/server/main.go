// Command server runs the generation orchestration HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/config"
	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/generation"
	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/orchestrator"
	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/platform/logger"
	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/platform/restgen"
	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/platform/veo"
	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(logger.Config{Level: cfg.Server.LogLevel})

	registry, err := buildRegistry(cfg, log)
	if err != nil {
		return err
	}

	orchCfg := orchestrator.Config{
		PollInterval:        cfg.Orchestrator.PollInterval(),
		MaxWait:             cfg.Orchestrator.MaxWait(),
		MaxBackoff:          cfg.Orchestrator.MaxBackoff(),
		TransientPollBudget: cfg.Orchestrator.TransientPollBudget,
	}
	batches := service.NewBatchService(registry, orchCfg, cfg.Orchestrator.Concurrency, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      setupRouter(batches, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			"port", cfg.Server.Port,
			"providers", registry.Kinds())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// buildRegistry constructs the provider registry from configuration. The
// Veo adapter is registered only when its API key is configured; REST
// providers are registered per entry.
func buildRegistry(cfg *config.Config, log *slog.Logger) (*orchestrator.Registry, error) {
	registry := orchestrator.NewRegistry()

	if cfg.Providers.Veo.Enabled() {
		provider, err := veo.NewProvider(context.Background(), veo.Config{
			APIKey: cfg.Providers.Veo.APIKey,
			Model:  cfg.Providers.Veo.Model,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize veo provider: %w", err)
		}
		registry.Register(provider)
	}

	for _, rest := range cfg.Providers.Rest {
		client, err := restgen.New(restgen.Config{
			Kind:       generation.ProviderKind(rest.Kind),
			BaseURL:    rest.BaseURL,
			SubmitPath: rest.SubmitPath,
			StatusPath: rest.StatusPath,
			APIKey:     rest.APIKey,
			AuthHeader: rest.AuthHeader,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize rest provider %q: %w", rest.Kind, err)
		}
		registry.Register(client)
	}

	if len(registry.Kinds()) == 0 {
		log.Warn("no generation providers configured; all batch submissions will be rejected")
	}

	return registry, nil
}
