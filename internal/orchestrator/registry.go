package orchestrator

import (
	"fmt"
	"sync"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/generation"
)

// Registry is a thread-safe ProviderResolver backed by an in-memory map.
// Adapters register themselves at startup; requests are routed to them by
// kind for the life of the process.
type Registry struct {
	mu        sync.RWMutex
	providers map[generation.ProviderKind]generation.ProviderClient
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[generation.ProviderKind]generation.ProviderClient),
	}
}

// Register adds or replaces the adapter for its kind.
func (r *Registry) Register(client generation.ProviderClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[client.Kind()] = client
}

// Resolve implements ProviderResolver.
func (r *Registry) Resolve(kind generation.ProviderKind) (generation.ProviderClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.providers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", generation.ErrUnknownProvider, kind)
	}
	return client, nil
}

// Kinds returns the registered provider kinds.
func (r *Registry) Kinds() []generation.ProviderKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]generation.ProviderKind, 0, len(r.providers))
	for kind := range r.providers {
		kinds = append(kinds, kind)
	}
	return kinds
}
