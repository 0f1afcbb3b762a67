// Package restgen implements generation.ProviderClient for the family of
// generation providers that expose a plain submit/poll JSON-over-HTTP
// protocol (Flux, PiAPI, MiniMax, Kling and similar services).
//
// One Client is configured per provider with its endpoints, credentials
// and status vocabulary. The adapter's single job is normalization: it
// maps each provider response onto the canonical status enum and leaves
// all retry, backoff and deadline decisions to the orchestrator.
package restgen
