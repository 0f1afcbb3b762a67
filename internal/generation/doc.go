// Package generation defines the canonical vocabulary shared by the
// generation orchestration subsystem: task and batch statuses, the error
// taxonomy, request/result types, and the ProviderClient contract that
// every concrete provider adapter implements.
//
// The types here are deliberately free of orchestration logic. They form
// the boundary between the application core and the external generation
// providers (Flux, PiAPI, MiniMax, Kling, Veo and their kin), following
// the hexagonal architecture pattern.
package generation
