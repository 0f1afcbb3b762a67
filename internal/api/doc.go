// Package api implements the HTTP handlers for submitting generation
// batches and inspecting their progress.
package api
