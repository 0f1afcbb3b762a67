// Package service implements the application services that sit between the
// HTTP API and the orchestration core. BatchService owns provider
// registration, runs batches through the coordinator, and keeps an
// in-memory registry of batch runs that the API reads snapshots from.
package service
