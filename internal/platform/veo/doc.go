// Package veo implements generation.ProviderClient for Google's Veo video
// generation models through the google.golang.org/genai long-running
// operations API. GenerateVideos plays the submit role and
// GetVideosOperation the poll role; the operation name is the opaque task
// identifier.
//
// Veo does not report numeric progress, so polls return ProgressUnknown
// until the operation finishes.
package veo
