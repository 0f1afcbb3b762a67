package restgen

import (
	"strings"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/generation"
)

// defaultVocabulary maps the status strings observed across the
// submit/poll provider family onto canonical statuses. Lookups are
// case-insensitive; per-provider additions from Config.StatusVocabulary
// are layered on top.
var defaultVocabulary = map[string]generation.Status{
	// queued but not yet picked up
	"pending":   generation.StatusPending,
	"queued":    generation.StatusPending,
	"queueing":  generation.StatusPending,
	"waiting":   generation.StatusPending,
	"submitted": generation.StatusPending,
	"created":   generation.StatusPending,
	"staged":    generation.StatusPending,

	// actively generating
	"processing":  generation.StatusProcessing,
	"running":     generation.StatusProcessing,
	"in_progress": generation.StatusProcessing,
	"in-progress": generation.StatusProcessing,
	"generating":  generation.StatusProcessing,
	"started":     generation.StatusProcessing,
	"active":      generation.StatusProcessing,

	// terminal success
	"completed":  generation.StatusCompleted,
	"complete":   generation.StatusCompleted,
	"succeeded":  generation.StatusCompleted,
	"success":    generation.StatusCompleted,
	"successful": generation.StatusCompleted,
	"done":       generation.StatusCompleted,
	"finished":   generation.StatusCompleted,

	// terminal failure
	"failed":    generation.StatusFailed,
	"failure":   generation.StatusFailed,
	"error":     generation.StatusFailed,
	"errored":   generation.StatusFailed,
	"rejected":  generation.StatusFailed,
	"canceled":  generation.StatusFailed,
	"cancelled": generation.StatusFailed,
	"expired":   generation.StatusFailed,
}

// canonicalStatus resolves a raw provider status string against the
// layered vocabulary. The second return value reports whether the string
// was recognized.
func (c *Client) canonicalStatus(raw string) (generation.Status, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if status, ok := c.vocabulary[key]; ok {
		return status, true
	}
	return generation.StatusProcessing, false
}
