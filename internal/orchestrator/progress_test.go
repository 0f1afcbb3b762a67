package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/generation"
)

func TestFanoutReporter_DispatchesToAllRegistered(t *testing.T) {
	t.Parallel()

	first := newRecordingReporter()
	second := newRecordingReporter()

	fanout := NewFanoutReporter()
	fanout.Register(first)
	fanout.Register(second)

	state := generation.TaskState{Status: generation.StatusProcessing, ProgressPercent: 40}
	fanout.TaskTransition(2, state)
	fanout.BatchProgress(BatchProgress{Total: 8, Terminal: 3, Percent: 42.5})

	for _, r := range []*recordingReporter{first, second} {
		got, ok := r.lastState(2)
		assert.True(t, ok)
		assert.Equal(t, state, got)

		r.mu.Lock()
		assert.Len(t, r.aggregates, 1)
		assert.Equal(t, 42.5, r.aggregates[0].Percent)
		r.mu.Unlock()
	}
}

func TestFanoutReporter_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	fanout := NewFanoutReporter()
	// Must not panic with no registered reporters.
	fanout.TaskTransition(0, generation.TaskState{Status: generation.StatusPending})
	fanout.BatchProgress(BatchProgress{})
}

func TestLogReporter_DoesNotPanic(t *testing.T) {
	t.Parallel()

	reporter := NewLogReporter(testLogger())
	reporter.TaskTransition(1, generation.TaskState{
		Status:    generation.StatusFailed,
		ErrorKind: generation.ErrorKindProvider,
	})
	reporter.BatchProgress(BatchProgress{Total: 4, Terminal: 4, Percent: 100})
}
