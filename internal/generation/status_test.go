package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusPending, false},
		{StatusProcessing, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusTimedOut, true},
		{StatusCancelled, true},
		{Status("bogus"), false},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.terminal, tc.status.IsTerminal())
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	t.Parallel()

	for _, s := range []Status{
		StatusPending, StatusProcessing, StatusCompleted,
		StatusFailed, StatusTimedOut, StatusCancelled,
	} {
		assert.True(t, s.IsValid(), "status %q should be valid", s)
	}
	assert.False(t, Status("succeeded").IsValid(),
		"provider vocabulary must not leak into the canonical enum")
}

func TestTaskOutcome_Succeeded(t *testing.T) {
	t.Parallel()

	completed := TaskOutcome{State: TaskState{Status: StatusCompleted, Result: "url"}}
	assert.True(t, completed.Succeeded())

	for _, s := range []Status{StatusFailed, StatusTimedOut, StatusCancelled, StatusProcessing} {
		outcome := TaskOutcome{State: TaskState{Status: s}}
		assert.False(t, outcome.Succeeded(), "status %q is not success", s)
	}
}
