package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/convoycubano1-glitch/boostify-music-sub024/internal/generation"
)

// pollStep is one scripted observation from the mock provider.
type pollStep struct {
	res generation.PollResult
	err error
}

func processingStep(percent int) pollStep {
	return pollStep{res: generation.PollResult{
		Status:          generation.StatusProcessing,
		ProgressPercent: percent,
	}}
}

func completedStep(result string) pollStep {
	return pollStep{res: generation.PollResult{
		Status:          generation.StatusCompleted,
		ProgressPercent: 100,
		Result:          result,
	}}
}

func failedStep(detail string) pollStep {
	return pollStep{res: generation.PollResult{
		Status:          generation.StatusFailed,
		ProgressPercent: generation.ProgressUnknown,
		FailureDetail:   detail,
	}}
}

func transportErrStep() pollStep {
	return pollStep{err: fmt.Errorf("connection reset by peer")}
}

// mockProvider is a scripted in-memory ProviderClient. Poll behavior is
// driven by pollFn, which receives the task ID and the 1-based count of
// poll calls made for that task so far. It also tracks the maximum number
// of concurrent Poll calls ever observed, for concurrency-bound assertions.
type mockProvider struct {
	kind generation.ProviderKind

	mu         sync.Mutex
	submitErr  error
	submitted  int
	payloads   map[string]any
	pollCounts map[string]int

	pollFn    func(taskID string, call int) (generation.PollResult, error)
	pollDelay time.Duration

	inFlight    int32
	maxInFlight int32
}

func newMockProvider(kind generation.ProviderKind) *mockProvider {
	return &mockProvider{
		kind:       kind,
		payloads:   make(map[string]any),
		pollCounts: make(map[string]int),
	}
}

// script installs a fixed poll sequence shared by every task; the final
// step repeats once the sequence is exhausted.
func (m *mockProvider) script(steps ...pollStep) {
	m.pollFn = func(_ string, call int) (generation.PollResult, error) {
		idx := call - 1
		if idx >= len(steps) {
			idx = len(steps) - 1
		}
		return steps[idx].res, steps[idx].err
	}
}

func (m *mockProvider) Kind() generation.ProviderKind {
	return m.kind
}

func (m *mockProvider) Submit(_ context.Context, payload any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitErr != nil {
		return "", m.submitErr
	}
	m.submitted++
	taskID := fmt.Sprintf("task-%d", m.submitted)
	m.payloads[taskID] = payload
	return taskID, nil
}

func (m *mockProvider) Poll(ctx context.Context, taskID string) (generation.PollResult, error) {
	cur := atomic.AddInt32(&m.inFlight, 1)
	for {
		max := atomic.LoadInt32(&m.maxInFlight)
		if cur <= max || atomic.CompareAndSwapInt32(&m.maxInFlight, max, cur) {
			break
		}
	}
	defer atomic.AddInt32(&m.inFlight, -1)

	if m.pollDelay > 0 {
		select {
		case <-time.After(m.pollDelay):
		case <-ctx.Done():
			return generation.PollResult{}, ctx.Err()
		}
	}

	m.mu.Lock()
	m.pollCounts[taskID]++
	call := m.pollCounts[taskID]
	fn := m.pollFn
	m.mu.Unlock()

	return fn(taskID, call)
}

func (m *mockProvider) payloadFor(taskID string) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payloads[taskID]
}

func (m *mockProvider) submitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitted
}

func (m *mockProvider) maxConcurrentPolls() int {
	return int(atomic.LoadInt32(&m.maxInFlight))
}
