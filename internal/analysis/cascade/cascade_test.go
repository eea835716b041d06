package cascade

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/biolens/BioLensAPI/internal/analysis/llm"
	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
)

type mockProvider struct {
	OnGenerate func(ctx context.Context, model string, system string, user string, params llm.GenerationParams) (string, error)
	calls      int32
}

func (m *mockProvider) Generate(ctx context.Context, model string, system string, user string, params llm.GenerationParams) (string, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, model, system, user, params)
	}
	return "mocked answer", nil
}

func threeCandidates(p1, p2, p3 llm.Provider) []Candidate {
	return []Candidate{
		{ID: "one", Tier: "primary", Model: "m1", Backend: p1, Timeout: time.Second},
		{ID: "two", Tier: "secondary", Model: "m2", Backend: p2, Timeout: time.Second},
		{ID: "three", Tier: "fallback", Model: "m3", Backend: p3, Timeout: time.Second},
	}
}

func testCtx() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "cascade-trace")
}

func TestInvoke_FallsThroughToThirdCandidate(t *testing.T) {
	failing := func(ctx context.Context, model, system, user string, p llm.GenerationParams) (string, error) {
		return "", &llm.BackendError{Status: 500, Err: errors.New("upstream blew up")}
	}
	p1 := &mockProvider{OnGenerate: failing}
	p2 := &mockProvider{OnGenerate: failing}
	p3 := &mockProvider{}

	m := NewManager(threeCandidates(p1, p2, p3))
	result, err := m.Invoke(testCtx(), "system", "user")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if result.Candidate != "three" {
		t.Errorf("Candidate got %s, want three", result.Candidate)
	}
	if result.Content != "mocked answer" {
		t.Errorf("Content got %q", result.Content)
	}
	if len(result.Attempts) != 3 {
		t.Fatalf("Trail length got %d, want 3", len(result.Attempts))
	}

	wantOutcomes := []reportModel.AttemptOutcome{
		reportModel.OutcomeTransient,
		reportModel.OutcomeTransient,
		reportModel.OutcomeSuccess,
	}
	wantCandidates := []string{"one", "two", "three"}
	for i, attempt := range result.Attempts {
		if attempt.Candidate != wantCandidates[i] {
			t.Errorf("attempt %d candidate got %s, want %s", i, attempt.Candidate, wantCandidates[i])
		}
		if attempt.Outcome != wantOutcomes[i] {
			t.Errorf("attempt %d outcome got %s, want %s", i, attempt.Outcome, wantOutcomes[i])
		}
	}
}

func TestInvoke_Exhausted(t *testing.T) {
	failing := func(ctx context.Context, model, system, user string, p llm.GenerationParams) (string, error) {
		return "", &llm.BackendError{Status: 429, Err: errors.New("slow down")}
	}
	m := NewManager(threeCandidates(
		&mockProvider{OnGenerate: failing},
		&mockProvider{OnGenerate: failing},
		&mockProvider{OnGenerate: failing},
	))

	_, err := m.Invoke(testCtx(), "system", "user")

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("want ExhaustedError, got %v", err)
	}
	if len(exhausted.Attempts) != 3 {
		t.Errorf("Trail length got %d, want 3", len(exhausted.Attempts))
	}
	for _, attempt := range exhausted.Attempts {
		if attempt.Outcome == reportModel.OutcomeSuccess {
			t.Errorf("exhausted trail contains a success: %+v", attempt)
		}
	}
}

func TestInvoke_SameInputsSameTrail(t *testing.T) {
	failing := func(ctx context.Context, model, system, user string, p llm.GenerationParams) (string, error) {
		return "", &llm.BackendError{Status: 503, Err: errors.New("unavailable")}
	}
	build := func() *Manager {
		return NewManager(threeCandidates(
			&mockProvider{OnGenerate: failing},
			&mockProvider{},
			&mockProvider{},
		))
	}

	first, err1 := build().Invoke(testCtx(), "system", "user")
	second, err2 := build().Invoke(testCtx(), "system", "user")
	if err1 != nil || err2 != nil {
		t.Fatalf("Invoke failed: %v %v", err1, err2)
	}

	if len(first.Attempts) != len(second.Attempts) {
		t.Fatalf("trail lengths differ: %d vs %d", len(first.Attempts), len(second.Attempts))
	}
	for i := range first.Attempts {
		if first.Attempts[i].Candidate != second.Attempts[i].Candidate ||
			first.Attempts[i].Outcome != second.Attempts[i].Outcome {
			t.Errorf("attempt %d differs between runs", i)
		}
	}
}

func TestInvoke_AbandonedWhenCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(testCtx())

	p1 := &mockProvider{OnGenerate: func(ctx context.Context, model, system, user string, p llm.GenerationParams) (string, error) {
		return "", &llm.BackendError{Status: 500, Err: errors.New("boom")}
	}}
	// candidate two: the caller goes away while this call is in flight
	p2 := &mockProvider{OnGenerate: func(ctx context.Context, model, system, user string, p llm.GenerationParams) (string, error) {
		cancel()
		return "", ctx.Err()
	}}
	p3 := &mockProvider{}

	m := NewManager(threeCandidates(p1, p2, p3))
	result, err := m.Invoke(ctx, "system", "user")

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if len(result.Attempts) != 0 {
		t.Errorf("abandoned invocation leaked a partial trail of %d attempts", len(result.Attempts))
	}
	if atomic.LoadInt32(&p3.calls) != 0 {
		t.Error("candidate after cancellation was invoked")
	}
}

func TestInvoke_NilBackendFallsThrough(t *testing.T) {
	healthy := &mockProvider{}
	m := NewManager([]Candidate{
		{ID: "dead", Tier: "primary", Model: "m1", Backend: nil, Timeout: time.Second},
		{ID: "alive", Tier: "secondary", Model: "m2", Backend: healthy, Timeout: time.Second},
	})

	result, err := m.Invoke(testCtx(), "system", "user")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if result.Candidate != "alive" {
		t.Errorf("Candidate got %s, want alive", result.Candidate)
	}
	if result.Attempts[0].Outcome != reportModel.OutcomeFatal {
		t.Errorf("nil backend outcome got %s, want fatal", result.Attempts[0].Outcome)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		err         error
		wantOutcome reportModel.AttemptOutcome
	}{
		{"clean answer", "all good", nil, reportModel.OutcomeSuccess},
		{"blank answer", "   \n", nil, reportModel.OutcomeTransient},
		{"timeout", "", context.DeadlineExceeded, reportModel.OutcomeTransient},
		{"rate limited", "", &llm.BackendError{Status: 429, Err: errors.New("429")}, reportModel.OutcomeTransient},
		{"server error", "", &llm.BackendError{Status: 502, Err: errors.New("502")}, reportModel.OutcomeTransient},
		{"client error", "", &llm.BackendError{Status: 400, Err: errors.New("400")}, reportModel.OutcomeFatal},
		{"auth error", "", &llm.BackendError{Status: 401, Err: errors.New("401")}, reportModel.OutcomeFatal},
		{"backend unavailable", "", &llm.BackendError{Status: 0, Err: errors.New("nil client")}, reportModel.OutcomeFatal},
		{"unknown error", "", errors.New("something odd"), reportModel.OutcomeTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, _ := classify(tt.content, tt.err)
			if outcome != tt.wantOutcome {
				t.Errorf("classify got %s, want %s", outcome, tt.wantOutcome)
			}
		})
	}
}
