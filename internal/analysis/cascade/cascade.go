package cascade

import (
	"context"
	"fmt"
	"time"

	"github.com/biolens/BioLensAPI/internal/analysis/llm"
	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
	"github.com/biolens/BioLensAPI/internal/metrics"
	"github.com/biolens/BioLensAPI/pkg/logger_i"
)

// Candidate is one configured backend of the cascade. Position in the
// Manager's list is its priority; there is no dynamic re-ranking.
type Candidate struct {
	ID          string
	Tier        string
	Model       string
	Backend     llm.Provider
	Temperature float32
	MaxTokens   int64
	Timeout     time.Duration
}

// Result is a successful cascade invocation: the winning candidate's answer
// plus the full ordered attempt trail, the success attempt included.
type Result struct {
	Content   string
	Candidate string
	Attempts  []reportModel.CascadeAttempt
}

// ExhaustedError reports that every candidate failed. It is the only way the
// manager surfaces total failure; raw transport faults never escape it.
type ExhaustedError struct {
	Attempts []reportModel.CascadeAttempt
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d model backends failed", len(e.Attempts))
}

// Manager holds the immutable priority-ordered candidate list. It carries no
// per-request state, so one Manager serves all concurrent analyses.
type Manager struct {
	candidates []Candidate
	logger     *logger_i.Logger
}

func NewManager(candidates []Candidate) *Manager {
	owned := make([]Candidate, len(candidates))
	copy(owned, candidates)
	return &Manager{
		candidates: owned,
		logger:     logger_i.NewLogger("Cascade"),
	}
}

// FromConfig builds the candidate list off the startup table, resolving each
// provider name to its client. A candidate whose client failed to initialize
// stays in the list; invoking it records a fatal attempt and falls through.
func FromConfig(entries []config.ModelCandidate, providers map[string]llm.Provider) []Candidate {
	candidates := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, Candidate{
			ID:          e.ID,
			Tier:        e.Tier,
			Model:       e.Model,
			Backend:     providers[e.Provider],
			Temperature: e.Temperature,
			MaxTokens:   e.MaxTokens,
			Timeout:     e.Timeout,
		})
	}
	return candidates
}

// Invoke walks the candidates strictly in priority order until one returns a
// well-formed non-empty answer. Every failure, transient or fatal, ends only
// that candidate's attempt; the same candidate is never re-invoked. If the
// parent context dies the in-flight partial trail is abandoned, not returned.
func (m *Manager) Invoke(ctx context.Context, system string, user string) (Result, error) {
	log := m.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	trail := make([]reportModel.CascadeAttempt, 0, len(m.candidates))

	for _, cand := range m.candidates {
		if err := ctx.Err(); err != nil {
			log.Warn("Cascade abandoned, caller went away", "error", err)
			return Result{}, err
		}

		content, latency, err := m.invokeCandidate(ctx, cand, system, user)

		if ctx.Err() != nil {
			log.Warn("Cascade abandoned mid-candidate", "candidate", cand.ID)
			return Result{}, ctx.Err()
		}

		outcome, reason := classify(content, err)
		metrics.CaptureCascadeAttempt(cand.ID, string(outcome))
		trail = append(trail, reportModel.CascadeAttempt{
			Candidate: cand.ID,
			Tier:      cand.Tier,
			Outcome:   outcome,
			Reason:    reason,
			Latency:   latency,
		})

		if outcome == reportModel.OutcomeSuccess {
			log.Info("Cascade succeeded", "candidate", cand.ID, "attempts", len(trail))
			return Result{Content: content, Candidate: cand.ID, Attempts: trail}, nil
		}
		log.Warn("Model candidate failed", "candidate", cand.ID, "outcome", outcome, "reason", reason)
	}

	log.Error("Cascade exhausted", "attempts", len(trail))
	return Result{}, &ExhaustedError{Attempts: trail}
}

func (m *Manager) invokeCandidate(ctx context.Context, cand Candidate, system string, user string) (string, time.Duration, error) {
	if cand.Backend == nil {
		return "", 0, &llm.BackendError{Status: 0, Err: fmt.Errorf("backend %s unavailable", cand.ID)}
	}

	callCtx, cancel := context.WithTimeout(ctx, cand.Timeout)
	defer cancel()

	start := time.Now()
	content, err := cand.Backend.Generate(callCtx, cand.Model, system, user, llm.GenerationParams{
		Temperature: cand.Temperature,
		MaxTokens:   cand.MaxTokens,
	})
	return content, time.Since(start), err
}
