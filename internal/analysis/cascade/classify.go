package cascade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/biolens/BioLensAPI/internal/analysis/llm"
	"github.com/biolens/BioLensAPI/internal/domain/reportModel"
)

// classify maps a candidate invocation to an enumerable outcome.
// Rate limits, upstream 5xx and timeouts are transient: the backend may well
// be healthy for the next caller. Request-shaped faults (4xx, auth,
// misconfigured backend) are fatal to the candidate. Either way the cascade
// advances; nothing here aborts the whole run.
func classify(content string, err error) (reportModel.AttemptOutcome, string) {
	if err == nil {
		if strings.TrimSpace(content) == "" {
			return reportModel.OutcomeTransient, "empty response"
		}
		return reportModel.OutcomeSuccess, ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return reportModel.OutcomeTransient, "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return reportModel.OutcomeTransient, "canceled"
	}

	var backendErr *llm.BackendError
	if errors.As(err, &backendErr) {
		switch {
		case backendErr.Status == 429:
			return reportModel.OutcomeTransient, "rate limited"
		case backendErr.Status >= 500:
			return reportModel.OutcomeTransient, fmt.Sprintf("upstream error %d", backendErr.Status)
		case backendErr.Status >= 400:
			return reportModel.OutcomeFatal, fmt.Sprintf("rejected with status %d", backendErr.Status)
		default:
			return reportModel.OutcomeFatal, "backend unavailable"
		}
	}

	// unknown transport faults advance the cascade too
	return reportModel.OutcomeTransient, err.Error()
}
