package llm

import (
	"context"
	"fmt"
)

type GenerationParams struct {
	Temperature float32
	MaxTokens   int64
}

// Provider is one model backend. Implementations map their SDK faults to
// BackendError so the cascade can classify outcomes without knowing which
// vendor it is talking to.
type Provider interface {
	Generate(ctx context.Context, model string, system string, user string, params GenerationParams) (string, error)
}

// BackendError carries the HTTP-level status of a failed backend call.
type BackendError struct {
	Status int
	Err    error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned %d: %v", e.Status, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
