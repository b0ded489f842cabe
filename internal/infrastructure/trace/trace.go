// internal/infrastructure/trace/trace.go
package trace

import (
	"context"

	"github.com/google/uuid"
)

// Keys for context values
type contextKey string

const (
	runIDKey contextKey = "run_id"
)

// NewRunID generates a unique identifier for one invocation
func NewRunID() string {
	return uuid.New().String()
}

// WithRunID returns a context carrying the run ID
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID retrieves the run ID from context
func RunID(ctx context.Context) string {
	runID, ok := ctx.Value(runIDKey).(string)
	if !ok || runID == "" {
		return "unknown"
	}
	return runID
}
