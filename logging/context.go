package logging

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

type runIDKey struct{}

func NewRunID() string {
	return uuid.NewString()
}

// WithRunID stores the run id and tags the context logger with it.
func WithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, runIDKey{}, runID)
	logger := logr.FromContextOrDiscard(ctx).WithValues("runID", runID)
	return logr.NewContext(ctx, logger)
}

func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	runID, _ := ctx.Value(runIDKey{}).(string)
	return runID
}

func IntoContext(ctx context.Context, logger logr.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return logr.NewContext(ctx, logger)
}

func FromContext(ctx context.Context) logr.Logger {
	if ctx == nil {
		return logr.Discard()
	}
	return logr.FromContextOrDiscard(ctx)
}
