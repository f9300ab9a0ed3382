package context

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
)

type contextKey string

const contextKeyTraceID = contextKey("traceID")

// TraceIDFromContext extracts the invocation trace ID from the context.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(contextKeyTraceID).(string)

	return traceID, ok
}

// WithTraceID returns a context carrying traceID. Log records emitted with the
// context are tagged with it.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKeyTraceID, traceID)
}

// EnsureTraceID returns ctx unchanged if it carries a trace ID and otherwise tags it
// with a new one.
func EnsureTraceID(ctx context.Context) (context.Context, error) {
	if _, ok := TraceIDFromContext(ctx); ok {
		return ctx, nil
	}

	return WithNewTraceID(ctx)
}

// WithNewTraceID tags the context with a fresh time-ordered trace ID.
func WithNewTraceID(ctx context.Context) (context.Context, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return ctx, fmt.Errorf("new uuid: %w", err)
	}

	return WithTraceID(ctx, id.String()), nil
}
