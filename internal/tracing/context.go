package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ContextKey is the type for context keys.
type ContextKey string

const (
	// TraceIDKey is the context key for trace ID
	TraceIDKey ContextKey = "trace_id"
	// DebateIDKey is the context key for debate ID
	DebateIDKey ContextKey = "debate_id"
)

// NewTraceID generates a new trace ID.
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithDebateID adds a debate ID to the context.
func WithDebateID(ctx context.Context, debateID string) context.Context {
	return context.WithValue(ctx, DebateIDKey, debateID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// GetDebateID retrieves the debate ID from the context.
func GetDebateID(ctx context.Context) string {
	if debateID, ok := ctx.Value(DebateIDKey).(string); ok {
		return debateID
	}
	return ""
}

// NewRequestContext creates a new context for a request with a new trace ID.
func NewRequestContext(ctx context.Context) context.Context {
	return WithTraceID(ctx, NewTraceID())
}

// LoggerFromContext returns a logger enriched with whatever tracing fields
// the context carries.
func LoggerFromContext(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	logCtx := base.With()
	if traceID := GetTraceID(ctx); traceID != "" {
		logCtx = logCtx.Str("trace_id", traceID)
	}
	if debateID := GetDebateID(ctx); debateID != "" {
		logCtx = logCtx.Str("debate_id", debateID)
	}
	return logCtx.Logger()
}
