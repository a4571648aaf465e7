package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID    contextKey = "request_id"
	ContextKeyGenerationID contextKey = "generation_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithGenerationID adds a generation ID to the context
func WithGenerationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyGenerationID, id)
}

// GenerationIDFromContext extracts the generation ID from context
func GenerationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyGenerationID).(string); ok {
		return id
	}
	return ""
}
