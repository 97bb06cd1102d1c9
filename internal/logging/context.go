package logging

import (
	"context"
	"log/slog"
)

// scope is the per-request logging state. It is stored as one immutable
// context value and copied on every change.
type scope struct {
	logger    *slog.Logger
	requestID string
	spanID    string
}

type scopeKey struct{}

func scopeFrom(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func withScope(ctx context.Context, update func(*scope)) context.Context {
	s := scopeFrom(ctx)
	update(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithLogger stores the provided logger on the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return withScope(ctx, func(s *scope) { s.logger = logger })
}

// FromContext returns the request-scoped logger or falls back to slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger := scopeFrom(ctx).logger; logger != nil {
		return logger
	}
	return slog.Default()
}

// WithRequestID stores a request identifier on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return withScope(ctx, func(s *scope) { s.requestID = requestID })
}

// RequestIDFromContext retrieves a previously stored request identifier.
func RequestIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// withSpan swaps in the logger and id of a newly started span.
func withSpan(ctx context.Context, logger *slog.Logger, spanID string) context.Context {
	return withScope(ctx, func(s *scope) {
		s.logger = logger
		s.spanID = spanID
	})
}

func spanIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).spanID
}
