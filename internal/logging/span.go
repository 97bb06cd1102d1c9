package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span measures one engine operation. It is logged at debug level on success
// and at warn level when the operation fails.
type Span struct {
	name   string
	logger *slog.Logger
	start  time.Time
}

// StartSpan derives a child span from ctx. The returned context carries a
// logger annotated with the span and any extra attributes, so store calls made
// under it log with the same fields.
func StartSpan(ctx context.Context, name string, attrs ...slog.Attr) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	spanID := uuid.NewString()
	args := make([]any, 0, len(attrs)+3)
	args = append(args, slog.String("span_id", spanID), slog.String("span_name", name))
	if parent := spanIDFromContext(ctx); parent != "" {
		args = append(args, slog.String("parent_span_id", parent))
	}
	for _, attr := range attrs {
		args = append(args, attr)
	}

	logger := FromContext(ctx).With(args...)
	return withSpan(ctx, logger, spanID), &Span{name: name, logger: logger, start: time.Now()}
}

// End records the span outcome. Pass the operation's error, or nil.
func (s *Span) End(err error) {
	if s == nil {
		return
	}
	elapsed := slog.Duration("duration", time.Since(s.start))
	if err != nil {
		s.logger.Warn("span failed", elapsed, slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("span completed", elapsed)
}
