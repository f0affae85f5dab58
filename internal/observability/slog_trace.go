package observability

import (
	"context"
	"log/slog"

	"github.com/geocoder89/blogspace/internal/actorctx"
	"go.opentelemetry.io/otel/trace"
)

// ContextHandler decorates records with what the context knows about the
// request: the active span and the calling account.
type ContextHandler struct {
	inner slog.Handler
}

func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if ctx == nil {
		return h.inner.Handle(ctx, rec)
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		rec.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	if userID, ok := actorctx.UserIDFrom(ctx); ok {
		rec.AddAttrs(slog.String("user_id", userID))
	}

	return h.inner.Handle(ctx, rec)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.inner.WithAttrs(attrs))
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return NewContextHandler(h.inner.WithGroup(name))
}
