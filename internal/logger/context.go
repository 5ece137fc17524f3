package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the context logger, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := loggerFrom(ctx); ok {
		return l
	}
	return zap.NewNop()
}

// WithFields returns ctx whose logger carries fields on every entry, e.g. the
// index a gateway route works on or the id of the running operation.
// Without a context logger ctx is returned as is.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	l, ok := loggerFrom(ctx)
	if !ok || len(fields) == 0 {
		return ctx
	}
	return ContextWithLogger(ctx, l.With(fields...))
}

func loggerFrom(ctx context.Context) (*zap.Logger, bool) {
	l, ok := ctx.Value(ctxKey{}).(*zap.Logger)
	return l, ok && l != nil
}
