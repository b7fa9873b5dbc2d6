package logger

import (
	"context"

	"go.uber.org/zap"
)

// loggerContextKey is the context key type for storing the logger.
// A dedicated type avoids collisions with other packages' context keys.
type loggerContextKey struct{}

// ToContext returns a new context carrying the provided logger.
func ToContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, l)
}

// FromContext extracts the logger from the context.
// It falls back to the global logger when the context carries none.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(loggerContextKey{}).(*zap.SugaredLogger); ok && l != nil {
		return l
	}

	return global
}

// WithName returns a context whose logger is named after the provided component.
// Names are chained by zap, so nested calls produce "parent.child" names.
func WithName(ctx context.Context, name string) context.Context {
	return ToContext(ctx, FromContext(ctx).Named(name))
}

// WithKV returns a context whose logger always logs the provided key-value pair.
func WithKV(ctx context.Context, key string, value any) context.Context {
	return ToContext(ctx, FromContext(ctx).With(key, value))
}

// WithFields returns a context whose logger always logs the provided fields.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return ToContext(ctx, FromContext(ctx).Desugar().With(fields...).Sugar())
}
