package middleware

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// WithLogger returns a copy of ctx carrying log.
func WithLogger(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, log)
}

// LoggerFromContext returns the request-scoped logger, or a no-op logger when
// the request did not pass through RequestLogger.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(loggerContextKey).(*zap.Logger); ok && log != nil {
		return log
	}
	return zap.NewNop()
}
