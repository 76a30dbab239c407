package logx

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// With stores logger, narrowed with fields, in ctx.
func With(ctx context.Context, logger *zap.Logger, fields ...zap.Field) context.Context {
	return context.WithValue(ctx, loggerKey, logger.With(fields...))
}

func From(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
