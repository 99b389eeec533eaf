package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/secmon-lab/ghdigest/pkg/domain/types"
)

type ctxRequestIDKey struct{}

// CtxRequestID returns the request ID of ctx. If none is set, a new ID is
// generated and returned with a derived context holding it.
func CtxRequestID(ctx context.Context) (types.RequestID, context.Context) {
	if id, ok := ctx.Value(ctxRequestIDKey{}).(types.RequestID); ok {
		return id, ctx
	}

	newID := types.NewRequestID()
	return newID, context.WithValue(ctx, ctxRequestIDKey{}, newID)
}

// CtxWithRequestID returns a new context holding id, e.g. one propagated by
// an upstream proxy
func CtxWithRequestID(ctx context.Context, id types.RequestID) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey{}, id)
}

type ctxLoggerKey struct{}

// With returns a new context with logger
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns logger from context. If logger is not set, return default logger
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return l
	}
	return defaultLogger
}

type ctxTimeKey struct{}
type TimeFunc func() time.Time

// CtxTime returns the current time of ctx. Tests inject a fixed clock with CtxWithTime.
func CtxTime(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ctxTimeKey{}).(TimeFunc); ok {
		return t()
	}
	return time.Now()
}

// CtxWithTime returns a new context with time function
func CtxWithTime(ctx context.Context, timeFunc TimeFunc) context.Context {
	return context.WithValue(ctx, ctxTimeKey{}, timeFunc)
}

// InheritContextValues copies request ID and clock from src to dst. The
// logger is not copied; use With separately.
func InheritContextValues(dst, src context.Context) context.Context {
	if reqID, ok := src.Value(ctxRequestIDKey{}).(types.RequestID); ok {
		dst = context.WithValue(dst, ctxRequestIDKey{}, reqID)
	}
	if timeFunc, ok := src.Value(ctxTimeKey{}).(TimeFunc); ok {
		dst = context.WithValue(dst, ctxTimeKey{}, timeFunc)
	}
	return dst
}
