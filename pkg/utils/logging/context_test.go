package logging_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
)

func TestLoggerContext(t *testing.T) {
	t.Run("logger set by With is returned", func(t *testing.T) {
		logger := slog.Default()
		ctx := logging.With(context.Background(), logger)
		gt.V(t, logging.From(ctx)).Equal(logger)
	})

	t.Run("default logger without logger in context", func(t *testing.T) {
		gt.V(t, logging.From(context.Background()).Handler()).Equal(logging.Default().Handler())
	})
}

func TestCtxRequestID(t *testing.T) {
	reqID, ctx := logging.CtxRequestID(context.Background())
	gt.V(t, reqID).NotEqual("")

	again, _ := logging.CtxRequestID(ctx)
	gt.V(t, again).Equal(reqID)

	other, _ := logging.CtxRequestID(context.Background())
	gt.V(t, other).NotEqual(reqID)
}

func TestCtxTime(t *testing.T) {
	gt.False(t, logging.CtxTime(context.Background()).IsZero())

	fixed := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	ctx := logging.CtxWithTime(context.Background(), func() time.Time { return fixed })
	gt.V(t, logging.CtxTime(ctx)).Equal(fixed)
}

func TestInheritContextValues(t *testing.T) {
	fixed := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	reqID, src := logging.CtxRequestID(context.Background())
	src = logging.CtxWithTime(src, func() time.Time { return fixed })

	dst := logging.InheritContextValues(context.Background(), src)
	inherited, _ := logging.CtxRequestID(dst)
	gt.V(t, inherited).Equal(reqID)
	gt.V(t, logging.CtxTime(dst)).Equal(fixed)
}
