package errutil

import (
	"context"
	"errors"
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
)

// HandleError reports err to Sentry with goerr values as extras and the
// request ID as a tag, then logs it. Cancellation is only logged because it
// is how shutdown and client disconnects end a job.
func HandleError(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	if errors.Is(err, context.Canceled) {
		logging.From(ctx).Warn(msg, "error", err)
		return
	}

	reqID, _ := logging.CtxRequestID(ctx)

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("request_id", string(reqID))
		if goErr := goerr.Unwrap(err); goErr != nil {
			for k, v := range goErr.Values() {
				scope.SetExtra(fmt.Sprintf("%v", k), v)
			}
		}
	})
	evID := hub.CaptureException(err)

	logging.From(ctx).Error(msg,
		"error", err,
		"sentry.EventID", evID,
	)
}
