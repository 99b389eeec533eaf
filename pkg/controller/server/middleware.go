package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
)

const maxRequestIDLength = 128

func preProcess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if v := r.Header.Get("X-Request-ID"); v != "" && len(v) <= maxRequestIDLength {
			ctx = logging.CtxWithRequestID(ctx, types.RequestID(v))
		}
		reqID, ctx := logging.CtxRequestID(ctx)
		logger := logging.Default().With(slog.Any("request_id", reqID))
		ctx = logging.With(ctx, logger)
		w.Header().Set("X-Request-ID", string(reqID))

		lw := &statusCodeLogger{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // Default to 200 if WriteHeader is not called
		}

		requestedAt := time.Now()
		next.ServeHTTP(lw, r.WithContext(ctx))

		logger.Info("http access",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
			slog.Int("status_code", lw.statusCode),
			slog.Int64("content_length", r.ContentLength),
			slog.String("user_agent", r.UserAgent()),
			slog.Duration("elapsed", time.Since(requestedAt)),
		)
	})
}

type statusCodeLogger struct {
	http.ResponseWriter
	statusCode int
}

func (x *statusCodeLogger) WriteHeader(code int) {
	x.statusCode = code
	x.ResponseWriter.WriteHeader(code)
}
