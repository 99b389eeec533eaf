package server

import (
	"context"

	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
)

// DetachContext returns a background context carrying the logger, request ID
// and clock of ctx. Jobs accepted with 202 run on it after the request ends.
func DetachContext(ctx context.Context) context.Context {
	bgCtx := logging.With(context.Background(), logging.From(ctx))
	return logging.InheritContextValues(bgCtx, ctx)
}
