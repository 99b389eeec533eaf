package server

import (
	"net/http"
	"sync"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
)

type Server struct {
	mux *chi.Mux
	uc  interfaces.UseCase

	// background jobs started by 202 handlers
	jobs sync.WaitGroup
}

func safeWrite(w http.ResponseWriter, code int, body []byte) {
	w.WriteHeader(code)

	// nosemgrep: go.lang.security.audit.xss.no-direct-write-to-responsewriter.no-direct-write-to-responsewriter
	// Why: The response data is JSON encoded by the server
	if _, err := w.Write(body); err != nil {
		logging.Default().Error("fail to write response", slog.Any("error", err))
	}
}

func New(uc interfaces.UseCase) *Server {
	s := &Server{uc: uc}

	r := chi.NewRouter()
	r.Use(preProcess)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		safeWrite(w, http.StatusOK, []byte("ok"))
	})
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/fetch", s.handleFetch)
		r.Get("/contributions", s.handleListContributions)
		r.Patch("/contributions/selection", s.handleUpdateSelections)
		r.Post("/summaries", s.handleGenerateSummary)
		r.Post("/backfill", s.handleBackfill)
		r.Post("/questions", s.handleAskQuestion)
	})

	s.mux = r
	return s
}

func (x *Server) Mux() *chi.Mux {
	return x.mux
}

// Wait blocks until background jobs accepted by the server have finished
func (x *Server) Wait() {
	x.jobs.Wait()
}
