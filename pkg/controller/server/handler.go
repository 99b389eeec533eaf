package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/repository"
	"github.com/secmon-lab/ghdigest/pkg/utils/errutil"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
)

const (
	defaultPerPage = 100
	maxBodySize    = 1 << 20
)

type errorResponse struct {
	Error string `json:"error"`
}

type acceptedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type selectionResponse struct {
	Updated int `json:"updated"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		errutil.HandleError(ctx, "fail to encode response", err)
		safeWrite(w, http.StatusInternalServerError, []byte(`{"error":"internal error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safeWrite(w, code, body)
}

// writeError maps err to a status code. Only unexpected errors are reported.
func writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	code := statusCodeOf(err)
	if code >= http.StatusInternalServerError {
		errutil.HandleError(ctx, msg, err)
		writeJSON(ctx, w, code, errorResponse{Error: msg})
		return
	}

	logging.From(ctx).Info(msg, slog.Any("error", err), slog.Int("status_code", code))
	writeJSON(ctx, w, code, errorResponse{Error: err.Error()})
}

func statusCodeOf(err error) int {
	switch {
	case errors.Is(err, types.ErrValidationFailed),
		errors.Is(err, types.ErrInvalidRepositoryURL),
		errors.Is(err, repository.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrNoCredentialAvailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return goerr.Wrap(err, "failed to read request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return goerr.Wrap(types.ErrValidationFailed, "request body is not valid JSON", goerr.V("cause", err.Error()))
	}
	return nil
}

// runInBackground serves 202 endpoints. The job outlives the request and
// keeps its logger, request ID and clock.
func (x *Server) runInBackground(r *http.Request, name string, job func(ctx context.Context) error) {
	ctx := DetachContext(r.Context())
	x.jobs.Add(1)
	go func() {
		defer x.jobs.Done()
		logger := logging.From(ctx).With(slog.String("job", name))
		logger.Info("Starting background job")

		if err := job(ctx); err != nil {
			errutil.HandleError(ctx, "background job failed", goerr.Wrap(err, "background job failed", goerr.V("job", name)))
			return
		}
		logger.Info("Background job completed")
	}()
}

func (x *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		report *model.FetchReport
		err    error
	)
	if url := r.URL.Query().Get("repository_url"); url != "" {
		report, err = x.uc.FetchRepositoryByURL(ctx, url)
	} else {
		report, err = x.uc.FetchAllRepositories(ctx)
	}
	if err != nil {
		writeError(ctx, w, "fail to fetch contributions", err)
		return
	}

	if rl := report.RateLimited(); rl != nil {
		rle := types.NewRateLimitError(rl.Remaining, rl.Reset)
		w.Header().Set("Retry-After", strconv.Itoa(rle.RetryAfter(logging.CtxTime(ctx))))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rle.Remaining))
		w.Header().Set("X-RateLimit-Reset", rle.ResetEpoch())
		writeJSON(ctx, w, http.StatusTooManyRequests, report)
		return
	}

	writeJSON(ctx, w, http.StatusOK, report)
}

func (x *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseContributionFilter(r)
	if err != nil {
		writeError(ctx, w, "invalid contribution query", err)
		return
	}

	contributions, err := x.uc.ListContributions(ctx, filter)
	if err != nil {
		writeError(ctx, w, "fail to list contributions", err)
		return
	}
	if contributions == nil {
		contributions = []*model.Contribution{}
	}
	writeJSON(ctx, w, http.StatusOK, contributions)
}

func parseContributionFilter(r *http.Request) (*model.ContributionFilter, error) {
	q := r.URL.Query()
	filter := &model.ContributionFilter{
		RepositoryID: types.RepositoryID(q.Get("repository_id")),
		Author:       q.Get("author"),
		Type:         types.ContributionType(q.Get("type")),
	}

	for key, dst := range map[string]**time.Time{"since": &filter.Since, "until": &filter.Until} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		t, err := parseQueryTime(v)
		if err != nil {
			return nil, goerr.Wrap(types.ErrValidationFailed, "invalid time", goerr.V("param", key), goerr.V("value", v))
		}
		*dst = &t
	}

	if v := q.Get("selected"); v != "" {
		selected, err := strconv.ParseBool(v)
		if err != nil {
			return nil, goerr.Wrap(types.ErrValidationFailed, "invalid selected", goerr.V("value", v))
		}
		filter.Selected = &selected
	}

	page, err := positiveIntParam(q.Get("page"), 1)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid page")
	}
	perPage, err := positiveIntParam(q.Get("per_page"), defaultPerPage)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid per_page")
	}
	filter.Offset = (page - 1) * perPage
	filter.Limit = perPage

	return filter, nil
}

// parseQueryTime accepts RFC3339 or a plain UTC date
func parseQueryTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, v)
}

func positiveIntParam(v string, defaultValue int) (int, error) {
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, goerr.Wrap(types.ErrValidationFailed, "must be a positive integer", goerr.V("value", v))
	}
	return n, nil
}

func (x *Server) handleUpdateSelections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var updates []*model.SelectionUpdate
	if err := decodeBody(r, &updates); err != nil {
		writeError(ctx, w, "invalid selection request", err)
		return
	}
	for i, u := range updates {
		if err := u.Validate(); err != nil {
			writeError(ctx, w, "invalid selection request", goerr.Wrap(err, "invalid selection update", goerr.V("index", i)))
			return
		}
	}

	n, err := x.uc.UpdateSelections(ctx, updates)
	if err != nil {
		writeError(ctx, w, "fail to update selections", err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, selectionResponse{Updated: n})
}

func (x *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input model.GenerateSummaryInput
	if err := decodeBody(r, &input); err != nil {
		writeError(ctx, w, "invalid summary request", err)
		return
	}
	if err := input.Validate(); err != nil {
		writeError(ctx, w, "invalid summary request", err)
		return
	}
	input.Cadence = types.PollInteractive

	x.runInBackground(r, "summary", func(ctx context.Context) error {
		summary, err := x.uc.GenerateWeeklySummary(ctx, &input)
		if err != nil {
			return err
		}
		if summary == nil {
			logging.From(ctx).Info("No summary generated", slog.String("username", input.Username), slog.Any("week", input.Week))
		}
		return nil
	})

	writeJSON(ctx, w, http.StatusAccepted, acceptedResponse{Status: "accepted", Message: "summary generation started"})
}

func (x *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input model.BackfillInput
	if err := decodeBody(r, &input); err != nil {
		writeError(ctx, w, "invalid backfill request", err)
		return
	}
	if err := input.Validate(); err != nil {
		writeError(ctx, w, "invalid backfill request", err)
		return
	}

	x.runInBackground(r, "backfill", func(ctx context.Context) error {
		report, err := x.uc.Backfill(ctx, &input)
		if err != nil {
			return err
		}
		logging.From(ctx).Info("Backfill finished", slog.Any("report", report))
		return nil
	})

	writeJSON(ctx, w, http.StatusAccepted, acceptedResponse{Status: "accepted", Message: "backfill started"})
}

func (x *Server) handleAskQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input model.AskQuestionInput
	if err := decodeBody(r, &input); err != nil {
		writeError(ctx, w, "invalid question request", err)
		return
	}

	qa, err := x.uc.AskQuestion(ctx, &input)
	if err != nil {
		writeError(ctx, w, "fail to answer question", err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, qa)
}
