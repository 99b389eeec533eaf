package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"github.com/secmon-lab/ghdigest/pkg/utils/safe"
)

const maxResponseSize = 8 << 20

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Timeouts of one HTTP call to the task API
type Timeouts struct {
	Dial           time.Duration
	TLSHandshake   time.Duration
	ResponseHeader time.Duration
	Request        time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Dial:           5 * time.Second,
		TLSHandshake:   5 * time.Second,
		ResponseHeader: 15 * time.Second,
		Request:        30 * time.Second,
	}
}

// NewHTTPClient builds an http.Client that applies every timeout separately
func NewHTTPClient(t Timeouts) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = (&net.Dialer{Timeout: t.Dial, KeepAlive: 30 * time.Second}).DialContext
	tr.TLSHandshakeTimeout = t.TLSHandshake
	tr.ResponseHeaderTimeout = t.ResponseHeader
	return &http.Client{Transport: tr, Timeout: t.Request}
}

// Client talks to the remote AI task service
type Client struct {
	baseURL     *url.URL
	httpClient  HTTPClient
	retryPolicy RetryPolicy
	rand        func() float64
}

var _ interfaces.TaskAPI = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(client HTTPClient) Option {
	return func(x *Client) {
		x.httpClient = client
	}
}

func WithTimeouts(t Timeouts) Option {
	return func(x *Client) {
		x.httpClient = NewHTTPClient(t)
	}
}

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(x *Client) {
		x.retryPolicy = policy
	}
}

// WithRandom replaces the jitter source, which must return values in [0, 1)
func WithRandom(rand func() float64) Option {
	return func(x *Client) {
		x.rand = rand
	}
}

func New(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "task API base URL is empty")
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, goerr.Wrap(types.ErrInvalidOption, "invalid task API base URL", goerr.V("url", baseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "task API base URL must be http or https", goerr.V("url", baseURL))
	}

	client := &Client{
		baseURL:     u,
		httpClient:  NewHTTPClient(DefaultTimeouts()),
		retryPolicy: DefaultRetryPolicy(),
		rand:        rand.Float64,
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// taskResponse is the wire format of both submission and status responses
type taskResponse struct {
	TaskID        string           `json:"taskId" validate:"required"`
	Status        types.TaskStatus `json:"status" validate:"required,oneof=queued ingesting summarizing done failed"`
	TotalCount    int              `json:"totalCount" validate:"gte=0"`
	IngestedCount int              `json:"ingestedCount" validate:"gte=0"`
	FailedCount   int              `json:"failedCount" validate:"gte=0"`
	Result        json.RawMessage  `json:"result"`
	ErrorMessage  *string          `json:"errorMessage"`
	CreatedAt     *time.Time       `json:"createdAt"`
	StartedAt     *time.Time       `json:"startedAt"`
	CompletedAt   *time.Time       `json:"completedAt"`
}

func (x *taskResponse) toTask(kind types.TaskKind) *model.Task {
	task := &model.Task{
		ID:            types.TaskID(x.TaskID),
		Kind:          kind,
		Status:        x.Status,
		TotalCount:    x.TotalCount,
		IngestedCount: x.IngestedCount,
		FailedCount:   x.FailedCount,
		CreatedAt:     x.CreatedAt,
		StartedAt:     x.StartedAt,
		CompletedAt:   x.CompletedAt,
	}
	if len(x.Result) > 0 && string(x.Result) != "null" {
		task.Result = x.Result
	}
	if x.ErrorMessage != nil {
		task.ErrorMessage = *x.ErrorMessage
	}
	return task
}

// call performs one HTTP round trip and strictly decodes the response into out
func (x *Client) call(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "failed to encode request body", goerr.V("path", path))
		}
		reader = bytes.NewReader(raw)
	}

	u := *x.baseURL
	u.Path = x.baseURL.Path + path
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return goerr.Wrap(err, "failed to create request", goerr.V("path", path))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to send request to task API",
			goerr.V("method", method),
			goerr.V("path", path),
		)
	}
	defer safe.Close(resp.Body)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return goerr.Wrap(err, "failed to read task API response", goerr.V("path", path))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.Wrap(&types.HTTPStatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 512)},
			"task API returned error status",
			goerr.V("method", method),
			goerr.V("path", path),
		)
	}

	if err := model.DecodeStrict(data, out); err != nil {
		return goerr.Wrap(err, "invalid task API response", goerr.V("path", path), goerr.V("body", truncate(string(data), 512)))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (x *Client) submit(ctx context.Context, kind types.TaskKind, path string, job any) (*model.Task, error) {
	var resp taskResponse
	err := x.retry(ctx, "submit_"+string(kind), func(ctx context.Context) error {
		resp = taskResponse{}
		return x.call(ctx, http.MethodPost, path, job, &resp)
	})
	if err != nil {
		var statusErr *types.HTTPStatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return nil, goerr.Wrap(types.ErrFatalSubmission, "task submission was rejected",
				goerr.V("kind", kind),
				goerr.V("status_code", statusErr.StatusCode),
				goerr.V("body", statusErr.Body),
			)
		}
		return nil, goerr.Wrap(err, "failed to submit task", goerr.V("kind", kind))
	}

	task := resp.toTask(kind)
	logging.From(ctx).Info("task submitted",
		slog.Any("task_id", task.ID),
		slog.Any("kind", kind),
		slog.Any("status", task.Status),
	)
	return task, nil
}

func (x *Client) SubmitIngest(ctx context.Context, job *model.IngestJob) (*model.Task, error) {
	return x.submit(ctx, types.TaskKindIngest, "/api/v1/ingest", job)
}

func (x *Client) SubmitQuestion(ctx context.Context, job *model.QuestionJob) (*model.Task, error) {
	return x.submit(ctx, types.TaskKindQuestion, "/api/v1/ask", job)
}

func (x *Client) GetTask(ctx context.Context, id types.TaskID) (*model.Task, error) {
	var resp taskResponse
	err := x.retry(ctx, "get_task", func(ctx context.Context) error {
		resp = taskResponse{}
		return x.call(ctx, http.MethodGet, "/api/v1/tasks/"+url.PathEscape(string(id)), nil, &resp)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get task", goerr.V("task_id", id))
	}
	if resp.TaskID != string(id) {
		return nil, goerr.Wrap(types.ErrInvalidResponse, "task API returned another task",
			goerr.V("task_id", id),
			goerr.V("returned_id", resp.TaskID),
		)
	}
	return resp.toTask(""), nil
}

func progressChanged(prev, cur *model.Task) bool {
	return prev == nil ||
		prev.Status != cur.Status ||
		prev.TotalCount != cur.TotalCount ||
		prev.IngestedCount != cur.IngestedCount ||
		prev.FailedCount != cur.FailedCount
}

func (x *Client) AwaitCompletion(ctx context.Context, id types.TaskID, interval time.Duration, onUpdate func(ctx context.Context, task *model.Task)) (*model.Task, error) {
	var prev *model.Task

	for {
		task, err := x.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}

		if progressChanged(prev, task) {
			logging.From(ctx).Debug("task progress",
				slog.Any("task_id", id),
				slog.Any("status", task.Status),
				slog.Int("ingested", task.IngestedCount),
				slog.Int("failed", task.FailedCount),
				slog.Int("total", task.TotalCount),
			)
			if onUpdate != nil {
				onUpdate(ctx, task)
			}
		}
		prev = task

		switch task.Status {
		case types.TaskStatusDone:
			return task, nil
		case types.TaskStatusFailed:
			return task, goerr.Wrap(&types.TaskFailedError{TaskID: id, Message: task.ErrorMessage},
				"remote task failed", goerr.V("task_id", id))
		}

		delay := interval + time.Duration(x.rand()*x.retryPolicy.JitterRatio*float64(interval))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, goerr.Wrap(ctx.Err(), "stopped waiting for task", goerr.V("task_id", id))
		case <-timer.C:
		}
	}
}
