package taskapi_test

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/infra/taskapi"
)

var testPolicy = taskapi.RetryPolicy{
	BaseDelay:   10 * time.Millisecond,
	MaxDelay:    40 * time.Millisecond,
	MaxAttempts: 4,
	JitterRatio: 0.5,
}

func newClient(t *testing.T, handler http.Handler, options ...taskapi.Option) *taskapi.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	options = append([]taskapi.Option{taskapi.WithRetryPolicy(testPolicy)}, options...)
	client, err := taskapi.New(server.URL, options...)
	gt.NoError(t, err)
	return client
}

var testJob = &model.IngestJob{
	Username:    "alice",
	Week:        "2024-W07",
	Repository:  "https://github.com/octo/hello",
	AccessToken: "ghp_test",
	Metadata: []model.ContributionMetadata{
		{Type: types.ContributionCommit, ID: "abc", Author: "alice", Summary: "fix"},
		{Type: types.ContributionIssue, ID: "7", Author: "alice", Summary: "bug"},
	},
}

func TestNew(t *testing.T) {
	_, err := taskapi.New("")
	gt.True(t, errors.Is(err, types.ErrInvalidOption))

	_, err = taskapi.New("ftp://example.com")
	gt.True(t, errors.Is(err, types.ErrInvalidOption))

	_, err = taskapi.New("https://tasks.example.com/")
	gt.NoError(t, err)
}

func TestSubmitIngest(t *testing.T) {
	t.Run("request body and response", func(t *testing.T) {
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.V(t, r.Method).Equal(http.MethodPost)
			gt.V(t, r.URL.Path).Equal("/api/v1/ingest")
			gt.V(t, r.Header.Get("Content-Type")).Equal("application/json")

			var job model.IngestJob
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&job))
			gt.V(t, job.Username).Equal("alice")
			gt.V(t, job.AccessToken).Equal(types.AccessToken("ghp_test"))
			gt.V(t, len(job.Metadata)).Equal(2)

			fmt.Fprint(w, `{"taskId":"task-1","status":"queued","createdAt":"2024-02-13T10:00:00Z"}`)
		}))

		task, err := client.SubmitIngest(context.Background(), testJob)
		gt.NoError(t, err)
		gt.V(t, task.ID).Equal(types.TaskID("task-1"))
		gt.V(t, task.Kind).Equal(types.TaskKindIngest)
		gt.V(t, task.Status).Equal(types.TaskStatusQueued)
		gt.True(t, task.CreatedAt != nil)
	})

	t.Run("503 twice then success is retried within bounds", func(t *testing.T) {
		var calls int32
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) <= 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, `{"taskId":"task-2","status":"queued"}`)
		}))

		start := time.Now()
		task, err := client.SubmitIngest(context.Background(), testJob)
		elapsed := time.Since(start)

		gt.NoError(t, err)
		gt.V(t, task.ID).Equal(types.TaskID("task-2"))
		gt.V(t, atomic.LoadInt32(&calls)).Equal(int32(3))

		// two sleeps: base and 2*base, each with at most 50% jitter
		gt.True(t, elapsed >= 30*time.Millisecond)
		gt.True(t, elapsed < testPolicy.MaxTotalDelay()+time.Second)
	})

	t.Run("429 is retried", func(t *testing.T) {
		var calls int32
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			fmt.Fprint(w, `{"taskId":"task-3","status":"queued"}`)
		}))

		_, err := client.SubmitIngest(context.Background(), testJob)
		gt.NoError(t, err)
		gt.V(t, atomic.LoadInt32(&calls)).Equal(int32(2))
	})

	t.Run("404 is never retried", func(t *testing.T) {
		var calls int32
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail":"not found"}`)
		}))

		_, err := client.SubmitIngest(context.Background(), testJob)
		gt.True(t, errors.Is(err, types.ErrFatalSubmission))
		gt.False(t, errors.Is(err, types.ErrRetriesExhausted))
		gt.V(t, atomic.LoadInt32(&calls)).Equal(int32(1))
	})

	t.Run("retries exhausted", func(t *testing.T) {
		var calls int32
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))

		_, err := client.SubmitIngest(context.Background(), testJob)
		gt.True(t, errors.Is(err, types.ErrRetriesExhausted))
		gt.False(t, errors.Is(err, types.ErrFatalSubmission))
		gt.V(t, atomic.LoadInt32(&calls)).Equal(int32(testPolicy.MaxAttempts))
	})

	t.Run("unknown response field fails fast", func(t *testing.T) {
		var calls int32
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			fmt.Fprint(w, `{"taskId":"task-4","status":"queued","extra":true}`)
		}))

		_, err := client.SubmitIngest(context.Background(), testJob)
		gt.True(t, errors.Is(err, types.ErrInvalidResponse))
		gt.V(t, atomic.LoadInt32(&calls)).Equal(int32(1))
	})

	t.Run("unknown status fails fast", func(t *testing.T) {
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"taskId":"task-5","status":"paused"}`)
		}))

		_, err := client.SubmitIngest(context.Background(), testJob)
		gt.True(t, errors.Is(err, types.ErrInvalidResponse))
	})

	t.Run("slow response times out and is retried", func(t *testing.T) {
		var calls int32
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				time.Sleep(300 * time.Millisecond)
			}
			fmt.Fprint(w, `{"taskId":"task-6","status":"queued"}`)
		}), taskapi.WithTimeouts(taskapi.Timeouts{
			Dial:           time.Second,
			TLSHandshake:   time.Second,
			ResponseHeader: 100 * time.Millisecond,
			Request:        time.Second,
		}))

		task, err := client.SubmitIngest(context.Background(), testJob)
		gt.NoError(t, err)
		gt.V(t, task.ID).Equal(types.TaskID("task-6"))
		gt.V(t, atomic.LoadInt32(&calls)).Equal(int32(2))
	})
}

func TestSubmitQuestion(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.V(t, r.URL.Path).Equal("/api/v1/ask")

		body, err := io.ReadAll(r.Body)
		gt.NoError(t, err)
		var raw map[string]any
		gt.NoError(t, json.Unmarshal(body, &raw))
		_, hasSummary := raw["summary"]
		gt.False(t, hasSummary)
		gt.V(t, raw["question"]).Equal("what did alice ship?")

		fmt.Fprint(w, `{"taskId":"q-1","status":"queued"}`)
	}))

	task, err := client.SubmitQuestion(context.Background(), &model.QuestionJob{
		Question:   "what did alice ship?",
		Repository: "https://github.com/octo/hello",
	})
	gt.NoError(t, err)
	gt.V(t, task.Kind).Equal(types.TaskKindQuestion)
}

// sequenceHandler serves the given responses in order, repeating the last one
func sequenceHandler(t *testing.T, calls *int32, responses ...func(w http.ResponseWriter)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.V(t, r.Method).Equal(http.MethodGet)
		gt.V(t, r.URL.Path).Equal("/api/v1/tasks/task-1")
		n := int(atomic.AddInt32(calls, 1)) - 1
		if n >= len(responses) {
			n = len(responses) - 1
		}
		responses[n](w)
	})
}

func status(body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		fmt.Fprint(w, body)
	}
}

func failWith(code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(code)
	}
}

func TestAwaitCompletion(t *testing.T) {
	t.Run("polls until done absorbing transient errors", func(t *testing.T) {
		var calls int32
		client := newClient(t, sequenceHandler(t, &calls,
			status(`{"taskId":"task-1","status":"queued","totalCount":0,"ingestedCount":0,"failedCount":0}`),
			status(`{"taskId":"task-1","status":"ingesting","totalCount":4,"ingestedCount":2,"failedCount":0}`),
			failWith(http.StatusServiceUnavailable),
			status(`{"taskId":"task-1","status":"summarizing","totalCount":4,"ingestedCount":4,"failedCount":0}`),
			status(`{"taskId":"task-1","status":"done","totalCount":4,"ingestedCount":4,"failedCount":0,"result":{"overview":"ok"},"errorMessage":null,"completedAt":"2024-02-13T10:00:00Z"}`),
		))

		var updates []types.TaskStatus
		task, err := client.AwaitCompletion(context.Background(), "task-1", 5*time.Millisecond,
			func(ctx context.Context, task *model.Task) {
				updates = append(updates, task.Status)
			})
		gt.NoError(t, err)
		gt.V(t, task.Status).Equal(types.TaskStatusDone)
		gt.V(t, task.IngestedCount).Equal(4)
		gt.True(t, task.CompletedAt != nil)
		gt.V(t, string(task.Result)).Equal(`{"overview":"ok"}`)
		gt.V(t, updates).Equal([]types.TaskStatus{
			types.TaskStatusQueued,
			types.TaskStatusIngesting,
			types.TaskStatusSummarizing,
			types.TaskStatusDone,
		})
		gt.V(t, atomic.LoadInt32(&calls)).Equal(int32(5))
	})

	t.Run("failed task is a business failure", func(t *testing.T) {
		var calls int32
		client := newClient(t, sequenceHandler(t, &calls,
			status(`{"taskId":"task-1","status":"ingesting","totalCount":2,"ingestedCount":1,"failedCount":1}`),
			status(`{"taskId":"task-1","status":"failed","totalCount":2,"ingestedCount":1,"failedCount":1,"result":null,"errorMessage":"model overloaded"}`),
		))

		task, err := client.AwaitCompletion(context.Background(), "task-1", 5*time.Millisecond, nil)
		gt.True(t, errors.Is(err, types.ErrTaskFailed))
		gt.False(t, errors.Is(err, types.ErrRetriesExhausted))

		var failed *types.TaskFailedError
		gt.True(t, errors.As(err, &failed))
		gt.V(t, failed.Message).Equal("model overloaded")
		gt.V(t, failed.TaskID).Equal(types.TaskID("task-1"))

		gt.True(t, task != nil)
		gt.V(t, task.Status).Equal(types.TaskStatusFailed)
		gt.True(t, task.Result == nil)
	})

	t.Run("persistent poll failure exhausts retries", func(t *testing.T) {
		var calls int32
		client := newClient(t, sequenceHandler(t, &calls,
			status(`{"taskId":"task-1","status":"queued"}`),
			failWith(http.StatusInternalServerError),
		))

		_, err := client.AwaitCompletion(context.Background(), "task-1", 5*time.Millisecond, nil)
		gt.True(t, errors.Is(err, types.ErrRetriesExhausted))
		gt.V(t, atomic.LoadInt32(&calls)).Equal(int32(1 + testPolicy.MaxAttempts))
	})

	t.Run("non transient poll failure aborts", func(t *testing.T) {
		var calls int32
		client := newClient(t, sequenceHandler(t, &calls,
			status(`{"taskId":"task-1","status":"queued"}`),
			failWith(http.StatusUnauthorized),
		))

		_, err := client.AwaitCompletion(context.Background(), "task-1", 5*time.Millisecond, nil)
		gt.Error(t, err)
		var statusErr *types.HTTPStatusError
		gt.True(t, errors.As(err, &statusErr))
		gt.V(t, statusErr.StatusCode).Equal(http.StatusUnauthorized)
		gt.V(t, atomic.LoadInt32(&calls)).Equal(int32(2))
	})

	t.Run("context cancel stops waiting", func(t *testing.T) {
		var calls int32
		client := newClient(t, sequenceHandler(t, &calls,
			status(`{"taskId":"task-1","status":"queued"}`),
		))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := client.AwaitCompletion(ctx, "task-1", time.Hour, nil)
		gt.True(t, errors.Is(err, context.DeadlineExceeded))
		gt.True(t, time.Since(start) < time.Second)
	})

	t.Run("mismatched task id is rejected", func(t *testing.T) {
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"taskId":"other","status":"queued"}`)
		}))

		_, err := client.GetTask(context.Background(), "task-1")
		gt.True(t, errors.Is(err, types.ErrInvalidResponse))
	})
}

func TestBackOffDelays(t *testing.T) {
	policy := taskapi.RetryPolicy{
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    300 * time.Millisecond,
		MaxAttempts: 5,
		JitterRatio: 0.5,
	}

	t.Run("without jitter", func(t *testing.T) {
		delays := taskapi.BackOffDelays(policy, func() float64 { return 0 })
		gt.V(t, delays).Equal([]time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			300 * time.Millisecond,
			300 * time.Millisecond,
		})
	})

	t.Run("jitter adds at most half of the delay", func(t *testing.T) {
		delays := taskapi.BackOffDelays(policy, func() float64 { return 0.5 })
		gt.V(t, delays).Equal([]time.Duration{
			125 * time.Millisecond,
			250 * time.Millisecond,
			375 * time.Millisecond,
			375 * time.Millisecond,
		})
		gt.V(t, policy.MaxTotalDelay()).Equal(1350 * time.Millisecond)
	})

	t.Run("single attempt never sleeps", func(t *testing.T) {
		p := policy
		p.MaxAttempts = 1
		gt.V(t, len(taskapi.BackOffDelays(p, func() float64 { return 0 }))).Equal(0)
	})
}

func TestIsRetryable(t *testing.T) {
	gt.True(t, taskapi.IsRetryable(&types.HTTPStatusError{StatusCode: 503}))
	gt.True(t, taskapi.IsRetryable(&types.HTTPStatusError{StatusCode: 429}))
	gt.False(t, taskapi.IsRetryable(&types.HTTPStatusError{StatusCode: 400}))
	gt.False(t, taskapi.IsRetryable(&types.HTTPStatusError{StatusCode: 404}))
	gt.True(t, taskapi.IsRetryable(io.ErrUnexpectedEOF))
	gt.False(t, taskapi.IsRetryable(types.ErrInvalidResponse))
	gt.False(t, taskapi.IsRetryable(context.Canceled))
	gt.False(t, taskapi.IsRetryable(errors.New("unknown")))

	t.Run("transport errors", func(t *testing.T) {
		wrap := func(err error) error {
			return &url.Error{Op: "Post", URL: "https://tasks.example.com/ingest", Err: err}
		}
		gt.True(t, taskapi.IsRetryable(wrap(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED})))
		gt.True(t, taskapi.IsRetryable(wrap(context.DeadlineExceeded)))
		gt.True(t, taskapi.IsRetryable(wrap(io.ErrUnexpectedEOF)))
		gt.False(t, taskapi.IsRetryable(wrap(errors.New(`unsupported protocol scheme "ftp"`))))
		gt.False(t, taskapi.IsRetryable(wrap(x509.UnknownAuthorityError{})))
	})
}

func TestUntrustedCertificateIsNotRetried(t *testing.T) {
	var conns int32
	server := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not be reached")
	}))
	server.Config.ConnState = func(c net.Conn, state http.ConnState) {
		if state == http.StateNew {
			atomic.AddInt32(&conns, 1)
		}
	}
	server.Config.ErrorLog = log.New(io.Discard, "", 0)
	server.StartTLS()
	t.Cleanup(server.Close)

	// the default client does not trust the test server certificate
	client, err := taskapi.New(server.URL,
		taskapi.WithRetryPolicy(testPolicy),
		taskapi.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
	)
	gt.NoError(t, err)

	_, err = client.SubmitIngest(context.Background(), testJob)
	gt.Error(t, err)
	gt.False(t, errors.Is(err, types.ErrRetriesExhausted))
	gt.V(t, atomic.LoadInt32(&conns)).Equal(int32(1))
}
