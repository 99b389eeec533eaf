package types

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidOption     = goerr.New("invalid option")
	ErrValidationFailed  = goerr.New("validation failed")
	ErrInvalidGitHubData = goerr.New("invalid GitHub data")

	// Configuration errors. Never retried.
	ErrNoCredentialAvailable = goerr.New("no credential available for repository")
	ErrInvalidRepositoryURL  = goerr.New("invalid repository URL")

	ErrRateLimitExceeded = goerr.New("GitHub API rate limit exceeded")

	// Remote task API errors
	ErrRetriesExhausted = goerr.New("retries exhausted")
	ErrFatalSubmission  = goerr.New("fatal task submission error")
	ErrInvalidResponse  = goerr.New("invalid response from task API")
	ErrTaskFailed       = goerr.New("remote task failed")
)

// RateLimitError is raised when the GitHub API quota is exhausted. It carries
// the quota state reported by the API so that callers can build Retry-After.
type RateLimitError struct {
	Remaining int
	Reset     time.Time
}

func NewRateLimitError(remaining int, reset time.Time) *RateLimitError {
	return &RateLimitError{Remaining: remaining, Reset: reset}
}

func (x *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded (remaining=%d, reset=%s)", x.Remaining, x.Reset.UTC().Format(time.RFC3339))
}

func (x *RateLimitError) Is(target error) bool {
	return target == ErrRateLimitExceeded
}

// RetryAfter returns seconds until the quota resets, relative to now. Never negative.
func (x *RateLimitError) RetryAfter(now time.Time) int {
	sec := int(x.Reset.Sub(now).Seconds() + 0.999)
	if sec < 0 {
		return 0
	}
	return sec
}

// ResetEpoch returns the reset time as unix seconds
func (x *RateLimitError) ResetEpoch() string {
	return strconv.FormatInt(x.Reset.Unix(), 10)
}

// AsRateLimitError extracts RateLimitError from the error chain
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// TaskFailedError is the business failure reported by the remote task API
// with status "failed".
type TaskFailedError struct {
	TaskID  TaskID
	Message string
}

func (x *TaskFailedError) Error() string {
	if x.Message == "" {
		return fmt.Sprintf("task %s failed", x.TaskID)
	}
	return fmt.Sprintf("task %s failed: %s", x.TaskID, x.Message)
}

func (x *TaskFailedError) Is(target error) bool {
	return target == ErrTaskFailed
}

// HTTPStatusError is an unexpected HTTP status from a remote API
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (x *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d: %s", x.StatusCode, x.Body)
}

// Retryable reports whether the status is worth another attempt: 5xx and 429.
func (x *HTTPStatusError) Retryable() bool {
	return x.StatusCode >= 500 || x.StatusCode == 429
}
