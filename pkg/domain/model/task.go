package model

import (
	"encoding/json"
	"time"

	"github.com/secmon-lab/ghdigest/pkg/domain/types"
)

// TaskSubject tells what a task is about. Question is set only for question tasks.
type TaskSubject struct {
	RepositoryID types.RepositoryID `json:"repository_id"`
	Username     string             `json:"username,omitempty"`
	Week         types.Week         `json:"week,omitempty"`
	Question     string             `json:"question,omitempty"`
}

// Task is a remote long-running job tracked by polling. Once Status is
// terminal the record must not change.
type Task struct {
	ID            types.TaskID     `json:"id"`
	Kind          types.TaskKind   `json:"kind"`
	Subject       TaskSubject      `json:"subject"`
	Status        types.TaskStatus `json:"status"`
	TotalCount    int              `json:"total_count"`
	IngestedCount int              `json:"ingested_count"`
	FailedCount   int              `json:"failed_count"`
	Result        json.RawMessage  `json:"result,omitempty"`
	ErrorMessage  string           `json:"error_message,omitempty"`

	SubmittedAt time.Time  `json:"submitted_at"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Merge overlays the remote state of a polled task onto the stored one,
// keeping locally owned fields (kind, subject, submission time).
func (x *Task) Merge(remote *Task) *Task {
	merged := *x
	merged.Status = remote.Status
	merged.TotalCount = remote.TotalCount
	merged.IngestedCount = remote.IngestedCount
	merged.FailedCount = remote.FailedCount
	merged.Result = remote.Result
	merged.ErrorMessage = remote.ErrorMessage
	if remote.CreatedAt != nil {
		merged.CreatedAt = remote.CreatedAt
	}
	if remote.StartedAt != nil {
		merged.StartedAt = remote.StartedAt
	}
	if remote.CompletedAt != nil {
		merged.CompletedAt = remote.CompletedAt
	}
	return &merged
}

// ContributionMetadata is one selected contribution sent with an ingest job
type ContributionMetadata struct {
	Type      types.ContributionType `json:"type"`
	ID        string                 `json:"id"`
	Author    string                 `json:"author"`
	Summary   string                 `json:"summary"`
	CreatedAt time.Time              `json:"created_at"`
}

func NewContributionMetadata(c *Contribution) ContributionMetadata {
	return ContributionMetadata{
		Type:      c.Type,
		ID:        c.NativeID,
		Author:    c.Author,
		Summary:   c.Summary,
		CreatedAt: c.CreatedAt,
	}
}

// IngestJob asks the remote service to ingest and summarize a user's week
type IngestJob struct {
	Username    string                 `json:"username"`
	Week        types.Week             `json:"week"`
	Repository  string                 `json:"repository"`
	AccessToken types.AccessToken      `json:"access_token"`
	Metadata    []ContributionMetadata `json:"metadata"`
}

// QuestionJob asks the remote service to answer a question. Summary is the
// assembled context and is omitted entirely when there is none.
type QuestionJob struct {
	Question    string            `json:"question"`
	Summary     *string           `json:"summary,omitempty"`
	Repository  string            `json:"repository"`
	AccessToken types.AccessToken `json:"access_token"`
}
