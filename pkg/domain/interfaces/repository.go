package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
)

// DigestRepository persists repositories, credentials, contributions, tasks,
// summaries and question answers. It is the only state shared across jobs.
type DigestRepository interface {
	// Repository operations
	CreateOrUpdateRepository(ctx context.Context, repo *model.Repository) error
	GetRepository(ctx context.Context, id types.RepositoryID) (*model.Repository, error)
	ListRepositories(ctx context.Context) ([]*model.Repository, error)
	// UpdateLastFetchedAt moves the watermark forward. An older value is ignored.
	UpdateLastFetchedAt(ctx context.Context, id types.RepositoryID, fetchedAt time.Time) error

	// Credential operations
	CreateCredential(ctx context.Context, cred *model.Credential) error
	LinkCredential(ctx context.Context, repoID types.RepositoryID, credID types.CredentialID, linkedAt time.Time) error
	// ListLinkedCredentials returns credentials ordered by link time, then credential ID
	ListLinkedCredentials(ctx context.Context, repoID types.RepositoryID) ([]*model.LinkedCredential, error)

	// Contribution operations
	// UpsertContributions inserts new contributions and refreshes existing ones
	// without touching IsSelected. It returns the number of rows written.
	UpsertContributions(ctx context.Context, contributions []*model.Contribution) (int, error)
	GetContribution(ctx context.Context, key model.ContributionKey) (*model.Contribution, error)
	// ListContributions returns matches ordered by CreatedAt, then key
	ListContributions(ctx context.Context, filter *model.ContributionFilter) ([]*model.Contribution, error)
	// UpdateSelections applies is_selected updates, returning how many rows matched
	UpdateSelections(ctx context.Context, updates []*model.SelectionUpdate) (int, error)

	// Task operations
	// PutTask creates or updates a task. Updating a terminal task fails with ErrImmutable.
	PutTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id types.TaskID) (*model.Task, error)
	ListPendingTasks(ctx context.Context) ([]*model.Task, error)

	// Summary operations
	// CreateSummary fails with ErrAlreadyExists when (Username, Week) exists
	CreateSummary(ctx context.Context, summary *model.Summary) error
	GetSummary(ctx context.Context, username string, week types.Week) (*model.Summary, error)

	// QuestionAnswer operations
	CreateQuestionAnswer(ctx context.Context, qa *model.QuestionAnswer) error
	// ListQuestionAnswers returns answers of the repository ordered by AskedAt
	ListQuestionAnswers(ctx context.Context, repoID types.RepositoryID) ([]*model.QuestionAnswer, error)
}
