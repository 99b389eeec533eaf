package interfaces

//go:generate moq -out ../mock/infra.go -pkg mock . GitHub TaskAPI BigQuery Storage

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
)

// GitHub reads one page of contributions of a given type. Implementations
// must return *types.RateLimitError when the credential's quota is exhausted.
type GitHub interface {
	ListContributions(ctx context.Context, cred *model.Credential, input *ListContributionsInput) (*ContributionPage, error)
	// AccessToken returns a token handed to the remote task service
	AccessToken(ctx context.Context, cred *model.Credential) (types.AccessToken, error)
}

type ListContributionsInput struct {
	Type    types.ContributionType
	Owner   string
	Repo    string
	Since   *time.Time
	Page    int
	PerPage int
}

// ContributionPage is one page of a list endpoint. NextPage is 0 on the last page.
type ContributionPage struct {
	Items    []*model.Contribution
	NextPage int
}

// TaskAPI is the client of the remote AI task service
type TaskAPI interface {
	SubmitIngest(ctx context.Context, job *model.IngestJob) (*model.Task, error)
	SubmitQuestion(ctx context.Context, job *model.QuestionJob) (*model.Task, error)
	GetTask(ctx context.Context, id types.TaskID) (*model.Task, error)

	// AwaitCompletion polls until the task is terminal. onUpdate is called
	// whenever the reported status changes. A failed task is returned
	// together with *types.TaskFailedError.
	AwaitCompletion(ctx context.Context, id types.TaskID, interval time.Duration, onUpdate func(ctx context.Context, task *model.Task)) (*model.Task, error)
}

type BigQuery interface {
	Insert(ctx context.Context, schema bigquery.Schema, data ...any) error

	GetMetadata(ctx context.Context) (*bigquery.TableMetadata, error)
	UpdateTable(ctx context.Context, md bigquery.TableMetadataToUpdate, eTag string) error
	CreateTable(ctx context.Context, md *bigquery.TableMetadata) error
}

// Storage archives raw task results
type Storage interface {
	PutObject(ctx context.Context, path string, data []byte, contentType string) error
}
