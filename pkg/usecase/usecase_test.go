package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/domain/mock"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/infra"
	"github.com/secmon-lab/ghdigest/pkg/repository/memory"
	"github.com/secmon-lab/ghdigest/pkg/usecase"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
)

// testNow is Friday of 2024-W07
var testNow = time.Date(2024, 2, 16, 12, 0, 0, 0, time.UTC)

const testWeek = types.Week("2024-W07")

func testContext() context.Context {
	return logging.CtxWithTime(context.Background(), func() time.Time { return testNow })
}

const summaryResultJSON = `{
	"overview": "Shipped the incremental fetcher",
	"categories": {"commit": "fetcher work", "issue": "bug triage"},
	"achievements": ["incremental fetch"],
	"counts": {"commit": 3, "issue": 1}
}`

const answerResultJSON = `{
	"answer": "The fetcher became incremental",
	"confidence": 0.82,
	"evidence": [{"source": "commit:c1", "excerpt": "add watermark"}],
	"reasoning_steps": ["read commits"],
	"suggested_actions": []
}`

type fixture struct {
	store   interfaces.DigestRepository
	github  *mock.GitHubMock
	taskAPI *mock.TaskAPIMock
	uc      *usecase.UseCase
	target  *model.Repository
}

func newFixture(t *testing.T, options ...usecase.Option) *fixture {
	t.Helper()

	f := &fixture{
		store: memory.New(),
		github: &mock.GitHubMock{
			AccessTokenFunc: func(ctx context.Context, cred *model.Credential) (types.AccessToken, error) {
				return cred.Token, nil
			},
		},
		taskAPI: &mock.TaskAPIMock{},
	}
	f.uc = usecase.New(infra.New(
		infra.WithRepository(f.store),
		infra.WithGitHub(f.github),
		infra.WithTaskAPI(f.taskAPI),
	), options...)
	f.target = f.register(t, "https://github.com/octo/hello")
	return f
}

func (f *fixture) register(t *testing.T, url string) *model.Repository {
	t.Helper()
	return gt.R1(f.uc.RegisterRepository(testContext(), &model.RegisterRepositoryInput{
		RepositoryURL: url,
		Kind:          types.CredentialKindPAT,
		Token:         "ghp_test",
	})).NoError(t)
}

func (f *fixture) addContributions(t *testing.T, contributions ...*model.Contribution) {
	t.Helper()
	gt.R1(f.store.UpsertContributions(testContext(), contributions)).NoError(t)
}

func newContribution(repoID types.RepositoryID, typ types.ContributionType, id, author string, createdAt time.Time) *model.Contribution {
	return &model.Contribution{
		ContributionKey: model.ContributionKey{Type: typ, NativeID: id},
		RepositoryID:    repoID,
		Author:          author,
		Summary:         string(typ) + " " + id,
		IsSelected:      true,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

// doneTask builds the terminal state reported by the task API
func doneTask(id types.TaskID, result string) *model.Task {
	return &model.Task{
		ID:     id,
		Status: types.TaskStatusDone,
		Result: json.RawMessage(result),
	}
}

func TestNew(t *testing.T) {
	t.Run("create new usecase with default clients", func(t *testing.T) {
		uc := usecase.New(infra.New())
		gt.True(t, uc != nil)
	})

	t.Run("unknown credential strategy is rejected", func(t *testing.T) {
		_, err := usecase.NewCredentialStrategy("random")
		gt.Error(t, err)
	})
}

// withExports rebuilds the use case with the optional export sinks
func (f *fixture) withExports(bq interfaces.BigQuery, storage interfaces.Storage, options ...usecase.Option) {
	f.uc = usecase.New(infra.New(
		infra.WithRepository(f.store),
		infra.WithGitHub(f.github),
		infra.WithTaskAPI(f.taskAPI),
		infra.WithBigQuery(bq),
		infra.WithStorage(storage),
	), options...)
}

// addAliceWeek stores the contributions of alice used by summary tests: four
// selected ones in testWeek plus noise that must not be summarized
func (f *fixture) addAliceWeek(t *testing.T) {
	t.Helper()
	in := func(d int) time.Time { return time.Date(2024, 2, d, 9, 0, 0, 0, time.UTC) }

	unselected := newContribution(f.target.ID, types.ContributionCommit, "c-skip", "alice", in(14))
	unselected.IsSelected = false

	f.addContributions(t,
		newContribution(f.target.ID, types.ContributionCommit, "c1", "alice", in(12)),
		newContribution(f.target.ID, types.ContributionCommit, "c2", "alice", in(13)),
		newContribution(f.target.ID, types.ContributionCommit, "c3", "alice", in(15)),
		newContribution(f.target.ID, types.ContributionIssue, "11", "alice", in(14)),
		unselected,
		newContribution(f.target.ID, types.ContributionCommit, "c-bob", "bob", in(13)),
		newContribution(f.target.ID, types.ContributionCommit, "c-old", "alice", in(5)),
		newContribution(f.target.ID, types.ContributionCommit, "c-next", "alice", in(19)),
	)
}
