package infra_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghdigest/pkg/domain/mock"
	"github.com/secmon-lab/ghdigest/pkg/infra"
	"github.com/secmon-lab/ghdigest/pkg/repository/memory"
)

func TestNew(t *testing.T) {
	t.Run("create new clients without options", func(t *testing.T) {
		clients := infra.New()
		// in-memory repository is the default
		gt.True(t, clients.Repository() != nil)
		gt.True(t, clients.GitHub() == nil)
		gt.True(t, clients.TaskAPI() == nil)
		gt.True(t, clients.BigQuery() == nil)
		gt.True(t, clients.Storage() == nil)
	})

	t.Run("WithGitHub option sets GitHub client", func(t *testing.T) {
		mockGH := &mock.GitHubMock{}
		clients := infra.New(infra.WithGitHub(mockGH))
		gt.V(t, clients.GitHub()).Equal(mockGH)
	})

	t.Run("WithRepository option replaces default repository", func(t *testing.T) {
		repo := memory.New()
		clients := infra.New(infra.WithRepository(repo))
		gt.V(t, clients.Repository()).Equal(repo)
	})

	t.Run("multiple options can be combined", func(t *testing.T) {
		mockTask := &mock.TaskAPIMock{}
		mockBQ := &mock.BigQueryMock{}
		mockStorage := &mock.StorageMock{}

		clients := infra.New(
			infra.WithTaskAPI(mockTask),
			infra.WithBigQuery(mockBQ),
			infra.WithStorage(mockStorage),
		)

		gt.V(t, clients.TaskAPI()).Equal(mockTask)
		gt.V(t, clients.BigQuery()).Equal(mockBQ)
		gt.V(t, clients.Storage()).Equal(mockStorage)
	})
}
