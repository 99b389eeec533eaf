package interfaces

//go:generate moq -out ../mock/usecase.go -pkg mock . UseCase

import (
	"context"

	"github.com/secmon-lab/ghdigest/pkg/domain/model"
)

type UseCase interface {
	FetchAllRepositories(ctx context.Context) (*model.FetchReport, error)
	FetchRepositoryByURL(ctx context.Context, url string) (*model.FetchReport, error)

	ListContributions(ctx context.Context, filter *model.ContributionFilter) ([]*model.Contribution, error)
	UpdateSelections(ctx context.Context, updates []*model.SelectionUpdate) (int, error)

	GenerateWeeklySummary(ctx context.Context, input *model.GenerateSummaryInput) (*model.Summary, error)
	Backfill(ctx context.Context, input *model.BackfillInput) (*model.BackfillReport, error)
	AskQuestion(ctx context.Context, input *model.AskQuestionInput) (*model.QuestionAnswer, error)
}
