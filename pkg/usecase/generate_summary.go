package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/repository"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
)

// GenerateWeeklySummary asks the remote service to summarize the selected
// contributions of a user in a week. It returns (nil, nil) when nothing is
// selected. An existing summary of the (user, week) is returned as is.
func (x *UseCase) GenerateWeeklySummary(ctx context.Context, input *model.GenerateSummaryInput) (*model.Summary, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	logger := logging.From(ctx).With(
		slog.String("username", input.Username),
		slog.Any("week", input.Week),
	)

	repo, err := x.lookupRepository(ctx, input.RepositoryURL)
	if err != nil {
		return nil, err
	}

	existing, err := x.clients.Repository().GetSummary(ctx, input.Username, input.Week)
	if err == nil {
		logger.Info("Summary already exists", slog.Any("summary_id", existing.ID))
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to look up summary")
	}

	start, end, err := input.Week.Range()
	if err != nil {
		return nil, err
	}
	selected := true
	contributions, err := x.clients.Repository().ListContributions(ctx, &model.ContributionFilter{
		RepositoryID: repo.ID,
		Author:       input.Username,
		Since:        &start,
		Until:        &end,
		Selected:     &selected,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list selected contributions", goerr.V("repository_id", repo.ID))
	}
	if len(contributions) == 0 {
		logger.Info("No selected contributions, skip summary", slog.Any("repository_id", repo.ID))
		return nil, nil
	}

	cred, err := x.ResolveCredential(ctx, repo.ID)
	if err != nil {
		return nil, err
	}
	token, err := x.clients.GitHub().AccessToken(ctx, cred)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get access token", goerr.V("credential_id", cred.ID))
	}

	job := &model.IngestJob{
		Username:    input.Username,
		Week:        input.Week,
		Repository:  repo.URL,
		AccessToken: token,
		Metadata:    make([]model.ContributionMetadata, 0, len(contributions)),
	}
	for _, c := range contributions {
		job.Metadata = append(job.Metadata, model.NewContributionMetadata(c))
	}

	submitted, err := x.clients.TaskAPI().SubmitIngest(ctx, job)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to submit ingest job", goerr.V("repository_id", repo.ID))
	}
	task, err := x.registerTask(ctx, submitted, types.TaskKindIngest, model.TaskSubject{
		RepositoryID: repo.ID,
		Username:     input.Username,
		Week:         input.Week,
	})
	if err != nil {
		return nil, err
	}

	cadence := input.Cadence
	if cadence == "" {
		cadence = types.PollInteractive
	}
	task, err = x.awaitTask(ctx, task, cadence)
	return x.finishIngest(ctx, task, err)
}

// finishIngest stores the summary of a finished ingest task and closes it.
// A task whose polling was interrupted stays open for a later resume.
func (x *UseCase) finishIngest(ctx context.Context, task *model.Task, awaitErr error) (*model.Summary, error) {
	if awaitErr != nil {
		if errors.Is(awaitErr, types.ErrTaskFailed) {
			if err := x.closeTask(ctx, task); err != nil {
				return nil, err
			}
		}
		return nil, awaitErr
	}

	summary, created, err := x.storeSummary(ctx, task)
	if closeErr := x.closeTask(ctx, task); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, err
	}

	if created {
		x.exportSummary(ctx, summary, task)
	}
	return summary, nil
}

// storeSummary reports false when another run created the summary first
func (x *UseCase) storeSummary(ctx context.Context, task *model.Task) (*model.Summary, bool, error) {
	if len(task.Result) == 0 {
		return nil, false, goerr.Wrap(types.ErrInvalidResponse, "done task has no result", goerr.V("task_id", task.ID))
	}

	var result model.SummaryResult
	if err := model.DecodeStrict(task.Result, &result); err != nil {
		return nil, false, goerr.Wrap(err, "failed to decode summary result", goerr.V("task_id", task.ID))
	}

	summary := &model.Summary{
		ID:            types.NewSummaryID(),
		Username:      task.Subject.Username,
		Week:          task.Subject.Week,
		RepositoryID:  task.Subject.RepositoryID,
		TaskID:        task.ID,
		SummaryResult: result,
		CreatedAt:     logging.CtxTime(ctx).UTC(),
	}

	if err := x.clients.Repository().CreateSummary(ctx, summary); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			logging.From(ctx).Warn("Summary was created by another run, keep the existing one",
				slog.Any("task_id", task.ID),
				slog.String("username", summary.Username),
				slog.Any("week", summary.Week),
			)
			existing, err := x.clients.Repository().GetSummary(ctx, summary.Username, summary.Week)
			if err != nil {
				return nil, false, goerr.Wrap(err, "failed to load existing summary", goerr.V("task_id", task.ID))
			}
			return existing, false, nil
		}
		return nil, false, goerr.Wrap(err, "failed to save summary", goerr.V("task_id", task.ID))
	}

	logging.From(ctx).Info("Saved weekly summary",
		slog.Any("summary_id", summary.ID),
		slog.Any("task_id", task.ID),
		slog.String("username", summary.Username),
		slog.Any("week", summary.Week),
	)
	return summary, true, nil
}
