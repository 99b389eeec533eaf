package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// ResumeOutstandingTasks polls every stored task that is not terminal yet,
// with the bulk cadence, and stores its summary or answer.
func (x *UseCase) ResumeOutstandingTasks(ctx context.Context) (*model.ResumeReport, error) {
	tasks, err := x.clients.Repository().ListPendingTasks(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list pending tasks")
	}

	report := &model.ResumeReport{Pending: len(tasks)}
	logging.From(ctx).Info("Resuming outstanding tasks", slog.Int("pending", len(tasks)))

	var (
		mu sync.Mutex
		eg errgroup.Group
	)
	eg.SetLimit(x.backfillConcurrency)

	for _, task := range tasks {
		eg.Go(func() error {
			err := x.resumeTask(ctx, task)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				report.Errors = append(report.Errors, task.ID.String()+": "+err.Error())
				logging.From(ctx).Warn("Failed to resume task", slog.Any("task_id", task.ID), slog.Any("error", err))
				return nil
			}
			report.Completed++
			return nil
		})
	}
	_ = eg.Wait()

	logging.From(ctx).Info("Resumed outstanding tasks",
		slog.Int("pending", report.Pending),
		slog.Int("completed", report.Completed),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}

func (x *UseCase) resumeTask(ctx context.Context, task *model.Task) error {
	if task.Kind != types.TaskKindIngest && task.Kind != types.TaskKindQuestion {
		return goerr.Wrap(types.ErrInvalidOption, "unknown task kind", goerr.V("task_id", task.ID), goerr.V("kind", task.Kind))
	}

	polled, awaitErr := x.awaitTask(ctx, task, types.PollBulk)

	if task.Kind == types.TaskKindIngest {
		_, err := x.finishIngest(ctx, polled, awaitErr)
		return err
	}

	qa := &model.QuestionAnswer{
		ID:           types.NewQuestionAnswerID(),
		RepositoryID: task.Subject.RepositoryID,
		Username:     task.Subject.Username,
		Week:         task.Subject.Week,
		Question:     task.Subject.Question,
		AskedAt:      task.SubmittedAt,
	}
	answered, err := x.finishQuestion(ctx, qa, polled, awaitErr)
	if err != nil {
		return err
	}
	if answered.Failed {
		return goerr.New("question task ended without an answer",
			goerr.V("task_id", task.ID),
			goerr.V("answer", answered.Answer),
		)
	}
	return nil
}

