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

// registerTask stores a freshly submitted task before it is polled, so that
// an interrupted run can be resumed.
func (x *UseCase) registerTask(ctx context.Context, task *model.Task, kind types.TaskKind, subject model.TaskSubject) (*model.Task, error) {
	task.Kind = kind
	task.Subject = subject
	task.Status = types.TaskStatusSubmitted
	task.SubmittedAt = logging.CtxTime(ctx).UTC()

	if err := x.clients.Repository().PutTask(ctx, task); err != nil {
		return nil, goerr.Wrap(err, "failed to save submitted task", goerr.V("task_id", task.ID))
	}

	logging.From(ctx).Info("Submitted task",
		slog.Any("task_id", task.ID),
		slog.Any("kind", kind),
		slog.Any("repository_id", subject.RepositoryID),
		slog.String("username", subject.Username),
		slog.Any("week", subject.Week),
	)
	return task, nil
}

// awaitTask polls the stored task until the remote side finishes, saving
// progress as it is reported. The terminal state is not saved here; the
// caller stores the result first and then closes the task.
func (x *UseCase) awaitTask(ctx context.Context, task *model.Task, cadence types.PollCadence) (*model.Task, error) {
	current := task
	onUpdate := func(ctx context.Context, remote *model.Task) {
		if remote.Status.IsTerminal() {
			return
		}
		current = current.Merge(remote)
		if err := x.clients.Repository().PutTask(ctx, current); err != nil {
			logging.From(ctx).Warn("Failed to save task progress",
				slog.Any("task_id", current.ID),
				slog.Any("error", err),
			)
		}
	}

	remote, err := x.clients.TaskAPI().AwaitCompletion(ctx, task.ID, x.pollInterval(cadence), onUpdate)
	if remote != nil {
		current = current.Merge(remote)
	}
	return current, err
}

// closeTask stores the terminal state. A task already closed by another
// run is left as is.
func (x *UseCase) closeTask(ctx context.Context, task *model.Task) error {
	if err := x.clients.Repository().PutTask(ctx, task); err != nil {
		if errors.Is(err, repository.ErrImmutable) {
			logging.From(ctx).Info("Task is already closed", slog.Any("task_id", task.ID))
			return nil
		}
		return goerr.Wrap(err, "failed to save terminal task", goerr.V("task_id", task.ID))
	}
	return nil
}

// abandonTask closes a task locally that will not be polled again
func (x *UseCase) abandonTask(ctx context.Context, task *model.Task, cause error) error {
	abandoned := *task
	abandoned.Status = types.TaskStatusFailed
	abandoned.ErrorMessage = "abandoned: " + cause.Error()
	return x.closeTask(ctx, &abandoned)
}
