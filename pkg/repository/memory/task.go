package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/repository"
)

// Task operations

func (r *digestRepository) PutTask(ctx context.Context, task *model.Task) error {
	if task.ID == "" || !task.Status.Valid() {
		return goerr.Wrap(repository.ErrInvalidInput, "invalid task",
			goerr.V("task_id", task.ID),
			goerr.V("status", task.Status),
		)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.tasks[task.ID]; ok && existing.Status.IsTerminal() {
		return goerr.Wrap(repository.ErrImmutable, "task is already terminal",
			goerr.V("task_id", task.ID),
			goerr.V("status", existing.Status),
		)
	}
	r.tasks[task.ID] = copyTask(task)
	return nil
}

func (r *digestRepository) GetTask(ctx context.Context, id types.TaskID) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, goerr.Wrap(repository.ErrNotFound, "task not found", goerr.V("task_id", id))
	}
	return copyTask(task), nil
}

func (r *digestRepository) ListPendingTasks(ctx context.Context) ([]*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []*model.Task
	for _, task := range r.tasks {
		if !task.Status.IsTerminal() {
			pending = append(pending, copyTask(task))
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].SubmittedAt.Before(pending[j].SubmittedAt)
	})
	return pending, nil
}

// Summary operations

func (r *digestRepository) CreateSummary(ctx context.Context, summary *model.Summary) error {
	if summary.Username == "" || summary.Week == "" {
		return goerr.Wrap(repository.ErrInvalidInput, "summary requires username and week")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := summaryKey{username: summary.Username, week: summary.Week}
	if _, ok := r.summaries[key]; ok {
		return goerr.Wrap(repository.ErrAlreadyExists, "summary already exists",
			goerr.V("username", summary.Username),
			goerr.V("week", summary.Week),
		)
	}
	r.summaries[key] = copySummary(summary)
	return nil
}

func (r *digestRepository) GetSummary(ctx context.Context, username string, week types.Week) (*model.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.summaries[summaryKey{username: username, week: week}]
	if !ok {
		return nil, goerr.Wrap(repository.ErrNotFound, "summary not found",
			goerr.V("username", username),
			goerr.V("week", week),
		)
	}
	return copySummary(s), nil
}

// QuestionAnswer operations

func (r *digestRepository) CreateQuestionAnswer(ctx context.Context, qa *model.QuestionAnswer) error {
	if qa.ID == "" || qa.RepositoryID == "" {
		return goerr.Wrap(repository.ErrInvalidInput, "question answer requires ID and repository")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.answers {
		if existing.ID == qa.ID {
			return goerr.Wrap(repository.ErrAlreadyExists, "question answer already exists", goerr.V("id", qa.ID))
		}
	}
	r.answers = append(r.answers, copyQuestionAnswer(qa))
	return nil
}

func (r *digestRepository) ListQuestionAnswers(ctx context.Context, repoID types.RepositoryID) ([]*model.QuestionAnswer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var answers []*model.QuestionAnswer
	for _, qa := range r.answers {
		if qa.RepositoryID == repoID {
			answers = append(answers, copyQuestionAnswer(qa))
		}
	}
	sort.SliceStable(answers, func(i, j int) bool {
		return answers[i].AskedAt.Before(answers[j].AskedAt)
	})
	return answers, nil
}
