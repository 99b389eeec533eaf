package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/usecase"
)

func TestResumeOutstandingTasks(t *testing.T) {
	f := newFixture(t, usecase.WithPollIntervals(time.Millisecond, 5*time.Millisecond))
	ctx := testContext()
	askedAt := testNow.Add(-time.Hour)

	gt.NoError(t, f.store.PutTask(ctx, &model.Task{
		ID:     "task-ingest",
		Kind:   types.TaskKindIngest,
		Status: types.TaskStatusIngesting,
		Subject: model.TaskSubject{
			RepositoryID: f.target.ID,
			Username:     "alice",
			Week:         testWeek,
		},
		SubmittedAt: askedAt,
	}))
	gt.NoError(t, f.store.PutTask(ctx, &model.Task{
		ID:     "task-question",
		Kind:   types.TaskKindQuestion,
		Status: types.TaskStatusQueued,
		Subject: model.TaskSubject{
			RepositoryID: f.target.ID,
			Question:     "What changed?",
		},
		SubmittedAt: askedAt,
	}))
	gt.NoError(t, f.store.PutTask(ctx, &model.Task{
		ID:          "task-unknown",
		Kind:        "export",
		Status:      types.TaskStatusSubmitted,
		SubmittedAt: askedAt,
	}))
	gt.NoError(t, f.store.PutTask(ctx, doneTask("task-closed", summaryResultJSON)))

	f.taskAPI.AwaitCompletionFunc = func(ctx context.Context, id types.TaskID, interval time.Duration, onUpdate func(ctx context.Context, task *model.Task)) (*model.Task, error) {
		gt.V(t, interval).Equal(5 * time.Millisecond)
		switch id {
		case "task-ingest":
			return doneTask(id, summaryResultJSON), nil
		case "task-question":
			return doneTask(id, answerResultJSON), nil
		}
		t.Errorf("unexpected task %s", id)
		return nil, context.Canceled
	}

	report := gt.R1(f.uc.ResumeOutstandingTasks(ctx)).NoError(t)
	gt.V(t, report.Pending).Equal(3)
	gt.V(t, report.Completed).Equal(2)
	gt.V(t, report.Failed).Equal(1)
	gt.S(t, report.Errors[0]).Contains("task-unknown")
	gt.V(t, len(f.taskAPI.AwaitCompletionCalls())).Equal(2)

	summary := gt.R1(f.store.GetSummary(ctx, "alice", testWeek)).NoError(t)
	gt.V(t, summary.TaskID).Equal(types.TaskID("task-ingest"))

	answers := gt.R1(f.store.ListQuestionAnswers(ctx, f.target.ID)).NoError(t)
	gt.V(t, len(answers)).Equal(1)
	gt.V(t, answers[0].Question).Equal("What changed?")
	gt.V(t, answers[0].AskedAt).Equal(askedAt)
	gt.V(t, answers[0].Elapsed).Equal(time.Hour)

	for _, id := range []types.TaskID{"task-ingest", "task-question"} {
		task := gt.R1(f.store.GetTask(ctx, id)).NoError(t)
		gt.V(t, task.Status).Equal(types.TaskStatusDone)
	}
}

func TestResumeFailedQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	gt.NoError(t, f.store.PutTask(ctx, &model.Task{
		ID:          "task-question",
		Kind:        types.TaskKindQuestion,
		Status:      types.TaskStatusSubmitted,
		Subject:     model.TaskSubject{RepositoryID: f.target.ID, Question: "Why?"},
		SubmittedAt: testNow,
	}))
	f.taskAPI.AwaitCompletionFunc = func(ctx context.Context, id types.TaskID, interval time.Duration, onUpdate func(ctx context.Context, task *model.Task)) (*model.Task, error) {
		return &model.Task{ID: id, Status: types.TaskStatusFailed, ErrorMessage: "no index"},
			&types.TaskFailedError{TaskID: id, Message: "no index"}
	}

	report := gt.R1(f.uc.ResumeOutstandingTasks(ctx)).NoError(t)
	gt.V(t, report.Pending).Equal(1)
	gt.V(t, report.Failed).Equal(1)

	answers := gt.R1(f.store.ListQuestionAnswers(ctx, f.target.ID)).NoError(t)
	gt.V(t, len(answers)).Equal(1)
	gt.True(t, answers[0].Failed)

	pending := gt.R1(f.store.ListPendingTasks(ctx)).NoError(t)
	gt.V(t, len(pending)).Equal(0)
}

func TestResumeNothingPending(t *testing.T) {
	f := newFixture(t)
	report := gt.R1(f.uc.ResumeOutstandingTasks(testContext())).NoError(t)
	gt.V(t, report.Pending).Equal(0)
	gt.V(t, report.Completed).Equal(0)
}
