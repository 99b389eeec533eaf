package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/repository"
	"github.com/secmon-lab/ghdigest/pkg/usecase"
)

func questionInput(q string) *model.AskQuestionInput {
	return &model.AskQuestionInput{
		RepositoryURL: "https://github.com/octo/hello",
		Question:      q,
	}
}

func submitQuestionAs(id types.TaskID, jobs *[]*model.QuestionJob) func(ctx context.Context, job *model.QuestionJob) (*model.Task, error) {
	return func(ctx context.Context, job *model.QuestionJob) (*model.Task, error) {
		if jobs != nil {
			*jobs = append(*jobs, job)
		}
		return &model.Task{ID: id, Status: types.TaskStatusQueued}, nil
	}
}

func TestAskQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	var jobs []*model.QuestionJob
	f.taskAPI.SubmitQuestionFunc = submitQuestionAs("task-q1", &jobs)
	f.taskAPI.AwaitCompletionFunc = func(ctx context.Context, id types.TaskID, interval time.Duration, onUpdate func(ctx context.Context, task *model.Task)) (*model.Task, error) {
		gt.V(t, interval).Equal(usecase.DefaultInteractiveInterval)
		stored := gt.R1(f.store.GetTask(ctx, id)).NoError(t)
		gt.V(t, stored.Kind).Equal(types.TaskKindQuestion)
		gt.V(t, stored.Subject.Question).Equal("What changed in the fetcher?")
		return doneTask(id, answerResultJSON), nil
	}

	qa := gt.R1(f.uc.AskQuestion(ctx, questionInput("What changed in the fetcher?"))).NoError(t)
	gt.False(t, qa.Failed)
	gt.V(t, qa.RepositoryID).Equal(f.target.ID)
	gt.V(t, qa.Answer).Equal("The fetcher became incremental")
	gt.V(t, qa.Confidence).Equal(0.82)
	gt.V(t, qa.TaskID).Equal(types.TaskID("task-q1"))
	gt.V(t, len(qa.Response.Evidence)).Equal(1)
	gt.V(t, qa.AskedAt).Equal(testNow)

	gt.V(t, len(jobs)).Equal(1)
	gt.True(t, jobs[0].Summary == nil)
	gt.V(t, jobs[0].Repository).Equal("https://github.com/octo/hello")
	gt.V(t, jobs[0].AccessToken).Equal(types.AccessToken("ghp_test"))

	task := gt.R1(f.store.GetTask(ctx, "task-q1")).NoError(t)
	gt.V(t, task.Status).Equal(types.TaskStatusDone)

	t.Run("earlier answers become context", func(t *testing.T) {
		f.taskAPI.SubmitQuestionFunc = submitQuestionAs("task-q2", &jobs)
		f.taskAPI.AwaitCompletionFunc = completeWith(answerResultJSON)
		gt.R1(f.uc.AskQuestion(ctx, questionInput("Why?"))).NoError(t)

		gt.V(t, len(jobs)).Equal(2)
		gt.True(t, jobs[1].Summary != nil)
		gt.V(t, *jobs[1].Summary).Equal("Q: What changed in the fetcher?\nA: The fetcher became incremental\nConfidence: 0.82")

		history := gt.R1(f.store.ListQuestionAnswers(ctx, f.target.ID)).NoError(t)
		gt.V(t, len(history)).Equal(2)
	})
}

func TestAskQuestionSummaryContext(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()
	other := f.register(t, "https://github.com/octo/other")

	gt.NoError(t, f.store.CreateSummary(ctx, &model.Summary{
		ID:           "summary-1",
		Username:     "alice",
		Week:         testWeek,
		RepositoryID: f.target.ID,
		SummaryResult: model.SummaryResult{
			Overview:     "Shipped the fetcher",
			Categories:   map[string]string{"commit": "fetcher", "issue": "triage"},
			Achievements: []string{"incremental fetch"},
		},
	}))

	var jobs []*model.QuestionJob
	f.taskAPI.SubmitQuestionFunc = submitQuestionAs("task-q", &jobs)
	f.taskAPI.AwaitCompletionFunc = completeWith(answerResultJSON)

	input := questionInput("What did alice do?")
	input.Username = "alice"
	input.Week = testWeek
	gt.R1(f.uc.AskQuestion(ctx, input)).NoError(t)

	gt.True(t, jobs[0].Summary != nil)
	gt.V(t, *jobs[0].Summary).Equal(strings.Join([]string{
		"Weekly summary of alice for 2024-W07:",
		"Shipped the fetcher",
		"commit: fetcher",
		"issue: triage",
		"Achievements:",
		"- incremental fetch",
	}, "\n"))

	t.Run("summary of another repository is ignored", func(t *testing.T) {
		jobs = nil
		input := questionInput("What did alice do?")
		input.RepositoryURL = other.URL
		input.Username = "alice"
		input.Week = testWeek
		gt.R1(f.uc.AskQuestion(ctx, input)).NoError(t)
		gt.True(t, jobs[0].Summary == nil)
	})
}

func TestAskQuestionFailures(t *testing.T) {
	t.Run("task failed", func(t *testing.T) {
		f := newFixture(t)
		ctx := testContext()
		f.taskAPI.SubmitQuestionFunc = submitQuestionAs("task-failed", nil)
		f.taskAPI.AwaitCompletionFunc = func(ctx context.Context, id types.TaskID, interval time.Duration, onUpdate func(ctx context.Context, task *model.Task)) (*model.Task, error) {
			return &model.Task{ID: id, Status: types.TaskStatusFailed, ErrorMessage: "no index"},
				&types.TaskFailedError{TaskID: id, Message: "no index"}
		}

		qa := gt.R1(f.uc.AskQuestion(ctx, questionInput("Anything?"))).NoError(t)
		gt.True(t, qa.Failed)
		gt.V(t, qa.Answer).Equal("The answering service could not answer the question: no index")
		gt.V(t, qa.Confidence).Equal(0.0)
		gt.True(t, qa.Response == nil)

		task := gt.R1(f.store.GetTask(ctx, "task-failed")).NoError(t)
		gt.V(t, task.Status).Equal(types.TaskStatusFailed)
		gt.V(t, task.ErrorMessage).Equal("no index")
	})

	t.Run("submission retries exhausted", func(t *testing.T) {
		f := newFixture(t)
		ctx := testContext()
		f.taskAPI.SubmitQuestionFunc = func(ctx context.Context, job *model.QuestionJob) (*model.Task, error) {
			return nil, goerr.Wrap(types.ErrRetriesExhausted, "task API unavailable")
		}

		qa := gt.R1(f.uc.AskQuestion(ctx, questionInput("Anything?"))).NoError(t)
		gt.True(t, qa.Failed)
		gt.V(t, qa.Answer).Equal("The answering service is temporarily unavailable. Please ask again later.")
		gt.V(t, qa.TaskID).Equal(types.TaskID(""))

		history := gt.R1(f.store.ListQuestionAnswers(ctx, f.target.ID)).NoError(t)
		gt.V(t, len(history)).Equal(1)
		gt.V(t, len(f.taskAPI.AwaitCompletionCalls())).Equal(0)
	})

	t.Run("unregistered repository", func(t *testing.T) {
		f := newFixture(t)
		ctx := testContext()
		input := questionInput("Anything?")
		input.RepositoryURL = "https://github.com/Octo/Unknown"

		qa := gt.R1(f.uc.AskQuestion(ctx, input)).NoError(t)
		gt.True(t, qa.Failed)
		gt.V(t, qa.RepositoryID).Equal(types.RepositoryID("octo/unknown"))
		gt.V(t, qa.Answer).Equal("The repository is not registered.")
		gt.V(t, len(f.taskAPI.SubmitQuestionCalls())).Equal(0)

		history := gt.R1(f.store.ListQuestionAnswers(ctx, "octo/unknown")).NoError(t)
		gt.V(t, len(history)).Equal(1)
	})

	t.Run("polling gives up", func(t *testing.T) {
		f := newFixture(t)
		ctx := testContext()
		f.taskAPI.SubmitQuestionFunc = submitQuestionAs("task-slow", nil)
		f.taskAPI.AwaitCompletionFunc = func(ctx context.Context, id types.TaskID, interval time.Duration, onUpdate func(ctx context.Context, task *model.Task)) (*model.Task, error) {
			return nil, goerr.Wrap(context.DeadlineExceeded, "polling stopped")
		}

		qa := gt.R1(f.uc.AskQuestion(ctx, questionInput("Anything?"))).NoError(t)
		gt.True(t, qa.Failed)
		gt.V(t, qa.Answer).Equal("Answering the question took too long and was stopped.")
		gt.V(t, qa.TaskID).Equal(types.TaskID("task-slow"))

		// the task is closed locally and never resumed into a second answer
		task := gt.R1(f.store.GetTask(ctx, "task-slow")).NoError(t)
		gt.V(t, task.Status).Equal(types.TaskStatusFailed)
		gt.True(t, strings.HasPrefix(task.ErrorMessage, "abandoned: "))
		pending := gt.R1(f.store.ListPendingTasks(ctx)).NoError(t)
		gt.V(t, len(pending)).Equal(0)
	})

	t.Run("unreadable answer", func(t *testing.T) {
		f := newFixture(t)
		ctx := testContext()
		f.taskAPI.SubmitQuestionFunc = submitQuestionAs("task-bad", nil)
		f.taskAPI.AwaitCompletionFunc = completeWith(`{"answer": "yes", "confidence": 1.5}`)

		qa := gt.R1(f.uc.AskQuestion(ctx, questionInput("Anything?"))).NoError(t)
		gt.True(t, qa.Failed)
		gt.V(t, qa.Answer).Equal("The answering service returned an answer that could not be read.")

		task := gt.R1(f.store.GetTask(ctx, "task-bad")).NoError(t)
		gt.V(t, task.Status).Equal(types.TaskStatusDone)
	})

	t.Run("caller gave up", func(t *testing.T) {
		f := newFixture(t)
		ctx, cancel := context.WithCancel(testContext())
		defer cancel()
		f.taskAPI.SubmitQuestionFunc = submitQuestionAs("task-cancel", nil)
		f.taskAPI.AwaitCompletionFunc = func(ctx context.Context, id types.TaskID, interval time.Duration, onUpdate func(ctx context.Context, task *model.Task)) (*model.Task, error) {
			cancel()
			return nil, ctx.Err()
		}

		qa := gt.R1(f.uc.AskQuestion(ctx, questionInput("Anything?"))).NoError(t)
		gt.True(t, qa.Failed)
		history := gt.R1(f.store.ListQuestionAnswers(context.Background(), f.target.ID)).NoError(t)
		gt.V(t, len(history)).Equal(1)
	})
}

func TestAskQuestionInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	_, err := f.uc.AskQuestion(ctx, questionInput(""))
	gt.True(t, errors.Is(err, types.ErrValidationFailed))

	input := questionInput("Anything?")
	input.RepositoryURL = "https://github.com/octo"
	_, err = f.uc.AskQuestion(ctx, input)
	gt.True(t, errors.Is(err, types.ErrInvalidRepositoryURL))

	history := gt.R1(f.store.ListQuestionAnswers(ctx, f.target.ID)).NoError(t)
	gt.V(t, len(history)).Equal(0)
}

func TestRenderTranscript(t *testing.T) {
	text := usecase.RenderTranscriptForTest([]*model.QuestionAnswer{
		{Question: "first?", Answer: "one", Confidence: 0.5},
		{Question: "broken?", Answer: "The repository is not registered.", Failed: true},
		{Question: "second?", Answer: "two", Confidence: 1},
	})
	gt.V(t, text).Equal("Q: first?\nA: one\nConfidence: 0.50\n\n" +
		"Q: broken?\nA: The repository is not registered.\nConfidence: 0.00\n\n" +
		"Q: second?\nA: two\nConfidence: 1.00")

	gt.V(t, usecase.RenderTranscriptForTest(nil)).Equal("")
}

func TestDescribeFailure(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "task failed without message",
			err:  &types.TaskFailedError{TaskID: "t1"},
			want: "The answering service could not answer the question.",
		},
		{
			name: "missing credential",
			err:  goerr.Wrap(types.ErrNoCredentialAvailable, "no link"),
			want: "No GitHub credential is linked to the repository.",
		},
		{
			name: "rejected",
			err:  goerr.Wrap(types.ErrFatalSubmission, "400"),
			want: "The answering service rejected the question.",
		},
		{
			name: "not found",
			err:  goerr.Wrap(repository.ErrNotFound, "gone"),
			want: "The repository is not registered.",
		},
		{
			name: "unknown",
			err:  errors.New("disk full"),
			want: "The question could not be answered because of an internal error.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.V(t, usecase.DescribeFailureForTest(tc.err)).Equal(tc.want)
		})
	}
}
