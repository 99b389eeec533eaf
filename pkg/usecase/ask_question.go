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

// AskQuestion answers a question about a repository. Every valid question is
// stored: a failure becomes an answer explaining it with Failed set.
func (x *UseCase) AskQuestion(ctx context.Context, input *model.AskQuestionInput) (*model.QuestionAnswer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	target, err := model.ParseRepositoryURL(input.RepositoryURL)
	if err != nil {
		return nil, err
	}

	qa := &model.QuestionAnswer{
		ID:           types.NewQuestionAnswerID(),
		RepositoryID: target.ID,
		Username:     input.Username,
		Week:         input.Week,
		Question:     input.Question,
		AskedAt:      logging.CtxTime(ctx).UTC(),
	}

	task, err := x.submitQuestion(ctx, input)
	if err != nil {
		return x.saveFailedAnswer(ctx, qa, err)
	}

	task, err = x.awaitTask(ctx, task, types.PollInteractive)
	return x.finishQuestion(ctx, qa, task, err)
}

func (x *UseCase) submitQuestion(ctx context.Context, input *model.AskQuestionInput) (*model.Task, error) {
	qctx, err := x.AssembleQuestionContext(ctx, input)
	if err != nil {
		return nil, err
	}
	token, err := x.clients.GitHub().AccessToken(ctx, qctx.Credential)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get access token", goerr.V("credential_id", qctx.Credential.ID))
	}

	submitted, err := x.clients.TaskAPI().SubmitQuestion(ctx, &model.QuestionJob{
		Question:    input.Question,
		Summary:     qctx.Summary,
		Repository:  qctx.Repository.URL,
		AccessToken: token,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to submit question", goerr.V("repository_id", qctx.Repository.ID))
	}

	return x.registerTask(ctx, submitted, types.TaskKindQuestion, model.TaskSubject{
		RepositoryID: qctx.Repository.ID,
		Username:     input.Username,
		Week:         input.Week,
		Question:     input.Question,
	})
}

// finishQuestion stores the answer of a polled question task and closes the
// task. A question whose polling gave up is answered as failed and its task
// is closed locally so that it is not resumed into a second answer.
func (x *UseCase) finishQuestion(ctx context.Context, qa *model.QuestionAnswer, task *model.Task, awaitErr error) (*model.QuestionAnswer, error) {
	qa.TaskID = task.ID

	if awaitErr != nil {
		var closeErr error
		if errors.Is(awaitErr, types.ErrTaskFailed) {
			closeErr = x.closeTask(ctx, task)
		} else {
			closeErr = x.abandonTask(ctx, task, awaitErr)
		}
		if closeErr != nil {
			logging.From(ctx).Warn("Failed to close question task", slog.Any("task_id", task.ID), slog.Any("error", closeErr))
		}
		return x.saveFailedAnswer(ctx, qa, awaitErr)
	}

	var result model.AnswerResult
	if err := decodeAnswer(task, &result); err != nil {
		if closeErr := x.closeTask(ctx, task); closeErr != nil {
			logging.From(ctx).Warn("Failed to close question task", slog.Any("task_id", task.ID), slog.Any("error", closeErr))
		}
		return x.saveFailedAnswer(ctx, qa, err)
	}

	qa.Answer = result.Answer
	qa.Confidence = result.Confidence
	qa.Response = &result
	qa.AnsweredAt = logging.CtxTime(ctx).UTC()
	qa.Elapsed = qa.AnsweredAt.Sub(qa.AskedAt)

	if err := x.saveAnswer(ctx, qa); err != nil {
		return nil, err
	}
	if err := x.closeTask(ctx, task); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("Answered question",
		slog.Any("question_answer_id", qa.ID),
		slog.Any("task_id", task.ID),
		slog.Float64("confidence", qa.Confidence),
		slog.Duration("elapsed", qa.Elapsed),
	)
	return qa, nil
}

func decodeAnswer(task *model.Task, result *model.AnswerResult) error {
	if len(task.Result) == 0 {
		return goerr.Wrap(types.ErrInvalidResponse, "done task has no result", goerr.V("task_id", task.ID))
	}
	if err := model.DecodeStrict(task.Result, result); err != nil {
		return goerr.Wrap(err, "failed to decode answer result", goerr.V("task_id", task.ID))
	}
	return nil
}

func (x *UseCase) saveFailedAnswer(ctx context.Context, qa *model.QuestionAnswer, cause error) (*model.QuestionAnswer, error) {
	// the question is recorded even when the caller gave up
	ctx = context.WithoutCancel(ctx)

	qa.Failed = true
	qa.Answer = describeFailure(cause)
	qa.Confidence = 0
	qa.Response = nil
	qa.AnsweredAt = logging.CtxTime(ctx).UTC()
	qa.Elapsed = qa.AnsweredAt.Sub(qa.AskedAt)

	logging.From(ctx).Warn("Question could not be answered",
		slog.Any("question_answer_id", qa.ID),
		slog.Any("repository_id", qa.RepositoryID),
		slog.Any("error", cause),
	)

	if err := x.saveAnswer(ctx, qa); err != nil {
		return nil, err
	}
	return qa, nil
}

func (x *UseCase) saveAnswer(ctx context.Context, qa *model.QuestionAnswer) error {
	if err := x.clients.Repository().CreateQuestionAnswer(ctx, qa); err != nil {
		return goerr.Wrap(err, "failed to save question answer",
			goerr.V("question_answer_id", qa.ID),
			goerr.V("repository_id", qa.RepositoryID),
		)
	}
	return nil
}

// describeFailure renders an error as an answer readable by the asker
func describeFailure(err error) string {
	var taskErr *types.TaskFailedError
	switch {
	case errors.As(err, &taskErr):
		if taskErr.Message != "" {
			return "The answering service could not answer the question: " + taskErr.Message
		}
		return "The answering service could not answer the question."
	case errors.Is(err, repository.ErrNotFound):
		return "The repository is not registered."
	case errors.Is(err, types.ErrNoCredentialAvailable):
		return "No GitHub credential is linked to the repository."
	case errors.Is(err, types.ErrRetriesExhausted):
		return "The answering service is temporarily unavailable. Please ask again later."
	case errors.Is(err, types.ErrFatalSubmission):
		return "The answering service rejected the question."
	case errors.Is(err, types.ErrInvalidResponse):
		return "The answering service returned an answer that could not be read."
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "Answering the question took too long and was stopped."
	}
	return "The question could not be answered because of an internal error."
}
