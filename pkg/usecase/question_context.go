package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/repository"
)

// AssembleQuestionContext resolves the repository and credential of a
// question and renders the grounding text: the weekly summary of the user,
// then the transcript of earlier answers of the repository.
func (x *UseCase) AssembleQuestionContext(ctx context.Context, input *model.AskQuestionInput) (*model.QuestionContext, error) {
	repo, err := x.lookupRepository(ctx, input.RepositoryURL)
	if err != nil {
		return nil, err
	}
	cred, err := x.ResolveCredential(ctx, repo.ID)
	if err != nil {
		return nil, err
	}

	var parts []string

	if input.Username != "" && input.Week != "" {
		text, err := x.summaryContext(ctx, repo.ID, input.Username, input.Week)
		if err != nil {
			return nil, err
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	answers, err := x.clients.Repository().ListQuestionAnswers(ctx, repo.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list earlier answers", goerr.V("repository_id", repo.ID))
	}
	if transcript := renderTranscript(answers); transcript != "" {
		parts = append(parts, transcript)
	}

	qctx := &model.QuestionContext{
		Repository: repo,
		Credential: cred,
	}
	if len(parts) > 0 {
		summary := strings.Join(parts, "\n\n")
		qctx.Summary = &summary
	}
	return qctx, nil
}

func (x *UseCase) summaryContext(ctx context.Context, repoID types.RepositoryID, username string, week types.Week) (string, error) {
	summary, err := x.clients.Repository().GetSummary(ctx, username, week)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to get summary for context",
			goerr.V("username", username),
			goerr.V("week", week),
		)
	}
	if summary.RepositoryID != repoID {
		return "", nil
	}
	return summary.ContextText(), nil
}

// renderTranscript turns every earlier answer into a Q/A block. Failed rows
// carry the error description as the answer and a zero confidence.
func renderTranscript(answers []*model.QuestionAnswer) string {
	var blocks []string
	for _, qa := range answers {
		blocks = append(blocks, fmt.Sprintf("Q: %s\nA: %s\nConfidence: %.2f", qa.Question, qa.Answer, qa.Confidence))
	}
	return strings.Join(blocks, "\n\n")
}
