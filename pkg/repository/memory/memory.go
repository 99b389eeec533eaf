package memory

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
)

type credentialLink struct {
	credID   types.CredentialID
	linkedAt time.Time
}

type summaryKey struct {
	username string
	week     types.Week
}

type digestRepository struct {
	mu sync.RWMutex

	repos         map[types.RepositoryID]*model.Repository
	credentials   map[types.CredentialID]*model.Credential
	links         map[types.RepositoryID][]credentialLink
	contributions map[model.ContributionKey]*model.Contribution
	tasks         map[types.TaskID]*model.Task
	summaries     map[summaryKey]*model.Summary
	answers       []*model.QuestionAnswer
}

var _ interfaces.DigestRepository = (*digestRepository)(nil)

// New creates a new in-memory repository
func New() interfaces.DigestRepository {
	return &digestRepository{
		repos:         make(map[types.RepositoryID]*model.Repository),
		credentials:   make(map[types.CredentialID]*model.Credential),
		links:         make(map[types.RepositoryID][]credentialLink),
		contributions: make(map[model.ContributionKey]*model.Contribution),
		tasks:         make(map[types.TaskID]*model.Task),
		summaries:     make(map[summaryKey]*model.Summary),
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage{}, raw...)
}

func copyRepository(repo *model.Repository) *model.Repository {
	v := *repo
	v.LastFetchedAt = copyTime(repo.LastFetchedAt)
	return &v
}

func copyCredential(cred *model.Credential) *model.Credential {
	v := *cred
	return &v
}

func copyContribution(c *model.Contribution) *model.Contribution {
	v := *c
	v.Raw = copyRaw(c.Raw)
	return &v
}

func copyTask(task *model.Task) *model.Task {
	v := *task
	v.Result = copyRaw(task.Result)
	v.CreatedAt = copyTime(task.CreatedAt)
	v.StartedAt = copyTime(task.StartedAt)
	v.CompletedAt = copyTime(task.CompletedAt)
	return &v
}

func copySummary(s *model.Summary) *model.Summary {
	v := *s
	if s.Categories != nil {
		v.Categories = make(map[string]string, len(s.Categories))
		for k, c := range s.Categories {
			v.Categories[k] = c
		}
	}
	if s.Counts != nil {
		v.Counts = make(map[string]int, len(s.Counts))
		for k, c := range s.Counts {
			v.Counts[k] = c
		}
	}
	v.Achievements = append([]string(nil), s.Achievements...)
	return &v
}

func copyQuestionAnswer(qa *model.QuestionAnswer) *model.QuestionAnswer {
	v := *qa
	if qa.Response != nil {
		resp := *qa.Response
		resp.Evidence = append([]model.Evidence(nil), qa.Response.Evidence...)
		resp.ReasoningSteps = append([]string(nil), qa.Response.ReasoningSteps...)
		resp.SuggestedActions = append([]string(nil), qa.Response.SuggestedActions...)
		v.Response = &resp
	}
	return &v
}
