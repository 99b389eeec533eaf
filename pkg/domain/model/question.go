package model

import (
	"time"

	"github.com/secmon-lab/ghdigest/pkg/domain/types"
)

type Evidence struct {
	Source  string `json:"source" validate:"required"`
	Excerpt string `json:"excerpt"`
	URL     string `json:"url,omitempty"`
}

// AnswerResult is the result payload of a done question task
type AnswerResult struct {
	Answer           string     `json:"answer" validate:"required"`
	Confidence       float64    `json:"confidence" validate:"gte=0,lte=1"`
	Evidence         []Evidence `json:"evidence" validate:"dive"`
	ReasoningSteps   []string   `json:"reasoning_steps"`
	SuggestedActions []string   `json:"suggested_actions"`
}

// QuestionAnswer is one asked question. Failed answers keep a human readable
// error description in Answer so that every question stays in history.
type QuestionAnswer struct {
	ID           types.QuestionAnswerID `json:"id"`
	RepositoryID types.RepositoryID     `json:"repository_id"`
	Username     string                 `json:"username,omitempty"`
	Week         types.Week             `json:"week,omitempty"`
	Question     string                 `json:"question"`
	Answer       string                 `json:"answer"`
	Confidence   float64                `json:"confidence"`
	Response     *AnswerResult          `json:"response,omitempty"`
	TaskID       types.TaskID           `json:"task_id,omitempty"`
	Failed       bool                   `json:"failed"`
	AskedAt      time.Time              `json:"asked_at"`
	AnsweredAt   time.Time              `json:"answered_at"`
	Elapsed      time.Duration          `json:"elapsed"`
}

// QuestionContext is what a question is asked with. Summary is nil when
// neither a weekly summary nor earlier answers exist.
type QuestionContext struct {
	Repository *Repository
	Credential *Credential
	Summary    *string
}
