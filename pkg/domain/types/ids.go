package types

import (
	"strings"

	"github.com/google/uuid"
)

type (
	RequestID        string
	RepositoryID     string
	CredentialID     string
	TaskID           string
	SummaryID        string
	QuestionAnswerID string

	GoogleProjectID string
	BQDatasetID     string
	BQTableID       string
	GCSBucket       string
	GCSPrefix       string
)

func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

func NewCredentialID() CredentialID {
	return CredentialID(uuid.NewString())
}

func NewSummaryID() SummaryID {
	return SummaryID(uuid.NewString())
}

func NewQuestionAnswerID() QuestionAnswerID {
	return QuestionAnswerID(uuid.NewString())
}

// NewRepositoryID builds the "owner/name" identifier. GitHub treats both parts
// case-insensitively, so they are lowered.
func NewRepositoryID(owner, name string) RepositoryID {
	return RepositoryID(strings.ToLower(owner) + "/" + strings.ToLower(name))
}

func (x RepositoryID) String() string { return string(x) }
func (x CredentialID) String() string { return string(x) }
func (x TaskID) String() string       { return string(x) }

func (x GoogleProjectID) String() string { return string(x) }
func (x BQDatasetID) String() string     { return string(x) }
func (x BQTableID) String() string       { return string(x) }
func (x GCSBucket) String() string       { return string(x) }
func (x GCSPrefix) String() string       { return string(x) }
