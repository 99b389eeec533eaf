package model

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
)

// ContributionKey is the identity of a contribution. NativeID is the bare
// commit SHA, "owner/name#number" for PRs and issues, or "owner/name@tag"
// for releases.
type ContributionKey struct {
	Type     types.ContributionType `json:"type" validate:"required,oneof=commit pull_request issue release"`
	NativeID string                 `json:"id" validate:"required"`
}

func (x ContributionKey) String() string {
	return string(x.Type) + ":" + x.NativeID
}

func NewCommitKey(sha string) ContributionKey {
	return ContributionKey{Type: types.ContributionCommit, NativeID: sha}
}

// NewNumberedKey builds the key of a pull request or issue. Numbers are only
// unique within a repository.
func NewNumberedKey(t types.ContributionType, repoID types.RepositoryID, number int) ContributionKey {
	return ContributionKey{Type: t, NativeID: string(repoID) + "#" + strconv.Itoa(number)}
}

func NewReleaseKey(repoID types.RepositoryID, tag string) ContributionKey {
	return ContributionKey{Type: types.ContributionRelease, NativeID: string(repoID) + "@" + tag}
}

type Contribution struct {
	ContributionKey
	RepositoryID types.RepositoryID `json:"repository_id"`
	Author       string             `json:"author"`
	Summary      string             `json:"summary"`
	Raw          json.RawMessage    `json:"raw,omitempty"`
	IsSelected   bool               `json:"is_selected"`

	// CreatedAt and UpdatedAt are reported by GitHub. UpdatedAt equals
	// CreatedAt for types without an update time.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ContributionFilter selects contributions. Zero values mean "no filter".
type ContributionFilter struct {
	RepositoryID types.RepositoryID
	Author       string
	Type         types.ContributionType
	Since        *time.Time // inclusive, on CreatedAt
	Until        *time.Time // exclusive, on CreatedAt
	Selected     *bool

	Offset int
	Limit  int
}

func (x *ContributionFilter) Match(c *Contribution) bool {
	if x.RepositoryID != "" && c.RepositoryID != x.RepositoryID {
		return false
	}
	if x.Author != "" && c.Author != x.Author {
		return false
	}
	if x.Type != "" && c.Type != x.Type {
		return false
	}
	if x.Since != nil && c.CreatedAt.Before(*x.Since) {
		return false
	}
	if x.Until != nil && !c.CreatedAt.Before(*x.Until) {
		return false
	}
	if x.Selected != nil && c.IsSelected != *x.Selected {
		return false
	}
	return true
}

// SelectionUpdate is one entry of a bulk is_selected update
type SelectionUpdate struct {
	ContributionKey
	IsSelected bool `json:"is_selected"`
}

func (x *SelectionUpdate) Validate() error {
	if x == nil {
		return goerr.Wrap(types.ErrValidationFailed, "selection update is null")
	}
	if !x.Type.Valid() {
		return goerr.Wrap(types.ErrValidationFailed, "invalid contribution type", goerr.V("type", x.Type))
	}
	if x.NativeID == "" {
		return goerr.Wrap(types.ErrValidationFailed, "contribution id is empty")
	}
	return nil
}
