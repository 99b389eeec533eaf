package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
)

// CredentialStrategy picks one of the credentials linked to a repository.
// linked is never empty and is ordered by link time, then credential ID.
type CredentialStrategy interface {
	Select(repoID types.RepositoryID, linked []*model.LinkedCredential) *model.Credential
}

// FirstLinked always picks the earliest linked credential
type FirstLinked struct{}

func (x *FirstLinked) Select(_ types.RepositoryID, linked []*model.LinkedCredential) *model.Credential {
	return linked[0].Credential
}

// MostRecent picks the latest linked credential
type MostRecent struct{}

func (x *MostRecent) Select(_ types.RepositoryID, linked []*model.LinkedCredential) *model.Credential {
	return linked[len(linked)-1].Credential
}

// RoundRobin rotates over the linked credentials per repository
type RoundRobin struct {
	mu   sync.Mutex
	next map[types.RepositoryID]int
}

func NewRoundRobin() *RoundRobin {
	return &RoundRobin{next: make(map[types.RepositoryID]int)}
}

func (x *RoundRobin) Select(repoID types.RepositoryID, linked []*model.LinkedCredential) *model.Credential {
	x.mu.Lock()
	defer x.mu.Unlock()

	i := x.next[repoID] % len(linked)
	x.next[repoID] = i + 1
	return linked[i].Credential
}

// NewCredentialStrategy returns the strategy registered under name
func NewCredentialStrategy(name string) (CredentialStrategy, error) {
	switch name {
	case "", "first_linked":
		return &FirstLinked{}, nil
	case "most_recent":
		return &MostRecent{}, nil
	case "round_robin":
		return NewRoundRobin(), nil
	}
	return nil, goerr.Wrap(types.ErrInvalidOption, "unknown credential strategy", goerr.V("strategy", name))
}

// ResolveCredential returns a credential usable for the repository. The
// result is not stable across calls when the strategy rotates.
func (x *UseCase) ResolveCredential(ctx context.Context, repoID types.RepositoryID) (*model.Credential, error) {
	linked, err := x.clients.Repository().ListLinkedCredentials(ctx, repoID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list linked credentials", goerr.V("repository_id", repoID))
	}
	if len(linked) == 0 {
		return nil, goerr.Wrap(types.ErrNoCredentialAvailable, "no credential is linked to the repository",
			goerr.V("repository_id", repoID),
		)
	}

	cred := x.credentialStrategy.Select(repoID, linked)
	logging.From(ctx).Debug("resolved credential",
		slog.Any("repository_id", repoID),
		slog.Any("credential_id", cred.ID),
		slog.Any("kind", cred.Kind),
	)
	return cred, nil
}
