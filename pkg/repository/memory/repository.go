package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/repository"
)

// Repository operations

func (r *digestRepository) CreateOrUpdateRepository(ctx context.Context, repo *model.Repository) error {
	if repo.ID == "" {
		return goerr.Wrap(repository.ErrInvalidInput, "repository ID is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v := copyRepository(repo)
	if existing, ok := r.repos[repo.ID]; ok {
		// the watermark is owned by UpdateLastFetchedAt
		v.LastFetchedAt = copyTime(existing.LastFetchedAt)
		v.CreatedAt = existing.CreatedAt
	}
	r.repos[repo.ID] = v
	return nil
}

func (r *digestRepository) GetRepository(ctx context.Context, id types.RepositoryID) (*model.Repository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	repo, ok := r.repos[id]
	if !ok {
		return nil, goerr.Wrap(repository.ErrNotFound, "repository not found",
			goerr.V("repository_id", id),
		)
	}
	return copyRepository(repo), nil
}

func (r *digestRepository) ListRepositories(ctx context.Context) ([]*model.Repository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	repos := make([]*model.Repository, 0, len(r.repos))
	for _, repo := range r.repos {
		repos = append(repos, copyRepository(repo))
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].ID < repos[j].ID })
	return repos, nil
}

func (r *digestRepository) UpdateLastFetchedAt(ctx context.Context, id types.RepositoryID, fetchedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, ok := r.repos[id]
	if !ok {
		return goerr.Wrap(repository.ErrNotFound, "repository not found",
			goerr.V("repository_id", id),
		)
	}

	if repo.LastFetchedAt == nil || fetchedAt.After(*repo.LastFetchedAt) {
		t := fetchedAt
		repo.LastFetchedAt = &t
	}
	return nil
}

// Credential operations

func (r *digestRepository) CreateCredential(ctx context.Context, cred *model.Credential) error {
	if err := cred.Validate(); err != nil {
		return goerr.Wrap(repository.ErrInvalidInput, "invalid credential", goerr.V("cause", err.Error()))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.credentials[cred.ID]; ok {
		return goerr.Wrap(repository.ErrAlreadyExists, "credential already exists",
			goerr.V("credential_id", cred.ID),
		)
	}
	r.credentials[cred.ID] = copyCredential(cred)
	return nil
}

func (r *digestRepository) LinkCredential(ctx context.Context, repoID types.RepositoryID, credID types.CredentialID, linkedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.repos[repoID]; !ok {
		return goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("repository_id", repoID))
	}
	if _, ok := r.credentials[credID]; !ok {
		return goerr.Wrap(repository.ErrNotFound, "credential not found", goerr.V("credential_id", credID))
	}

	for _, link := range r.links[repoID] {
		if link.credID == credID {
			return nil
		}
	}
	r.links[repoID] = append(r.links[repoID], credentialLink{credID: credID, linkedAt: linkedAt})
	return nil
}

func (r *digestRepository) ListLinkedCredentials(ctx context.Context, repoID types.RepositoryID) ([]*model.LinkedCredential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var linked []*model.LinkedCredential
	for _, link := range r.links[repoID] {
		cred, ok := r.credentials[link.credID]
		if !ok {
			continue
		}
		linked = append(linked, &model.LinkedCredential{
			Credential: copyCredential(cred),
			LinkedAt:   link.linkedAt,
		})
	}

	sort.Slice(linked, func(i, j int) bool {
		if !linked[i].LinkedAt.Equal(linked[j].LinkedAt) {
			return linked[i].LinkedAt.Before(linked[j].LinkedAt)
		}
		return linked[i].Credential.ID < linked[j].Credential.ID
	})
	return linked, nil
}
