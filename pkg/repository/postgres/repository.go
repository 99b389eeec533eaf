package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/repository"
)

// Repository operations

func (x *Client) CreateOrUpdateRepository(ctx context.Context, repo *model.Repository) error {
	if repo.ID == "" {
		return goerr.Wrap(repository.ErrInvalidInput, "repository ID is empty")
	}

	createdAt := repo.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	const q = `INSERT INTO repositories (id, owner, name, url, created_at, last_fetched_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET owner = EXCLUDED.owner, name = EXCLUDED.name, url = EXCLUDED.url`
	if _, err := x.pool.Exec(ctx, q, string(repo.ID), repo.Owner, repo.Name, repo.URL, createdAt, repo.LastFetchedAt); err != nil {
		return goerr.Wrap(err, "failed to upsert repository", goerr.V("repository_id", repo.ID))
	}
	return nil
}

const selectRepository = `SELECT id, owner, name, url, created_at, last_fetched_at FROM repositories`

func scanRepository(row pgx.Row) (*model.Repository, error) {
	var (
		repo model.Repository
		id   string
	)
	if err := row.Scan(&id, &repo.Owner, &repo.Name, &repo.URL, &repo.CreatedAt, &repo.LastFetchedAt); err != nil {
		return nil, err
	}
	repo.ID = types.RepositoryID(id)
	return &repo, nil
}

func (x *Client) GetRepository(ctx context.Context, id types.RepositoryID) (*model.Repository, error) {
	repo, err := scanRepository(x.pool.QueryRow(ctx, selectRepository+` WHERE id = $1`, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("repository_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get repository", goerr.V("repository_id", id))
	}
	return repo, nil
}

func (x *Client) ListRepositories(ctx context.Context) ([]*model.Repository, error) {
	rows, err := x.pool.Query(ctx, selectRepository+` ORDER BY id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list repositories")
	}
	defer rows.Close()

	var repos []*model.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan repository")
		}
		repos = append(repos, repo)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate repositories")
	}
	return repos, nil
}

func (x *Client) UpdateLastFetchedAt(ctx context.Context, id types.RepositoryID, fetchedAt time.Time) error {
	// GREATEST ignores NULL, so the first fetch sets the watermark
	const q = `UPDATE repositories SET last_fetched_at = GREATEST(last_fetched_at, $2) WHERE id = $1`
	tag, err := x.pool.Exec(ctx, q, string(id), fetchedAt)
	if err != nil {
		return goerr.Wrap(err, "failed to update last fetched time", goerr.V("repository_id", id))
	}
	if tag.RowsAffected() == 0 {
		return goerr.Wrap(repository.ErrNotFound, "repository not found", goerr.V("repository_id", id))
	}
	return nil
}

// Credential operations

func (x *Client) CreateCredential(ctx context.Context, cred *model.Credential) error {
	if err := cred.Validate(); err != nil {
		return goerr.Wrap(repository.ErrInvalidInput, "invalid credential", goerr.V("cause", err.Error()))
	}

	createdAt := cred.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	const q = `INSERT INTO credentials (id, kind, token, app_id, install_id, private_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO NOTHING`
	tag, err := x.pool.Exec(ctx, q,
		string(cred.ID), string(cred.Kind), string(cred.Token),
		int64(cred.AppID), int64(cred.InstallID), string(cred.PrivateKey), createdAt,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert credential", goerr.V("credential_id", cred.ID))
	}
	if tag.RowsAffected() == 0 {
		return goerr.Wrap(repository.ErrAlreadyExists, "credential already exists", goerr.V("credential_id", cred.ID))
	}
	return nil
}

func (x *Client) LinkCredential(ctx context.Context, repoID types.RepositoryID, credID types.CredentialID, linkedAt time.Time) error {
	const q = `INSERT INTO credential_links (repository_id, credential_id, linked_at)
VALUES ($1, $2, $3)
ON CONFLICT (repository_id, credential_id) DO NOTHING`
	if _, err := x.pool.Exec(ctx, q, string(repoID), string(credID), linkedAt); err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return goerr.Wrap(repository.ErrNotFound, "repository or credential not found",
				goerr.V("repository_id", repoID),
				goerr.V("credential_id", credID),
			)
		}
		return goerr.Wrap(err, "failed to link credential",
			goerr.V("repository_id", repoID),
			goerr.V("credential_id", credID),
		)
	}
	return nil
}

func (x *Client) ListLinkedCredentials(ctx context.Context, repoID types.RepositoryID) ([]*model.LinkedCredential, error) {
	const q = `SELECT c.id, c.kind, c.token, c.app_id, c.install_id, c.private_key, c.created_at, l.linked_at
FROM credential_links l
JOIN credentials c ON c.id = l.credential_id
WHERE l.repository_id = $1
ORDER BY l.linked_at, c.id`
	rows, err := x.pool.Query(ctx, q, string(repoID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list linked credentials", goerr.V("repository_id", repoID))
	}
	defer rows.Close()

	var linked []*model.LinkedCredential
	for rows.Next() {
		var (
			cred                 model.Credential
			id, kind, token, pem string
			appID, installID     int64
			linkedAt             time.Time
		)
		if err := rows.Scan(&id, &kind, &token, &appID, &installID, &pem, &cred.CreatedAt, &linkedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan credential")
		}
		cred.ID = types.CredentialID(id)
		cred.Kind = types.CredentialKind(kind)
		cred.Token = types.AccessToken(token)
		cred.AppID = types.GitHubAppID(appID)
		cred.InstallID = types.GitHubAppInstallID(installID)
		cred.PrivateKey = types.GitHubAppPrivateKey(pem)

		linked = append(linked, &model.LinkedCredential{Credential: &cred, LinkedAt: linkedAt})
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate credentials")
	}
	return linked, nil
}
