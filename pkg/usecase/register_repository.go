package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
)

// RegisterRepository adds the repository if unknown and links a new
// credential to it. The fetch watermark of a known repository is kept.
func (x *UseCase) RegisterRepository(ctx context.Context, input *model.RegisterRepositoryInput) (*model.Repository, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	repo, err := model.ParseRepositoryURL(input.RepositoryURL)
	if err != nil {
		return nil, err
	}

	now := logging.CtxTime(ctx).UTC()
	repo.CreatedAt = now

	cred := &model.Credential{
		ID:         types.NewCredentialID(),
		Kind:       input.Kind,
		Token:      input.Token,
		AppID:      input.AppID,
		InstallID:  input.InstallID,
		PrivateKey: input.PrivateKey,
		CreatedAt:  now,
	}
	if err := cred.Validate(); err != nil {
		return nil, err
	}

	store := x.clients.Repository()
	if err := store.CreateOrUpdateRepository(ctx, repo); err != nil {
		return nil, goerr.Wrap(err, "failed to save repository", goerr.V("repository_id", repo.ID))
	}
	if err := store.CreateCredential(ctx, cred); err != nil {
		return nil, goerr.Wrap(err, "failed to save credential", goerr.V("repository_id", repo.ID))
	}
	if err := store.LinkCredential(ctx, repo.ID, cred.ID, now); err != nil {
		return nil, goerr.Wrap(err, "failed to link credential",
			goerr.V("repository_id", repo.ID),
			goerr.V("credential_id", cred.ID),
		)
	}

	saved, err := store.GetRepository(ctx, repo.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load registered repository", goerr.V("repository_id", repo.ID))
	}

	logging.From(ctx).Info("Registered repository",
		slog.Any("repository_id", saved.ID),
		slog.Any("credential_id", cred.ID),
		slog.Any("kind", cred.Kind),
	)
	return saved, nil
}
