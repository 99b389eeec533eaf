package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
)

const maxListLimit = 1000

func (x *UseCase) ListContributions(ctx context.Context, filter *model.ContributionFilter) ([]*model.Contribution, error) {
	if filter == nil {
		filter = &model.ContributionFilter{}
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, goerr.Wrap(types.ErrValidationFailed, "unknown contribution type", goerr.V("type", filter.Type))
	}
	if filter.Offset < 0 || filter.Limit < 0 || filter.Limit > maxListLimit {
		return nil, goerr.Wrap(types.ErrValidationFailed, "invalid pagination",
			goerr.V("offset", filter.Offset),
			goerr.V("limit", filter.Limit),
		)
	}

	contributions, err := x.clients.Repository().ListContributions(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list contributions")
	}
	return contributions, nil
}

// UpdateSelections toggles contributions in or out of summaries. Unknown
// keys are ignored and not counted.
func (x *UseCase) UpdateSelections(ctx context.Context, updates []*model.SelectionUpdate) (int, error) {
	for i, u := range updates {
		if err := u.Validate(); err != nil {
			return 0, goerr.Wrap(err, "invalid selection update", goerr.V("index", i))
		}
	}
	if len(updates) == 0 {
		return 0, nil
	}

	n, err := x.clients.Repository().UpdateSelections(ctx, updates)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to update selections", goerr.V("count", len(updates)))
	}
	return n, nil
}
