package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/repository"
)

func (r *digestRepository) UpsertContributions(ctx context.Context, contributions []*model.Contribution) (int, error) {
	for _, c := range contributions {
		if !c.Type.Valid() || c.NativeID == "" {
			return 0, goerr.Wrap(repository.ErrInvalidInput, "invalid contribution key",
				goerr.V("key", c.ContributionKey.String()),
			)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range contributions {
		v := copyContribution(c)
		if existing, ok := r.contributions[c.ContributionKey]; ok {
			v.IsSelected = existing.IsSelected
		}
		r.contributions[c.ContributionKey] = v
	}
	return len(contributions), nil
}

func (r *digestRepository) GetContribution(ctx context.Context, key model.ContributionKey) (*model.Contribution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contributions[key]
	if !ok {
		return nil, goerr.Wrap(repository.ErrNotFound, "contribution not found",
			goerr.V("key", key.String()),
		)
	}
	return copyContribution(c), nil
}

func (r *digestRepository) ListContributions(ctx context.Context, filter *model.ContributionFilter) ([]*model.Contribution, error) {
	if filter == nil {
		filter = &model.ContributionFilter{}
	}

	r.mu.RLock()
	var matched []*model.Contribution
	for _, c := range r.contributions {
		if filter.Match(c) {
			matched = append(matched, copyContribution(c))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ContributionKey.String() < matched[j].ContributionKey.String()
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *digestRepository) UpdateSelections(ctx context.Context, updates []*model.SelectionUpdate) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	for _, u := range updates {
		if c, ok := r.contributions[u.ContributionKey]; ok {
			c.IsSelected = u.IsSelected
			n++
		}
	}
	return n, nil
}
