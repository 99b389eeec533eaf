package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/repository"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

type backfillPair struct {
	repoID   types.RepositoryID
	username string
}

// Backfill generates summaries for every (repository, user) pair with
// selected contributions in the week and no summary yet. Submission is paced
// by the backfill limiter; one failing pair never stops the others.
func (x *UseCase) Backfill(ctx context.Context, input *model.BackfillInput) (*model.BackfillReport, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	startedAt := logging.CtxTime(ctx)
	logger := logging.From(ctx).With(slog.Any("week", input.Week))

	pairs, err := x.backfillCandidates(ctx, input.Week)
	if err != nil {
		return nil, err
	}

	report := &model.BackfillReport{
		Week:       input.Week,
		Candidates: len(pairs),
	}
	logger.Info("Starting backfill", slog.Int("candidates", len(pairs)))

	var (
		mu sync.Mutex
		eg errgroup.Group
	)
	record := func(fn func()) {
		mu.Lock()
		defer mu.Unlock()
		fn()
	}
	eg.SetLimit(x.backfillConcurrency)

	for _, pair := range pairs {
		pairLogger := logger.With(slog.Any("repository_id", pair.repoID), slog.String("username", pair.username))

		_, err := x.clients.Repository().GetSummary(ctx, pair.username, input.Week)
		if err == nil {
			record(func() { report.Skipped++ })
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			record(func() {
				report.Failed++
				report.Errors = append(report.Errors, pairError(pair, err))
			})
			continue
		}

		repo, err := x.clients.Repository().GetRepository(ctx, pair.repoID)
		if err != nil {
			record(func() {
				report.Failed++
				report.Errors = append(report.Errors, pairError(pair, err))
			})
			continue
		}

		if err := x.backfillLimiter.Wait(ctx); err != nil {
			record(func() { report.Errors = append(report.Errors, err.Error()) })
			break
		}

		record(func() { report.Submitted++ })
		eg.Go(func() error {
			summary, err := x.GenerateWeeklySummary(ctx, &model.GenerateSummaryInput{
				RepositoryURL: repo.URL,
				Username:      pair.username,
				Week:          input.Week,
				Cadence:       types.PollBulk,
			})

			record(func() {
				switch {
				case err != nil:
					report.Failed++
					report.Errors = append(report.Errors, pairError(pair, err))
					pairLogger.Warn("Backfill job failed", slog.Any("error", err))
				case summary == nil:
					report.Skipped++
				default:
					report.Succeeded++
				}
			})
			return nil
		})
	}
	_ = eg.Wait()

	report.Elapsed = logging.CtxTime(ctx).Sub(startedAt)
	logger.Info("Completed backfill",
		slog.Int("candidates", report.Candidates),
		slog.Int("submitted", report.Submitted),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// backfillCandidates lists distinct (repository, author) pairs of the
// selected contributions created in the week, in a stable order
func (x *UseCase) backfillCandidates(ctx context.Context, week types.Week) ([]backfillPair, error) {
	start, end, err := week.Range()
	if err != nil {
		return nil, err
	}
	selected := true
	contributions, err := x.clients.Repository().ListContributions(ctx, &model.ContributionFilter{
		Since:    &start,
		Until:    &end,
		Selected: &selected,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list contributions of week", goerr.V("week", week))
	}

	seen := make(map[backfillPair]struct{})
	var pairs []backfillPair
	for _, c := range contributions {
		if c.Author == "" {
			continue
		}
		p := backfillPair{repoID: c.RepositoryID, username: c.Author}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		pairs = append(pairs, p)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].repoID != pairs[j].repoID {
			return pairs[i].repoID < pairs[j].repoID
		}
		return pairs[i].username < pairs[j].username
	})
	return pairs, nil
}

func pairError(p backfillPair, err error) string {
	return p.repoID.String() + " " + p.username + ": " + err.Error()
}
