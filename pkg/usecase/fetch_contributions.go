package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// FetchAllRepositories fetches new contributions of every registered
// repository. A failing repository is reported and does not stop the others.
func (x *UseCase) FetchAllRepositories(ctx context.Context) (*model.FetchReport, error) {
	startedAt := logging.CtxTime(ctx)

	repos, err := x.clients.Repository().ListRepositories(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list repositories")
	}

	logging.From(ctx).Info("Starting fetch of all repositories",
		slog.Int("repositories", len(repos)),
		slog.Int("concurrency", x.fetchConcurrency),
	)

	results := make([]*model.RepositoryFetchResult, len(repos))
	var eg errgroup.Group
	eg.SetLimit(x.fetchConcurrency)
	for i, repo := range repos {
		eg.Go(func() error {
			results[i] = x.FetchRepository(ctx, repo)
			return nil
		})
	}
	_ = eg.Wait()

	report := &model.FetchReport{}
	for _, r := range results {
		report.Add(r)
	}
	report.Elapsed = logging.CtxTime(ctx).Sub(startedAt)

	logging.From(ctx).Info("Completed fetch of all repositories",
		slog.Int("repositories", report.RepositoriesProcessed),
		slog.Int("fetched", report.Fetched),
		slog.Int("upserted", report.Upserted),
		slog.Int("errors", len(report.Errors)),
		slog.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// FetchRepositoryByURL fetches one registered repository
func (x *UseCase) FetchRepositoryByURL(ctx context.Context, url string) (*model.FetchReport, error) {
	startedAt := logging.CtxTime(ctx)

	repo, err := x.lookupRepository(ctx, url)
	if err != nil {
		return nil, err
	}

	report := &model.FetchReport{}
	report.Add(x.FetchRepository(ctx, repo))
	report.Elapsed = logging.CtxTime(ctx).Sub(startedAt)
	return report, nil
}

// FetchRepository pulls every contribution type of the repository since its
// watermark. The watermark moves to the start time of this run only when all
// types were fetched and stored.
func (x *UseCase) FetchRepository(ctx context.Context, repo *model.Repository) *model.RepositoryFetchResult {
	startedAt := logging.CtxTime(ctx)
	logger := logging.From(ctx).With(slog.Any("repository_id", repo.ID))

	result := &model.RepositoryFetchResult{
		RepositoryID: repo.ID,
		URL:          repo.URL,
	}
	fail := func(err error) *model.RepositoryFetchResult {
		result.Error = err.Error()
		if rle, ok := types.AsRateLimitError(err); ok {
			result.RateLimited = &model.RateLimitInfo{
				Remaining: rle.Remaining,
				Reset:     rle.Reset,
			}
		}
		logger.Warn("Failed to fetch repository", slog.Any("error", err))
		return result
	}

	cred, err := x.ResolveCredential(ctx, repo.ID)
	if err != nil {
		return fail(err)
	}

	var (
		mu    sync.Mutex
		items []*model.Contribution
	)
	eg, egCtx := errgroup.WithContext(ctx)
	for _, t := range types.ContributionTypes {
		eg.Go(func() error {
			fetched, err := x.fetchContributionType(egCtx, cred, repo, t, startedAt)
			if err != nil {
				return err
			}
			mu.Lock()
			items = append(items, fetched...)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fail(err)
	}
	result.Fetched = len(items)

	if len(items) > 0 {
		n, err := x.clients.Repository().UpsertContributions(ctx, items)
		if err != nil {
			return fail(goerr.Wrap(err, "failed to store contributions", goerr.V("count", len(items))))
		}
		result.Upserted = n
	}

	if err := x.clients.Repository().UpdateLastFetchedAt(ctx, repo.ID, startedAt); err != nil {
		return fail(goerr.Wrap(err, "failed to update watermark"))
	}

	logger.Info("Fetched repository",
		slog.Int("fetched", result.Fetched),
		slog.Int("upserted", result.Upserted),
		slog.Any("since", repo.LastFetchedAt),
	)
	return result
}

func (x *UseCase) fetchContributionType(ctx context.Context, cred *model.Credential, repo *model.Repository, t types.ContributionType, fetchedAt time.Time) ([]*model.Contribution, error) {
	var items []*model.Contribution

	page := 1
	for {
		out, err := x.clients.GitHub().ListContributions(ctx, cred, &interfaces.ListContributionsInput{
			Type:    t,
			Owner:   repo.Owner,
			Repo:    repo.Name,
			Since:   repo.LastFetchedAt,
			Page:    page,
			PerPage: x.perPage,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list contributions",
				goerr.V("type", t),
				goerr.V("page", page),
			)
		}
		if len(out.Items) == 0 {
			break
		}
		if repo.LastFetchedAt != nil && pageEntirelyOlder(t, out.Items, *repo.LastFetchedAt) {
			break
		}

		for _, c := range out.Items {
			c.RepositoryID = repo.ID
			c.FetchedAt = fetchedAt
			// new contributions are selected; the store keeps the flag of known ones
			c.IsSelected = true
		}
		items = append(items, out.Items...)

		if out.NextPage == 0 {
			break
		}
		page = out.NextPage
	}

	return items, nil
}

// pageEntirelyOlder reports whether every item of a page predates the
// watermark. It relies on the listing being newest first: commits and
// releases by creation, pull requests and issues by update time.
func pageEntirelyOlder(t types.ContributionType, items []*model.Contribution, watermark time.Time) bool {
	for _, c := range items {
		ts := c.CreatedAt
		if t == types.ContributionPullRequest || t == types.ContributionIssue {
			ts = c.UpdatedAt
		}
		if !ts.Before(watermark) {
			return false
		}
	}
	return true
}

// lookupRepository resolves a repository URL to a registered repository
func (x *UseCase) lookupRepository(ctx context.Context, url string) (*model.Repository, error) {
	parsed, err := model.ParseRepositoryURL(url)
	if err != nil {
		return nil, err
	}

	repo, err := x.clients.Repository().GetRepository(ctx, parsed.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "repository is not registered", goerr.V("url", url))
	}
	return repo, nil
}
