package github

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gh "github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"golang.org/x/oauth2"
)

const defaultPerPage = 100

// Client reads contributions from the GitHub REST API. One API client is
// kept per credential together with the last quota reported for it.
type Client struct {
	baseURL   *url.URL
	transport http.RoundTripper
	now       func() time.Time

	mu      sync.Mutex
	clients map[types.CredentialID]*gh.Client
	apps    map[types.CredentialID]*ghinstallation.Transport
	rates   map[types.CredentialID]gh.Rate
}

var _ interfaces.GitHub = (*Client)(nil)

type Option func(*Client)

// WithBaseURL sets the REST API endpoint, e.g. https://ghe.example.com/api/v3/
func WithBaseURL(baseURL *url.URL) Option {
	return func(x *Client) {
		x.baseURL = baseURL
	}
}

func WithTransport(tr http.RoundTripper) Option {
	return func(x *Client) {
		x.transport = tr
	}
}

func WithClock(now func() time.Time) Option {
	return func(x *Client) {
		x.now = now
	}
}

func New(options ...Option) *Client {
	client := &Client{
		transport: http.DefaultTransport,
		now:       time.Now,
		clients:   make(map[types.CredentialID]*gh.Client),
		apps:      make(map[types.CredentialID]*ghinstallation.Transport),
		rates:     make(map[types.CredentialID]gh.Rate),
	}
	for _, opt := range options {
		opt(client)
	}
	if client.baseURL != nil && !strings.HasSuffix(client.baseURL.Path, "/") {
		u := *client.baseURL
		u.Path += "/"
		client.baseURL = &u
	}
	return client
}

func (x *Client) buildClient(ctx context.Context, cred *model.Credential) (*gh.Client, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if client, ok := x.clients[cred.ID]; ok {
		return client, nil
	}

	var httpClient *http.Client
	switch cred.Kind {
	case types.CredentialKindPAT:
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: string(cred.Token)})
		httpClient = &http.Client{Transport: &oauth2.Transport{Source: ts, Base: x.transport}}

	case types.CredentialKindGitHubApp:
		itr, err := ghinstallation.New(x.transport, int64(cred.AppID), int64(cred.InstallID), []byte(cred.PrivateKey))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create GitHub App transport",
				goerr.V("credential_id", cred.ID),
				goerr.V("app_id", cred.AppID),
			)
		}
		if x.baseURL != nil {
			itr.BaseURL = strings.TrimSuffix(x.baseURL.String(), "/")
		}
		httpClient = &http.Client{Transport: itr}
		x.apps[cred.ID] = itr

	default:
		return nil, goerr.Wrap(types.ErrInvalidOption, "unsupported credential kind",
			goerr.V("credential_id", cred.ID),
			goerr.V("kind", cred.Kind),
		)
	}

	client := gh.NewClient(httpClient)
	if x.baseURL != nil {
		client.BaseURL = x.baseURL
	}
	x.clients[cred.ID] = client

	logging.From(ctx).Debug("built GitHub client",
		slog.Any("credential_id", cred.ID),
		slog.Any("kind", cred.Kind),
	)
	return client, nil
}

// AccessToken returns a token that grants read access with the credential.
// A GitHub App credential yields a short-lived installation token.
func (x *Client) AccessToken(ctx context.Context, cred *model.Credential) (types.AccessToken, error) {
	switch cred.Kind {
	case types.CredentialKindPAT:
		return cred.Token, nil

	case types.CredentialKindGitHubApp:
		if _, err := x.buildClient(ctx, cred); err != nil {
			return "", err
		}
		x.mu.Lock()
		itr := x.apps[cred.ID]
		x.mu.Unlock()

		token, err := itr.Token(ctx)
		if err != nil {
			return "", goerr.Wrap(err, "failed to issue installation token",
				goerr.V("credential_id", cred.ID),
				goerr.V("install_id", cred.InstallID),
			)
		}
		return types.AccessToken(token), nil
	}

	return "", goerr.Wrap(types.ErrInvalidOption, "unsupported credential kind",
		goerr.V("credential_id", cred.ID),
		goerr.V("kind", cred.Kind),
	)
}

// checkRate fails fast when the last response of this credential reported an
// exhausted quota that has not been reset yet.
func (x *Client) checkRate(cred *model.Credential) error {
	x.mu.Lock()
	rate, ok := x.rates[cred.ID]
	x.mu.Unlock()

	if ok && rate.Remaining == 0 && rate.Reset.Time.After(x.now()) {
		return types.NewRateLimitError(rate.Remaining, rate.Reset.Time)
	}
	return nil
}

func (x *Client) recordRate(cred *model.Credential, resp *gh.Response) {
	if resp == nil || resp.Rate.Reset.IsZero() {
		return
	}
	x.mu.Lock()
	x.rates[cred.ID] = resp.Rate
	x.mu.Unlock()
}

// Rate returns the last quota observed for the credential
func (x *Client) Rate(credID types.CredentialID) (remaining int, reset time.Time, ok bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	rate, ok := x.rates[credID]
	return rate.Remaining, rate.Reset.Time, ok
}

func (x *Client) ListContributions(ctx context.Context, cred *model.Credential, input *interfaces.ListContributionsInput) (*interfaces.ContributionPage, error) {
	if err := x.checkRate(cred); err != nil {
		return nil, goerr.Wrap(err, "GitHub quota exhausted",
			goerr.V("credential_id", cred.ID),
			goerr.V("owner", input.Owner),
			goerr.V("repo", input.Repo),
		)
	}

	client, err := x.buildClient(ctx, cred)
	if err != nil {
		return nil, err
	}

	opt := gh.ListOptions{Page: input.Page, PerPage: input.PerPage}
	if opt.PerPage <= 0 {
		opt.PerPage = defaultPerPage
	}
	repoID := types.NewRepositoryID(input.Owner, input.Repo)

	var (
		items []*model.Contribution
		resp  *gh.Response
	)

	switch input.Type {
	case types.ContributionCommit:
		listOpt := &gh.CommitsListOptions{ListOptions: opt}
		if input.Since != nil {
			listOpt.Since = *input.Since
		}
		var commits []*gh.RepositoryCommit
		commits, resp, err = client.Repositories.ListCommits(ctx, input.Owner, input.Repo, listOpt)
		for _, c := range commits {
			items = append(items, commitToContribution(repoID, c))
		}

	case types.ContributionPullRequest:
		listOpt := &gh.PullRequestListOptions{
			State:       "all",
			Sort:        "updated",
			Direction:   "desc",
			ListOptions: opt,
		}
		var pulls []*gh.PullRequest
		pulls, resp, err = client.PullRequests.List(ctx, input.Owner, input.Repo, listOpt)
		for _, pr := range pulls {
			items = append(items, pullRequestToContribution(repoID, pr))
		}

	case types.ContributionIssue:
		listOpt := &gh.IssueListByRepoOptions{
			State:       "all",
			Sort:        "updated",
			Direction:   "desc",
			ListOptions: opt,
		}
		if input.Since != nil {
			listOpt.Since = *input.Since
		}
		var issues []*gh.Issue
		issues, resp, err = client.Issues.ListByRepo(ctx, input.Owner, input.Repo, listOpt)
		for _, issue := range issues {
			// the issues endpoint also returns pull requests
			if issue.IsPullRequest() {
				continue
			}
			items = append(items, issueToContribution(repoID, issue))
		}

	case types.ContributionRelease:
		var releases []*gh.RepositoryRelease
		releases, resp, err = client.Repositories.ListReleases(ctx, input.Owner, input.Repo, &opt)
		for _, release := range releases {
			items = append(items, releaseToContribution(repoID, release))
		}

	default:
		return nil, goerr.Wrap(types.ErrInvalidOption, "unknown contribution type", goerr.V("type", input.Type))
	}

	x.recordRate(cred, resp)
	if err != nil {
		return nil, x.wrapError(err, cred, input)
	}

	page := &interfaces.ContributionPage{Items: items}
	if resp != nil {
		page.NextPage = resp.NextPage
	}

	logging.From(ctx).Debug("listed contributions",
		slog.Any("type", input.Type),
		slog.String("repo", input.Owner+"/"+input.Repo),
		slog.Int("page", input.Page),
		slog.Int("count", len(items)),
		slog.Int("next_page", page.NextPage),
	)
	return page, nil
}

func (x *Client) wrapError(err error, cred *model.Credential, input *interfaces.ListContributionsInput) error {
	vars := []goerr.Option{
		goerr.V("credential_id", cred.ID),
		goerr.V("type", input.Type),
		goerr.V("owner", input.Owner),
		goerr.V("repo", input.Repo),
		goerr.V("page", input.Page),
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return goerr.Wrap(types.NewRateLimitError(rateErr.Rate.Remaining, rateErr.Rate.Reset.Time),
			"GitHub rate limit exceeded", vars...)
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		reset := x.now().Add(time.Minute)
		if abuseErr.RetryAfter != nil {
			reset = x.now().Add(*abuseErr.RetryAfter)
		}
		return goerr.Wrap(types.NewRateLimitError(0, reset), "GitHub secondary rate limit exceeded", vars...)
	}

	return goerr.Wrap(err, "failed to list contributions", vars...)
}

func rawJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func commitToContribution(repoID types.RepositoryID, c *gh.RepositoryCommit) *model.Contribution {
	author := c.GetAuthor().GetLogin()
	if author == "" {
		author = c.GetCommit().GetAuthor().GetName()
	}
	createdAt := c.GetCommit().GetAuthor().GetDate().Time
	updatedAt := c.GetCommit().GetCommitter().GetDate().Time
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	return &model.Contribution{
		ContributionKey: model.NewCommitKey(c.GetSHA()),
		RepositoryID:    repoID,
		Author:          author,
		Summary:         firstLine(c.GetCommit().GetMessage()),
		Raw:             rawJSON(c),
		IsSelected:      true,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

func pullRequestToContribution(repoID types.RepositoryID, pr *gh.PullRequest) *model.Contribution {
	return &model.Contribution{
		ContributionKey: model.NewNumberedKey(types.ContributionPullRequest, repoID, pr.GetNumber()),
		RepositoryID:    repoID,
		Author:          pr.GetUser().GetLogin(),
		Summary:         firstLine(pr.GetTitle()),
		Raw:             rawJSON(pr),
		IsSelected:      true,
		CreatedAt:       pr.GetCreatedAt().Time,
		UpdatedAt:       pr.GetUpdatedAt().Time,
	}
}

func issueToContribution(repoID types.RepositoryID, issue *gh.Issue) *model.Contribution {
	return &model.Contribution{
		ContributionKey: model.NewNumberedKey(types.ContributionIssue, repoID, issue.GetNumber()),
		RepositoryID:    repoID,
		Author:          issue.GetUser().GetLogin(),
		Summary:         firstLine(issue.GetTitle()),
		Raw:             rawJSON(issue),
		IsSelected:      true,
		CreatedAt:       issue.GetCreatedAt().Time,
		UpdatedAt:       issue.GetUpdatedAt().Time,
	}
}

func releaseToContribution(repoID types.RepositoryID, release *gh.RepositoryRelease) *model.Contribution {
	summary := release.GetName()
	if summary == "" {
		summary = release.GetTagName()
	}
	createdAt := release.GetCreatedAt().Time
	updatedAt := release.GetPublishedAt().Time
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	return &model.Contribution{
		ContributionKey: model.NewReleaseKey(repoID, release.GetTagName()),
		RepositoryID:    repoID,
		Author:          release.GetAuthor().GetLogin(),
		Summary:         firstLine(summary),
		Raw:             rawJSON(release),
		IsSelected:      true,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}
