package model

import (
	"time"

	"github.com/secmon-lab/ghdigest/pkg/domain/types"
)

type RateLimitInfo struct {
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// RepositoryFetchResult is the outcome of fetching one repository
type RepositoryFetchResult struct {
	RepositoryID types.RepositoryID `json:"repository_id"`
	URL          string             `json:"url"`
	Fetched      int                `json:"fetched"`
	Upserted     int                `json:"upserted"`
	Error        string             `json:"error,omitempty"`
	RateLimited  *RateLimitInfo     `json:"rate_limited,omitempty"`
}

// FetchReport aggregates a fetch run over one or more repositories
type FetchReport struct {
	RepositoriesProcessed int                      `json:"repositories_processed"`
	Fetched               int                      `json:"fetched"`
	Upserted              int                      `json:"upserted"`
	Results               []*RepositoryFetchResult `json:"results"`
	Errors                []string                 `json:"errors"`
	Elapsed               time.Duration            `json:"elapsed"`
}

func (x *FetchReport) Add(result *RepositoryFetchResult) {
	x.RepositoriesProcessed++
	x.Fetched += result.Fetched
	x.Upserted += result.Upserted
	x.Results = append(x.Results, result)
	if result.Error != "" {
		x.Errors = append(x.Errors, string(result.RepositoryID)+": "+result.Error)
	}
}

// RateLimited returns the rate limit hit latest in reset order, or nil
func (x *FetchReport) RateLimited() *RateLimitInfo {
	var latest *RateLimitInfo
	for _, r := range x.Results {
		if r.RateLimited == nil {
			continue
		}
		if latest == nil || r.RateLimited.Reset.After(latest.Reset) {
			latest = r.RateLimited
		}
	}
	return latest
}

// BackfillReport aggregates a backfill run for one week
type BackfillReport struct {
	Week       types.Week    `json:"week"`
	Candidates int           `json:"candidates"`
	Submitted  int           `json:"submitted"`
	Succeeded  int           `json:"succeeded"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Errors     []string      `json:"errors"`
	Elapsed    time.Duration `json:"elapsed"`
}

// ResumeReport aggregates re-polling of outstanding tasks
type ResumeReport struct {
	Pending   int      `json:"pending"`
	Completed int      `json:"completed"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}
