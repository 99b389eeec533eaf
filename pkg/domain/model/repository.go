package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
)

// Repository is a GitHub repository tracked by the pipeline. LastFetchedAt is
// the fetch watermark; nil means the repository has never been fetched.
type Repository struct {
	ID            types.RepositoryID `json:"id"`
	Owner         string             `json:"owner"`
	Name          string             `json:"name"`
	URL           string             `json:"url"`
	CreatedAt     time.Time          `json:"created_at"`
	LastFetchedAt *time.Time         `json:"last_fetched_at,omitempty"`
}

// ParseRepositoryURL parses https://github.com/{owner}/{name} into a Repository.
// Trailing slash and ".git" suffix are tolerated. Host is not restricted to
// github.com so that GitHub Enterprise URLs also work.
func ParseRepositoryURL(raw string) (*Repository, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, goerr.Wrap(types.ErrInvalidRepositoryURL, "failed to parse URL", goerr.V("url", raw), goerr.V("cause", err.Error()))
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, goerr.Wrap(types.ErrInvalidRepositoryURL, "URL scheme must be http or https", goerr.V("url", raw))
	}
	if u.Host == "" {
		return nil, goerr.Wrap(types.ErrInvalidRepositoryURL, "URL has no host", goerr.V("url", raw))
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, goerr.Wrap(types.ErrInvalidRepositoryURL, "URL path must be /{owner}/{name}", goerr.V("url", raw))
	}
	owner := parts[0]
	name := strings.TrimSuffix(parts[1], ".git")
	if name == "" {
		return nil, goerr.Wrap(types.ErrInvalidRepositoryURL, "repository name is empty", goerr.V("url", raw))
	}

	return &Repository{
		ID:    types.NewRepositoryID(owner, name),
		Owner: owner,
		Name:  name,
		URL:   u.Scheme + "://" + u.Host + "/" + owner + "/" + name,
	}, nil
}

// Credential authorizes GitHub API access for one or more repositories
type Credential struct {
	ID        types.CredentialID       `json:"id"`
	Kind      types.CredentialKind     `json:"kind"`
	Token     types.AccessToken        `json:"-" masq:"secret"`
	AppID     types.GitHubAppID        `json:"app_id,omitempty"`
	InstallID types.GitHubAppInstallID `json:"install_id,omitempty"`
	// PrivateKey is the PEM of the GitHub App when Kind is github_app
	PrivateKey types.GitHubAppPrivateKey `json:"-" masq:"secret"`
	CreatedAt  time.Time                 `json:"created_at"`
}

func (x *Credential) Validate() error {
	if x.ID == "" {
		return goerr.Wrap(types.ErrValidationFailed, "credential ID is empty")
	}
	switch x.Kind {
	case types.CredentialKindPAT:
		if x.Token == "" {
			return goerr.Wrap(types.ErrValidationFailed, "token is empty", goerr.V("credential_id", x.ID))
		}
	case types.CredentialKindGitHubApp:
		if x.AppID == 0 || x.InstallID == 0 || x.PrivateKey == "" {
			return goerr.Wrap(types.ErrValidationFailed, "GitHub App credential requires app ID, install ID and private key", goerr.V("credential_id", x.ID))
		}
	default:
		return goerr.Wrap(types.ErrValidationFailed, "unknown credential kind", goerr.V("kind", x.Kind))
	}
	return nil
}

// LinkedCredential is a credential together with the time it was linked to a repository
type LinkedCredential struct {
	Credential *Credential
	LinkedAt   time.Time
}
