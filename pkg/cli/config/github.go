package config

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

type GitHub struct {
	baseURL string
}

func (x *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-base-url",
			Usage:       "GitHub REST API endpoint for GitHub Enterprise, e.g. https://ghe.example.com/api/v3/",
			Category:    "GitHub",
			Destination: &x.baseURL,
			Sources:     cli.EnvVars("GHDIGEST_GITHUB_BASE_URL"),
		},
	}
}

func (x *GitHub) New() (*github.Client, error) {
	var options []github.Option
	if x.baseURL != "" {
		raw := x.baseURL
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, goerr.Wrap(types.ErrInvalidOption, "invalid GitHub base URL", goerr.V("url", x.baseURL))
		}
		options = append(options, github.WithBaseURL(u))
	}
	return github.New(options...), nil
}

func (x GitHub) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("BaseURL", x.baseURL),
	)
}

// Credential is the credential given to the register command
type Credential struct {
	token      types.AccessToken
	appID      types.GitHubAppID
	installID  types.GitHubAppInstallID
	privateKey types.GitHubAppPrivateKey
}

func (x *Credential) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub personal access token",
			Category:    "Credential",
			Destination: (*string)(&x.token),
			Sources:     cli.EnvVars("GHDIGEST_GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Category:    "Credential",
			Destination: (*int64)(&x.appID),
			Sources:     cli.EnvVars("GHDIGEST_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-install-id",
			Usage:       "GitHub App installation ID",
			Category:    "Credential",
			Destination: (*int64)(&x.installID),
			Sources:     cli.EnvVars("GHDIGEST_GITHUB_APP_INSTALL_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key (PEM)",
			Category:    "Credential",
			Destination: (*string)(&x.privateKey),
			Sources:     cli.EnvVars("GHDIGEST_GITHUB_APP_PRIVATE_KEY"),
		},
	}
}

// Kind is github_app when an app ID is given, otherwise pat
func (x *Credential) Kind() types.CredentialKind {
	if x.appID != 0 {
		return types.CredentialKindGitHubApp
	}
	return types.CredentialKindPAT
}

func (x *Credential) Token() types.AccessToken              { return x.token }
func (x *Credential) AppID() types.GitHubAppID              { return x.appID }
func (x *Credential) InstallID() types.GitHubAppInstallID   { return x.installID }
func (x *Credential) PrivateKey() types.GitHubAppPrivateKey { return x.privateKey }

func (x Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("Kind", x.Kind()),
		slog.Int("Token.len", len(x.token)),
		slog.Int64("AppID", int64(x.appID)),
		slog.Int64("InstallID", int64(x.installID)),
		slog.Int("PrivateKey.len", len(x.privateKey)),
	)
}
