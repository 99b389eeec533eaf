package types

import "log/slog"

type (
	GitHubAppID         int64
	GitHubAppInstallID  int64
	GitHubAppPrivateKey string

	// AccessToken is an opaque credential secret such as a personal access token.
	AccessToken string
)

const maskedValue = "***********"

func (x GitHubAppPrivateKey) LogValue() slog.Value {
	return slog.StringValue(maskedValue)
}

func (x GitHubAppPrivateKey) String() string {
	return maskedValue
}

func (x AccessToken) LogValue() slog.Value {
	return slog.StringValue(maskedValue)
}

func (x AccessToken) String() string {
	return maskedValue
}

// CredentialKind tells how a credential authenticates against GitHub
type CredentialKind string

const (
	CredentialKindPAT       CredentialKind = "pat"
	CredentialKindGitHubApp CredentialKind = "github_app"
)

func (x CredentialKind) Valid() bool {
	switch x {
	case CredentialKindPAT, CredentialKindGitHubApp:
		return true
	}
	return false
}
