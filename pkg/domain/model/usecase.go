package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
)

type GenerateSummaryInput struct {
	RepositoryURL string            `json:"repository_url" validate:"required,url"`
	Username      string            `json:"username" validate:"required"`
	Week          types.Week        `json:"week" validate:"required"`
	Cadence       types.PollCadence `json:"-"`
}

func (x *GenerateSummaryInput) Validate() error {
	if err := Validate(x); err != nil {
		return err
	}
	if _, err := types.ParseWeek(string(x.Week)); err != nil {
		return err
	}
	return nil
}

type BackfillInput struct {
	Week types.Week `json:"week" validate:"required"`
}

func (x *BackfillInput) Validate() error {
	if err := Validate(x); err != nil {
		return err
	}
	if _, err := types.ParseWeek(string(x.Week)); err != nil {
		return err
	}
	return nil
}

type AskQuestionInput struct {
	RepositoryURL string     `json:"repository_url" validate:"required,url"`
	Username      string     `json:"username"`
	Week          types.Week `json:"week"`
	Question      string     `json:"question" validate:"required"`
}

func (x *AskQuestionInput) Validate() error {
	if err := Validate(x); err != nil {
		return err
	}
	if x.Week != "" {
		if _, err := types.ParseWeek(string(x.Week)); err != nil {
			return err
		}
	}
	return nil
}

// RegisterRepositoryInput registers a repository with its credential
type RegisterRepositoryInput struct {
	RepositoryURL string                    `validate:"required,url"`
	Kind          types.CredentialKind      `validate:"required"`
	Token         types.AccessToken         `masq:"secret"`
	AppID         types.GitHubAppID
	InstallID     types.GitHubAppInstallID
	PrivateKey    types.GitHubAppPrivateKey `masq:"secret"`
}

func (x *RegisterRepositoryInput) Validate() error {
	if err := Validate(x); err != nil {
		return err
	}
	if !x.Kind.Valid() {
		return goerr.Wrap(types.ErrValidationFailed, "unknown credential kind", goerr.V("kind", x.Kind))
	}
	return nil
}
