package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/infra/bq"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/option"
)

type BigQuery struct {
	projectID             types.GoogleProjectID
	datasetID             types.BQDatasetID
	tableID               types.BQTableID
	impersonateServiceAcc string
}

func (x *BigQuery) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bigquery-project-id",
			Usage:       "BigQuery project ID to export summaries",
			Category:    "BigQuery",
			Destination: (*string)(&x.projectID),
			Sources:     cli.EnvVars("GHDIGEST_BIGQUERY_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "bigquery-dataset-id",
			Usage:       "BigQuery dataset ID to export summaries",
			Category:    "BigQuery",
			Destination: (*string)(&x.datasetID),
			Sources:     cli.EnvVars("GHDIGEST_BIGQUERY_DATASET_ID"),
		},
		&cli.StringFlag{
			Name:        "bigquery-table-id",
			Usage:       "BigQuery table ID to export summaries",
			Category:    "BigQuery",
			Destination: (*string)(&x.tableID),
			Sources:     cli.EnvVars("GHDIGEST_BIGQUERY_TABLE_ID"),
			Value:       "summaries",
		},
		&cli.StringFlag{
			Name:        "bigquery-impersonate-service-account",
			Usage:       "Service account to impersonate for BigQuery access",
			Category:    "BigQuery",
			Destination: &x.impersonateServiceAcc,
			Sources:     cli.EnvVars("GHDIGEST_BIGQUERY_IMPERSONATE_SERVICE_ACCOUNT"),
		},
	}
}

func (x *BigQuery) Enabled() bool {
	return x.projectID != "" && x.datasetID != ""
}

// NewClient returns nil without error when export is not configured
func (x *BigQuery) NewClient(ctx context.Context) (interfaces.BigQuery, error) {
	if !x.Enabled() {
		return nil, nil
	}
	if x.tableID == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "bigquery table ID is empty")
	}

	var options []option.ClientOption
	if x.impersonateServiceAcc != "" {
		ts, err := impersonate.CredentialsTokenSource(ctx, impersonate.CredentialsConfig{
			TargetPrincipal: x.impersonateServiceAcc,
			Scopes: []string{
				"https://www.googleapis.com/auth/bigquery",
				"https://www.googleapis.com/auth/cloud-platform",
			},
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create token source for impersonation",
				goerr.V("service_account", x.impersonateServiceAcc),
			)
		}
		options = append(options, option.WithTokenSource(ts))
	}

	client, err := bq.New(ctx, x.projectID, x.datasetID, x.tableID, options...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (x BigQuery) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("ProjectID", x.projectID),
		slog.Any("DatasetID", x.datasetID),
		slog.Any("TableID", x.tableID),
		slog.String("ImpersonateServiceAccount", x.impersonateServiceAcc),
	)
}
