package usecase

import (
	"context"
	"path"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/bqs"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/utils/errutil"
)

// exportSummary copies a new summary to the optional sinks. Export failures
// are reported but never undo the stored summary.
func (x *UseCase) exportSummary(ctx context.Context, summary *model.Summary, task *model.Task) {
	if x.clients.BigQuery() != nil {
		if err := insertSummaryRecord(ctx, x.clients.BigQuery(), summary); err != nil {
			errutil.HandleError(ctx, "failed to export summary to BigQuery", err)
		}
	}

	if x.clients.Storage() != nil && len(task.Result) > 0 {
		if err := x.clients.Storage().PutObject(ctx, summaryObjectPath(summary), task.Result, "application/json"); err != nil {
			errutil.HandleError(ctx, "failed to archive summary result", err)
		}
	}
}

func summaryObjectPath(s *model.Summary) string {
	return path.Join("summaries", s.Week.String(), s.RepositoryID.String(), s.Username+".json")
}

func insertSummaryRecord(ctx context.Context, bq interfaces.BigQuery, summary *model.Summary) error {
	record := model.NewSummaryRecord(summary)

	schema, err := createOrUpdateBigQueryTable(ctx, bq, record)
	if err != nil {
		return err
	}

	if err := bq.Insert(ctx, schema, record); err != nil {
		return goerr.Wrap(err, "failed to insert summary record", goerr.V("summary_id", summary.ID))
	}
	return nil
}

func createOrUpdateBigQueryTable(ctx context.Context, bq interfaces.BigQuery, record *model.SummaryRecord) (bigquery.Schema, error) {
	schema, err := bqs.Infer(record)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to infer summary schema")
	}

	metaData, err := bq.GetMetadata(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get BigQuery table metadata")
	}
	if metaData == nil {
		if err := bq.CreateTable(ctx, &bigquery.TableMetadata{
			Schema: schema,
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to create BigQuery table")
		}
		return schema, nil
	}

	if bqs.Equal(metaData.Schema, schema) {
		return schema, nil
	}

	mergedSchema, err := bqs.Merge(metaData.Schema, schema)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to merge BigQuery schema")
	}
	if err := bq.UpdateTable(ctx, bigquery.TableMetadataToUpdate{
		Schema: mergedSchema,
	}, metaData.ETag); err != nil {
		return nil, goerr.Wrap(err, "failed to update BigQuery table")
	}

	return mergedSchema, nil
}
