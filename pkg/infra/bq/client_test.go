package bq_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/bqs"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/infra/bq"
	"github.com/secmon-lab/ghdigest/pkg/utils/testutil"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newSummaryRecord(id string) *model.SummaryRecord {
	return model.NewSummaryRecord(&model.Summary{
		ID:           types.SummaryID(id),
		Username:     "alice",
		Week:         "2024-W07",
		RepositoryID: "octo/repo",
		TaskID:       "task-1",
		SummaryResult: model.SummaryResult{
			Overview:     "Shipped the new fetch pipeline",
			Categories:   map[string]string{"backend": "pipeline", "docs": "README"},
			Achievements: []string{"fetch pipeline"},
			Counts:       map[string]int{"commit": 3, "issue": 1},
		},
		CreatedAt: time.Now().UTC(),
	})
}

func TestClient(t *testing.T) {
	projectID := testutil.GetEnvOrSkip(t, "TEST_BIGQUERY_PROJECT_ID")
	datasetID := testutil.GetEnvOrSkip(t, "TEST_BIGQUERY_DATASET_ID")

	ctx := context.Background()

	tblName := types.BQTableID(time.Now().Format("summary_test_20060102_150405"))
	client := gt.R1(bq.New(ctx, types.GoogleProjectID(projectID), types.BQDatasetID(datasetID), tblName)).NoError(t)

	var baseSchema bigquery.Schema

	t.Run("Create base table at first", func(t *testing.T) {
		baseSchema = gt.R1(bqs.Infer(struct {
			ID        string `bigquery:"id"`
			Timestamp int64  `bigquery:"timestamp"`
		}{})).NoError(t)

		gt.NoError(t, client.CreateTable(ctx, &bigquery.TableMetadata{
			Name:   tblName.String(),
			Schema: baseSchema,
		}))
	})

	t.Run("Insert records after schema merge", func(t *testing.T) {
		dataSchema := gt.R1(bqs.Infer(&model.SummaryRecord{})).NoError(t)
		mergedSchema := gt.R1(bqs.Merge(baseSchema, dataSchema)).NoError(t)

		md := gt.R1(client.GetMetadata(ctx)).NoError(t)
		gt.False(t, bqs.Equal(mergedSchema, baseSchema))
		gt.NoError(t, client.UpdateTable(ctx, bigquery.TableMetadataToUpdate{
			Schema: mergedSchema,
		}, md.ETag))

		gt.NoError(t, client.Insert(ctx, mergedSchema, newSummaryRecord("s-1"), newSummaryRecord("s-2")))
	})
}

func TestImpersonation(t *testing.T) {
	projectID := testutil.GetEnvOrSkip(t, "TEST_BIGQUERY_PROJECT_ID")
	datasetID := testutil.GetEnvOrSkip(t, "TEST_BIGQUERY_DATASET_ID")
	serviceAccount := testutil.GetEnvOrSkip(t, "TEST_BIGQUERY_IMPERSONATE_SERVICE_ACCOUNT")

	ctx := context.Background()

	ts, err := impersonate.CredentialsTokenSource(ctx, impersonate.CredentialsConfig{
		TargetPrincipal: serviceAccount,
		Scopes: []string{
			"https://www.googleapis.com/auth/bigquery",
			"https://www.googleapis.com/auth/cloud-platform",
		},
	})
	gt.NoError(t, err)

	tblName := types.BQTableID(time.Now().Format("impersonation_test_20060102_150405"))
	client := gt.R1(bq.New(ctx, types.GoogleProjectID(projectID), types.BQDatasetID(datasetID), tblName, option.WithTokenSource(ts))).NoError(t)

	record := newSummaryRecord("s-impersonated")
	schema := gt.R1(bqs.Infer(record)).NoError(t)

	gt.NoError(t, client.CreateTable(ctx, &bigquery.TableMetadata{
		Name:   tblName.String(),
		Schema: schema,
	}))
	gt.NoError(t, client.Insert(ctx, schema, record))
}

func TestGetMetadataOfMissingTable(t *testing.T) {
	projectID := testutil.GetEnvOrSkip(t, "TEST_BIGQUERY_PROJECT_ID")
	datasetID := testutil.GetEnvOrSkip(t, "TEST_BIGQUERY_DATASET_ID")

	ctx := context.Background()
	client := gt.R1(bq.New(ctx, types.GoogleProjectID(projectID), types.BQDatasetID(datasetID), "non_existent_table_999999")).NoError(t)

	md, err := client.GetMetadata(ctx)
	gt.NoError(t, err)
	gt.True(t, md == nil)
}

func TestProtoFieldJSONName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "keeps valid names",
			input: "repository_id",
			want:  "repository_id",
		},
		{
			name:  "renames invalid names",
			input: "ruby-advisory-db",
			want:  "col_cnVieS1hZHZpc29yeS1kYg",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.V(t, bq.ProtoFieldJSONName(tc.input)).Equal(tc.want)
		})
	}
}

func TestSanitizeProtoJSON(t *testing.T) {
	raw := []byte(`{"counts":{"pull-request":3,"commit":2}}`)
	sanitized := gt.R1(bq.SanitizeProtoJSON(raw)).NoError(t)

	dec := json.NewDecoder(bytes.NewReader(sanitized))
	dec.UseNumber()
	payload := map[string]any{}
	gt.NoError(t, dec.Decode(&payload))

	counts, ok := payload["counts"].(map[string]any)
	gt.True(t, ok)

	_, renamed := counts[bq.ProtoFieldJSONName("pull-request")]
	gt.True(t, renamed)
	_, original := counts["pull-request"]
	gt.False(t, original)
	gt.V(t, counts["commit"]).Equal(json.Number("2"))
}

func TestIsSchemaNotFoundError(t *testing.T) {
	schemaMsg := "Input schema has more fields than BigQuery schema, extra fields: 'overview'"

	t.Run("detects gRPC InvalidArgument with schema mismatch message", func(t *testing.T) {
		gt.True(t, bq.IsSchemaNotFoundError(status.Error(codes.InvalidArgument, schemaMsg)))
	})

	t.Run("detects error wrapped by goerr", func(t *testing.T) {
		err := goerr.Wrap(goerr.Wrap(status.Error(codes.InvalidArgument, schemaMsg), "level 1"), "level 2")
		gt.True(t, bq.IsSchemaNotFoundError(err))
	})

	t.Run("ignores InvalidArgument with different message", func(t *testing.T) {
		gt.False(t, bq.IsSchemaNotFoundError(status.Error(codes.InvalidArgument, "Invalid request parameters")))
	})

	t.Run("ignores different gRPC code", func(t *testing.T) {
		gt.False(t, bq.IsSchemaNotFoundError(status.Error(codes.PermissionDenied, schemaMsg)))
	})

	t.Run("ignores non-gRPC error", func(t *testing.T) {
		gt.False(t, bq.IsSchemaNotFoundError(errors.New("some other error")))
		gt.False(t, bq.IsSchemaNotFoundError(nil))
	})
}
