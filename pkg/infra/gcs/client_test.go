package gcs_test

import (
	"context"
	"io"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/infra/gcs"
	"github.com/secmon-lab/ghdigest/pkg/utils/safe"
	"github.com/secmon-lab/ghdigest/pkg/utils/testutil"
)

func TestNewRequiresBucket(t *testing.T) {
	_, err := gcs.New(context.Background(), "", "prefix")
	gt.Error(t, err)
}

func TestPutObject(t *testing.T) {
	bucket := testutil.GetEnvOrSkip(t, "TEST_GCS_BUCKET")

	ctx := context.Background()
	prefix := types.GCSPrefix(time.Now().Format("test/20060102_150405"))
	client := gt.R1(gcs.New(ctx, types.GCSBucket(bucket), prefix)).NoError(t)
	defer safe.Close(client)

	data := []byte(`{"overview":"hello"}`)
	gt.NoError(t, client.PutObject(ctx, "summaries/alice/2024-W07.json", data, "application/json"))

	sc := gt.R1(storage.NewClient(ctx)).NoError(t)
	defer safe.Close(sc)

	r := gt.R1(sc.Bucket(bucket).Object(client.ObjectName("summaries/alice/2024-W07.json")).NewReader(ctx)).NoError(t)
	defer safe.Close(r)
	got := gt.R1(io.ReadAll(r)).NoError(t)
	gt.V(t, string(got)).Equal(string(data))
}
