package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghdigest/pkg/repository/postgres"
	"github.com/secmon-lab/ghdigest/pkg/repository/testhelper"
	"github.com/secmon-lab/ghdigest/pkg/utils/testutil"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupDatabase(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ghdigest"),
		tcpostgres.WithUsername("ghdigest"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	gt.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	gt.NoError(t, err)
	return dsn
}

func TestPostgresDigestRepository(t *testing.T) {
	testutil.SkipIfShort(t)
	// containers need a Docker daemon
	testutil.GetEnvOrSkip(t, "TEST_POSTGRES_CONTAINER")

	ctx := context.Background()
	dsn := setupDatabase(ctx, t)

	gt.NoError(t, postgres.Migrate(ctx, dsn))
	// migrating twice is a no-op
	gt.NoError(t, postgres.Migrate(ctx, dsn))

	client, err := postgres.New(ctx, dsn)
	gt.NoError(t, err)
	defer client.Close()

	testhelper.TestAll(t, client)
}

func TestPostgresExternalDatabase(t *testing.T) {
	dsn := testutil.GetEnvOrSkip(t, "TEST_POSTGRES_DSN")

	ctx := context.Background()
	gt.NoError(t, postgres.Migrate(ctx, dsn))

	client, err := postgres.New(ctx, dsn)
	gt.NoError(t, err)
	defer client.Close()

	testhelper.TestAll(t, client)
}
