package config

import (
	"context"
	"log/slog"

	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/infra/gcs"
	"github.com/urfave/cli/v3"
)

type Storage struct {
	bucket types.GCSBucket
	prefix types.GCSPrefix
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Cloud Storage bucket to archive summaries",
			Category:    "Storage",
			Destination: (*string)(&x.bucket),
			Sources:     cli.EnvVars("GHDIGEST_STORAGE_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Usage:       "Object prefix of archived summaries",
			Category:    "Storage",
			Destination: (*string)(&x.prefix),
			Sources:     cli.EnvVars("GHDIGEST_STORAGE_PREFIX"),
		},
	}
}

func (x *Storage) Enabled() bool { return x.bucket != "" }

// NewClient returns nil without error when no bucket is set
func (x *Storage) NewClient(ctx context.Context) (interfaces.Storage, error) {
	if !x.Enabled() {
		return nil, nil
	}

	client, err := gcs.New(ctx, x.bucket, x.prefix)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("Bucket", x.bucket),
		slog.Any("Prefix", x.prefix),
	)
}
