package gcs

import (
	"context"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/utils/safe"
	"google.golang.org/api/option"
)

// Client archives objects under gs://{bucket}/{prefix}/
type Client struct {
	client *storage.Client
	bucket types.GCSBucket
	prefix types.GCSPrefix
}

var _ interfaces.Storage = (*Client)(nil)

func New(ctx context.Context, bucket types.GCSBucket, prefix types.GCSPrefix, options ...option.ClientOption) (*Client, error) {
	if bucket == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "GCS bucket is empty")
	}

	client, err := storage.NewClient(ctx, options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GCS client", goerr.V("bucket", bucket))
	}

	return &Client{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// ObjectName returns the object name of p with the configured prefix
func (x *Client) ObjectName(p string) string {
	if x.prefix == "" {
		return p
	}
	return path.Join(x.prefix.String(), p)
}

// PutObject implements interfaces.Storage.
func (x *Client) PutObject(ctx context.Context, p string, data []byte, contentType string) error {
	name := x.ObjectName(p)
	w := x.client.Bucket(x.bucket.String()).Object(name).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		safe.Close(w)
		return goerr.Wrap(err, "failed to write object", goerr.V("bucket", x.bucket), goerr.V("object", name))
	}
	// the upload is committed by Close
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to close object writer", goerr.V("bucket", x.bucket), goerr.V("object", name))
	}
	return nil
}

func (x *Client) Close() error {
	return x.client.Close()
}
