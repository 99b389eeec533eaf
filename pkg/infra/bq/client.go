package bq

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/bigquery/storage/managedwriter"
	"cloud.google.com/go/bigquery/storage/managedwriter/adapt"
	"github.com/cenkalti/backoff/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
	"github.com/secmon-lab/ghdigest/pkg/utils/safe"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

type Client struct {
	bqClient *bigquery.Client
	mwClient *managedwriter.Client
	project  string
	dataset  string
	tableID  types.BQTableID
}

var _ interfaces.BigQuery = (*Client)(nil)

// A schema update takes up to a minute to reach the storage write API
const (
	schemaRetryInterval = 5 * time.Second
	schemaRetryMax      = 12
)

func New(ctx context.Context, projectID types.GoogleProjectID, datasetID types.BQDatasetID, tableID types.BQTableID, options ...option.ClientOption) (*Client, error) {
	mwClient, err := managedwriter.NewClient(ctx, projectID.String(), options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create bigquery client", goerr.V("projectID", projectID))
	}

	bqClient, err := bigquery.NewClient(ctx, string(projectID), options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client", goerr.V("projectID", projectID))
	}

	return &Client{
		bqClient: bqClient,
		mwClient: mwClient,
		project:  projectID.String(),
		dataset:  datasetID.String(),
		tableID:  tableID,
	}, nil
}

// CreateTable implements interfaces.BigQuery.
func (x *Client) CreateTable(ctx context.Context, md *bigquery.TableMetadata) error {
	if err := x.bqClient.Dataset(x.dataset).Table(x.tableID.String()).Create(ctx, md); err != nil {
		return goerr.Wrap(err, "failed to create table", goerr.V("dataset", x.dataset), goerr.V("table", x.tableID))
	}
	return nil
}

// GetMetadata implements interfaces.BigQuery. If the table does not exist, it returns nil.
func (x *Client) GetMetadata(ctx context.Context) (*bigquery.TableMetadata, error) {
	md, err := x.bqClient.Dataset(x.dataset).Table(x.tableID.String()).Metadata(ctx)
	if err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) && gErr.Code == 404 {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get table metadata", goerr.V("dataset", x.dataset), goerr.V("table", x.tableID))
	}

	return md, nil
}

// UpdateTable implements interfaces.BigQuery.
func (x *Client) UpdateTable(ctx context.Context, md bigquery.TableMetadataToUpdate, eTag string) error {
	if _, err := x.bqClient.Dataset(x.dataset).Table(x.tableID.String()).Update(ctx, md, eTag); err != nil {
		return goerr.Wrap(err, "failed to update table", goerr.V("dataset", x.dataset), goerr.V("table", x.tableID), goerr.V("meta", md))
	}

	return nil
}

// Insert implements interfaces.BigQuery. All rows are appended in one request.
// When the table schema was just extended the write API may still reject new
// fields for a while, so such an insert is retried.
func (x *Client) Insert(ctx context.Context, schema bigquery.Schema, data ...any) error {
	if len(data) == 0 {
		return nil
	}

	convertedSchema, err := adapt.BQSchemaToStorageTableSchema(schema)
	if err != nil {
		return goerr.Wrap(err, "failed to convert schema")
	}

	descriptor, err := adapt.StorageSchemaToProto2Descriptor(convertedSchema, "root")
	if err != nil {
		return goerr.Wrap(err, "failed to convert schema to descriptor")
	}
	messageDescriptor, ok := descriptor.(protoreflect.MessageDescriptor)
	if !ok {
		return goerr.New("adapted descriptor is not a message descriptor")
	}
	descriptorProto, err := adapt.NormalizeDescriptor(messageDescriptor)
	if err != nil {
		return goerr.Wrap(err, "failed to normalize descriptor")
	}

	rows := make([][]byte, 0, len(data))
	for _, v := range data {
		b, err := encodeRow(messageDescriptor, v)
		if err != nil {
			return err
		}
		rows = append(rows, b)
	}

	appendRows := func() error {
		err := x.appendRows(ctx, descriptorProto, rows)
		if err != nil && !IsSchemaNotFoundError(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(schemaRetryInterval), schemaRetryMax)
	notify := func(err error, d time.Duration) {
		logging.From(ctx).Info("table schema is not propagated yet, retrying insert",
			"table", x.tableID,
			"wait", d,
		)
	}
	if err := backoff.RetryNotify(appendRows, backoff.WithContext(b, ctx), notify); err != nil {
		return goerr.Wrap(err, "failed to insert rows",
			goerr.V("table", x.tableID),
			goerr.V("rows", len(rows)),
		)
	}

	return nil
}

func (x *Client) appendRows(ctx context.Context, descriptorProto *descriptorpb.DescriptorProto, rows [][]byte) error {
	ms, err := x.mwClient.NewManagedStream(ctx,
		managedwriter.WithDestinationTable(
			managedwriter.TableParentFromParts(
				x.project,
				x.dataset,
				x.tableID.String(),
			),
		),
		managedwriter.WithSchemaDescriptor(descriptorProto),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create managed stream")
	}
	defer safe.Close(ms)

	arResult, err := ms.AppendRows(ctx, rows)
	if err != nil {
		return goerr.Wrap(err, "failed to append rows")
	}

	if _, err := arResult.FullResponse(ctx); err != nil {
		return goerr.Wrap(err, "failed to get append result")
	}
	return nil
}

func encodeRow(md protoreflect.MessageDescriptor, data any) ([]byte, error) {
	message := dynamicpb.NewMessage(md)

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to Marshal json message", goerr.V("v", data))
	}
	sanitizedRaw, err := sanitizeProtoJSON(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sanitize json message", goerr.V("raw", string(raw)))
	}

	// json -> proto message -> bytes
	if err := protojson.Unmarshal(sanitizedRaw, message); err != nil {
		return nil, goerr.Wrap(err, "failed to Unmarshal json message", goerr.V("raw", string(raw)))
	}
	b, err := proto.Marshal(message)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to Marshal proto message")
	}
	return b, nil
}

// IsSchemaNotFoundError reports whether the write API rejected a row because
// the stream does not know the table's newest columns yet.
func IsSchemaNotFoundError(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		st, ok := status.FromError(e)
		if !ok {
			continue
		}
		if st.Code() == codes.InvalidArgument && strings.Contains(st.Message(), "Input schema has more fields than BigQuery schema") {
			return true
		}
	}
	return false
}

func sanitizeProtoJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}

	buf, err := json.Marshal(sanitizeProtoJSONValue(data))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func sanitizeProtoJSONValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		res := make(map[string]any, len(val))
		for key, value := range val {
			res[protoFieldJSONName(key)] = sanitizeProtoJSONValue(value)
		}
		return res
	case []any:
		for i := range val {
			val[i] = sanitizeProtoJSONValue(val[i])
		}
		return val
	default:
		return v
	}
}

// protoFieldJSONName maps a key that is not a valid proto field name to a
// stable encoded one
func protoFieldJSONName(name string) string {
	if protoreflect.Name(name).IsValid() {
		return name
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(name))
	encoded = strings.NewReplacer("+", "_", "/", "_", "=", "").Replace(encoded)
	return "col_" + encoded
}
