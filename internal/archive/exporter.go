package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/curesight/triage-platform/internal/queries"
	"github.com/curesight/triage-platform/pkg/logging"
)

// S3Client interface for S3 operations (allows mocking in tests)
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// QuerySource supplies the records to export. Records are already
// PII-redacted before they reach the query store.
type QuerySource interface {
	ListRecent(ctx context.Context, limit int) ([]queries.Record, error)
}

// Exporter writes recent query records to S3 as JSONL for offline review.
type Exporter struct {
	source QuerySource
	s3     S3Client
	bucket string
	logger *logging.Logger
}

// ExportResult summarizes one export run.
type ExportResult struct {
	RecordsExported int    `json:"records_exported"`
	S3Key           string `json:"s3_key"`
	BytesWritten    int64  `json:"bytes_written"`
}

// NewExporter builds an exporter targeting the given bucket.
func NewExporter(source QuerySource, client S3Client, bucket string, logger *logging.Logger) *Exporter {
	if source == nil {
		panic("archive: query source cannot be nil")
	}
	if client == nil {
		panic("archive: s3 client cannot be nil")
	}
	if bucket == "" {
		panic("archive: bucket cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Exporter{source: source, s3: client, bucket: bucket, logger: logger}
}

// ExportRecent uploads up to limit recent records under a dated key.
func (e *Exporter) ExportRecent(ctx context.Context, limit int) (*ExportResult, error) {
	records, err := e.source.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: list records: %w", err)
	}
	if len(records) == 0 {
		e.logger.Info("archive: no records to export")
		return &ExportResult{}, nil
	}

	var buf bytes.Buffer
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			e.logger.Warn("archive: failed to marshal record", "error", err, "query_id", rec.ID)
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("queries/archive/%d/%02d/%02d/export_%s.jsonl",
		now.Year(), now.Month(), now.Day(), now.Format("20060102T150405Z"))

	if _, err := e.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
		Metadata: map[string]string{
			"record_count": fmt.Sprintf("%d", len(records)),
		},
	}); err != nil {
		return nil, fmt.Errorf("archive: s3 upload failed: %w", err)
	}

	e.logger.Info("archive: exported query records",
		"records", len(records),
		"s3_key", key,
	)

	return &ExportResult{
		RecordsExported: len(records),
		S3Key:           key,
		BytesWritten:    int64(buf.Len()),
	}, nil
}
