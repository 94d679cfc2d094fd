package queries

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/curesight/triage-platform/internal/triage"
	"github.com/curesight/triage-platform/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Record is the persisted trace of one analysis. Symptom and OCR text are
// stored post-redaction only; raw input never reaches this table.
type Record struct {
	ID           string                `dynamodbav:"queryId" json:"query_id"`
	InputType    string                `dynamodbav:"inputType" json:"input_type"`
	Language     string                `dynamodbav:"language" json:"language"`
	SymptomText  string                `dynamodbav:"symptomText,omitempty" json:"symptom_text,omitempty"`
	OCRText      string                `dynamodbav:"ocrText,omitempty" json:"ocr_text,omitempty"`
	CombinedText string                `dynamodbav:"combinedText" json:"combined_text"`
	Analysis     triage.Classification `dynamodbav:"analysis" json:"analysis"`
	CreatedAt    string                `dynamodbav:"createdAt" json:"created_at"`
}

// Outcome distinguishes "classified, recorded" from "classified, not
// recorded". Record never fails the caller: persistence errors are captured
// here and logged, not propagated.
type Outcome struct {
	QueryID  string
	Recorded bool
	Err      error
}

// Store persists query records to DynamoDB, best effort.
type Store struct {
	client dynamoAPI
	table  string
	logger *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, table string, logger *logging.Logger) *Store {
	if client == nil {
		panic("queries: dynamodb client cannot be nil")
	}
	if table == "" {
		panic("queries: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{client: client, table: table, logger: logger}
}

// Record assigns an id and timestamp and writes the record. A storage
// failure degrades to an unrecorded outcome.
func (s *Store) Record(ctx context.Context, rec *Record) Outcome {
	if rec == nil {
		return Outcome{Err: fmt.Errorf("queries: record cannot be nil")}
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		s.logger.Warn("queries: failed to marshal record", "error", err)
		return Outcome{Err: err}
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		s.logger.Warn("queries: failed to persist record", "error", err, "query_id", rec.ID)
		return Outcome{Err: err}
	}
	return Outcome{QueryID: rec.ID, Recorded: true}
}

// ListRecent returns up to limit records, newest first. The admin log view is
// small, so a table scan sorted in memory is acceptable here.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return nil, fmt.Errorf("queries: scan records: %w", err)
	}

	var records []Record
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, fmt.Errorf("queries: decode records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})
	if len(records) > limit {
		records = records[:limit]
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
