package policy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/curesight/triage-platform/pkg/logging"
)

const (
	rulesDocKey   = "rules"
	contentDocKey = "content"
)

// ErrInvalidShape rejects saves whose payload fails structural validation.
// Shape only: callers holding an admin token are otherwise trusted.
var ErrInvalidShape = errors.New("policy: invalid document shape")

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type ruleItem struct {
	Doc      string   `dynamodbav:"doc"`
	RedFlags []string `dynamodbav:"red_flags"`
}

type contentItem struct {
	Doc       string `dynamodbav:"doc"`
	SelfCare  string `dynamodbav:"self_care"`
	Consult   string `dynamodbav:"consult"`
	Emergency string `dynamodbav:"emergency"`
}

// Store owns the mutable RuleSet and ContentSet documents. Reads serve a
// mutex-guarded cache backed by a DynamoDB config table; writes go through
// the store and are last-write-wins (single-admin usage, no optimistic
// locking).
type Store struct {
	client dynamoAPI
	table  string
	logger *logging.Logger

	mu      sync.Mutex
	rules   *RuleSet
	content *ContentSet
}

// NewStore builds a policy store over the given DynamoDB config table.
func NewStore(client dynamoAPI, table string, logger *logging.Logger) *Store {
	if client == nil {
		panic("policy: dynamodb client cannot be nil")
	}
	if table == "" {
		panic("policy: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{client: client, table: table, logger: logger}
}

// LoadRules returns the current red-flag rules, seeding the stored defaults
// on first load if the document is absent.
func (s *Store) LoadRules(ctx context.Context) (RuleSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rules != nil {
		return RuleSet{RedFlags: append([]string(nil), s.rules.RedFlags...)}, nil
	}

	item, err := s.getItem(ctx, rulesDocKey)
	if err != nil {
		return RuleSet{}, fmt.Errorf("policy: load rules: %w", err)
	}
	if item == nil {
		rs := DefaultRules()
		if err := s.putRulesLocked(ctx, rs); err != nil {
			return RuleSet{}, fmt.Errorf("policy: seed rules: %w", err)
		}
		s.logger.Info("policy: seeded default rules", "red_flags", len(rs.RedFlags))
		return RuleSet{RedFlags: append([]string(nil), rs.RedFlags...)}, nil
	}

	var ri ruleItem
	if err := attributevalue.UnmarshalMap(item, &ri); err != nil {
		return RuleSet{}, fmt.Errorf("policy: decode rules: %w", err)
	}
	rs := RuleSet{RedFlags: ri.RedFlags}
	s.rules = &RuleSet{RedFlags: append([]string(nil), rs.RedFlags...)}
	return rs, nil
}

// SaveRules replaces the red-flag rules. Last write wins.
func (s *Store) SaveRules(ctx context.Context, rs RuleSet) error {
	if rs.RedFlags == nil {
		return fmt.Errorf("%w: red_flags must be present", ErrInvalidShape)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.putRulesLocked(ctx, rs); err != nil {
		return fmt.Errorf("policy: save rules: %w", err)
	}
	return nil
}

// LoadContent returns the recommendation templates, seeding defaults on first
// load. Empty templates in a stored document fall back to the defaults.
func (s *Store) LoadContent(ctx context.Context) (ContentSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.content != nil {
		return *s.content, nil
	}

	item, err := s.getItem(ctx, contentDocKey)
	if err != nil {
		return ContentSet{}, fmt.Errorf("policy: load content: %w", err)
	}
	if item == nil {
		cs := DefaultContent()
		if err := s.putContentLocked(ctx, cs); err != nil {
			return ContentSet{}, fmt.Errorf("policy: seed content: %w", err)
		}
		s.logger.Info("policy: seeded default content")
		return cs, nil
	}

	var ci contentItem
	if err := attributevalue.UnmarshalMap(item, &ci); err != nil {
		return ContentSet{}, fmt.Errorf("policy: decode content: %w", err)
	}
	cs := ContentSet{SelfCare: ci.SelfCare, Consult: ci.Consult, Emergency: ci.Emergency}.Normalized()
	s.content = &cs
	return cs, nil
}

// SaveContent replaces the recommendation templates. All three must be
// non-empty.
func (s *Store) SaveContent(ctx context.Context, cs ContentSet) error {
	if cs.SelfCare == "" || cs.Consult == "" || cs.Emergency == "" {
		return fmt.Errorf("%w: self_care, consult and emergency templates are required", ErrInvalidShape)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.putContentLocked(ctx, cs); err != nil {
		return fmt.Errorf("policy: save content: %w", err)
	}
	return nil
}

func (s *Store) getItem(ctx context.Context, doc string) (map[string]types.AttributeValue, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"doc": &types.AttributeValueMemberS{Value: doc},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

func (s *Store) putRulesLocked(ctx context.Context, rs RuleSet) error {
	item, err := attributevalue.MarshalMap(ruleItem{Doc: rulesDocKey, RedFlags: rs.RedFlags})
	if err != nil {
		return err
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return err
	}
	s.rules = &RuleSet{RedFlags: append([]string(nil), rs.RedFlags...)}
	return nil
}

func (s *Store) putContentLocked(ctx context.Context, cs ContentSet) error {
	item, err := attributevalue.MarshalMap(contentItem{
		Doc:       contentDocKey,
		SelfCare:  cs.SelfCare,
		Consult:   cs.Consult,
		Emergency: cs.Emergency,
	})
	if err != nil {
		return err
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return err
	}
	s.content = &cs
	return nil
}
