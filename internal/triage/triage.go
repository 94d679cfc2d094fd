package triage

import (
	"context"
	"fmt"
	"strings"

	"github.com/curesight/triage-platform/internal/policy"
	"github.com/curesight/triage-platform/pkg/logging"
)

// Category is the lexical symptom grouping assigned to an analysis.
type Category string

const (
	CategoryGeneral     Category = "general"
	CategoryRespiratory Category = "respiratory"
	CategoryCardiac     Category = "cardiac"
	CategoryDermatology Category = "dermatology"
)

// Severity escalates from low through emergency. Emergency is only reachable
// through a red-flag override.
type Severity string

const (
	SeverityLow       Severity = "low"
	SeverityMedium    Severity = "medium"
	SeverityHigh      Severity = "high"
	SeverityEmergency Severity = "emergency"
)

// Classification is the immutable result of one analysis.
type Classification struct {
	Category       Category `json:"category"`
	Severity       Severity `json:"severity"`
	Recommendation string   `json:"recommendation"`
	Reason         string   `json:"reason,omitempty"`
}

// Category keyword groups, checked in order with last match winning: text
// carrying both respiratory and dermatology terms classifies dermatology.
var (
	respiratoryTerms = []string{"fever", "cold", "cough", "sore throat"}
	cardiacTerms     = []string{"chest", "heart", "palpitation"}
	dermatologyTerms = []string{"rash", "itch", "allergy"}
)

// Severity term sets. Both checks run unconditionally: high is reachable even
// when no medium term matched.
var (
	mediumTerms = []string{"moderate", "severe", "high", "intense", "cannot sleep"}
	highTerms   = []string{"unbearable", "fainted", "bleeding", "blue lips", "not breathing"}
)

// PolicySource supplies the mutable rule and content documents read on every
// classification.
type PolicySource interface {
	LoadRules(ctx context.Context) (policy.RuleSet, error)
	LoadContent(ctx context.Context) (policy.ContentSet, error)
}

// Engine combines lexical category detection, severity scoring and red-flag
// override into a classification.
type Engine struct {
	policies PolicySource
	logger   *logging.Logger
}

// NewEngine builds a triage engine reading rules and content from the given
// source.
func NewEngine(policies PolicySource, logger *logging.Logger) *Engine {
	if policies == nil {
		panic("triage: policy source cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{policies: policies, logger: logger}
}

// Classify analyzes lower-cased input text against the current rule and
// content documents. It never fails for well-formed text; the only error
// source is an unloadable policy document.
func (e *Engine) Classify(ctx context.Context, text string) (Classification, error) {
	content, err := e.policies.LoadContent(ctx)
	if err != nil {
		return Classification{}, fmt.Errorf("triage: load content: %w", err)
	}
	rules, err := e.policies.LoadRules(ctx)
	if err != nil {
		return Classification{}, fmt.Errorf("triage: load rules: %w", err)
	}

	t := strings.ToLower(text)

	category := CategoryGeneral
	if containsAny(t, respiratoryTerms) {
		category = CategoryRespiratory
	}
	if containsAny(t, cardiacTerms) {
		category = CategoryCardiac
	}
	if containsAny(t, dermatologyTerms) {
		category = CategoryDermatology
	}

	severity := SeverityLow
	if containsAny(t, mediumTerms) {
		severity = SeverityMedium
	}
	if containsAny(t, highTerms) {
		severity = SeverityHigh
	}

	recommendation := content.Consult
	if severity == SeverityLow {
		recommendation = content.SelfCare
	}

	result := Classification{
		Category:       category,
		Severity:       severity,
		Recommendation: recommendation,
	}

	// Red-flag override: first stored phrase found wins, rest are skipped.
	for _, flag := range rules.RedFlags {
		if flag == "" {
			continue
		}
		if strings.Contains(t, strings.ToLower(flag)) {
			result.Severity = SeverityEmergency
			result.Recommendation = content.Emergency
			result.Reason = fmt.Sprintf("Red flag triggered: %s", flag)
			break
		}
	}

	return result, nil
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
