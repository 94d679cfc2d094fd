package redact

import "regexp"

// Placeholder tokens substituted for scrubbed PII. None of them re-match any
// of the redaction patterns, so Redact is idempotent.
const (
	EmailPlaceholder      = "[email removed]"
	PhonePlaceholder      = "[phone removed]"
	AddressPlaceholder    = "[address removed]"
	DOBPlaceholder        = "[dob removed]"
	IdentifierPlaceholder = "[identifier removed]"
)

// Pattern names used for counting, in application order.
const (
	PatternEmail      = "email"
	PatternPhone      = "phone"
	PatternAddress    = "address"
	PatternDOB        = "dob"
	PatternIdentifier = "identifier"
)

var (
	emailRE = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRE = regexp.MustCompile(`\+?\d[\d\-\s]{7,}\d`)
	// Address keyword and everything after it on the same line.
	addressRE = regexp.MustCompile(`(?i)\b(Street|St\.|Avenue|Ave\.|Road|Rd\.|Block|Apartment|Apt\.|PO Box)\b.*`)
	dobRE     = regexp.MustCompile(`(?i)\b(DOB|D\.O\.B|Date of Birth)[:\- ]*\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}`)
	// The value match stops at '[' so placeholders already substituted on the
	// same line survive the identifier pass.
	identifierRE = regexp.MustCompile(`(?i)\b(Patient Name|Name|Guardian|Age|Sex|MRN|UHID|ID)[: ]+[^\[\n]+`)
)

type pass struct {
	name        string
	re          *regexp.Regexp
	placeholder string
}

// Order matters: emails before phones (digits inside addresses), line-level
// address and DOB labels before the identifier catch-all.
var passes = []pass{
	{PatternEmail, emailRE, EmailPlaceholder},
	{PatternPhone, phoneRE, PhonePlaceholder},
	{PatternAddress, addressRE, AddressPlaceholder},
	{PatternDOB, dobRE, DOBPlaceholder},
	{PatternIdentifier, identifierRE, IdentifierPlaceholder},
}

// Redact scrubs emails, phone numbers, address fragments, dates of birth and
// labeled identifier fields from free text, replacing each match with a fixed
// placeholder. It is a pure function and total: text without matches passes
// through unchanged.
func Redact(text string) string {
	out, _ := RedactCounted(text)
	return out
}

// RedactCounted is Redact plus a per-pattern count of substitutions, for
// metrics.
func RedactCounted(text string) (string, map[string]int) {
	counts := make(map[string]int, len(passes))
	for _, p := range passes {
		n := 0
		text = p.re.ReplaceAllStringFunc(text, func(string) string {
			n++
			return p.placeholder
		})
		if n > 0 {
			counts[p.name] = n
		}
	}
	return text, counts
}
