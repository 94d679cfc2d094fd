package relevance

import "strings"

// fallbackLines bounds the output when no line carries medical vocabulary, so
// downstream triage always receives some signal.
const fallbackLines = 10

// Medical-vocabulary tokens: dosage units, frequency abbreviations and common
// clinical terms. Matched as lower-cased substrings per line.
var keywords = []string{
	"tab", "tablet", "cap", "capsule", "syrup", "ml", "mg", "mcg",
	"bid", "tid", "qid", "od",
	"diagnosis", "dx", "rx", "bp", "hr", "temp",
	"fever", "cough", "pain", "infection", "asthma", "diabetes",
}

// Filter keeps, in original order, every non-empty trimmed line containing at
// least one medical-vocabulary token. When no line qualifies it returns the
// first ten non-empty lines unfiltered. Pure and deterministic; never returns
// an empty string for input with at least one non-empty line.
func Filter(text string) string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	var kept []string
	for _, l := range lines {
		lower := strings.ToLower(l)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				kept = append(kept, l)
				break
			}
		}
	}

	if len(kept) == 0 {
		kept = lines
		if len(kept) > fallbackLines {
			kept = kept[:fallbackLines]
		}
	}
	return strings.Join(kept, "\n")
}
