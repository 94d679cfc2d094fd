package policy

// RuleSet is the ordered list of red-flag phrases. The first phrase found in
// an input (case-insensitive substring) forces an emergency classification.
type RuleSet struct {
	RedFlags []string `json:"red_flags"`
}

// ContentSet holds the three recommendation templates returned by triage.
type ContentSet struct {
	SelfCare  string `json:"self_care"`
	Consult   string `json:"consult"`
	Emergency string `json:"emergency"`
}

// DefaultRules returns the seed red-flag phrases written on first run.
func DefaultRules() RuleSet {
	return RuleSet{RedFlags: []string{
		"chest pain", "shortness of breath", "loss of consciousness", "severe bleeding",
		"stroke", "suicidal", "anaphylaxis", "blue lips", "severe allergic", "poison",
	}}
}

// DefaultContent returns the seed recommendation templates.
func DefaultContent() ContentSet {
	return ContentSet{
		SelfCare:  "Based on your symptoms, home care may be sufficient. Rest, hydrate, and monitor your symptoms.",
		Consult:   "Please consult a qualified healthcare professional for evaluation within 24-48 hours.",
		Emergency: "This may be an emergency. Seek immediate medical attention or call local emergency services.",
	}
}

// Normalized fills any empty template from the defaults. A blank template is
// a configuration error; falling back keeps triage total.
func (c ContentSet) Normalized() ContentSet {
	def := DefaultContent()
	if c.SelfCare == "" {
		c.SelfCare = def.SelfCare
	}
	if c.Consult == "" {
		c.Consult = def.Consult
	}
	if c.Emergency == "" {
		c.Emergency = def.Emergency
	}
	return c
}
