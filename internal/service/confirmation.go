package service

import "strings"

// ConfirmationDetector decides whether a text turn accepts the pending plan.
// It is a plain substring match over an ordered keyword list, so negations
// such as "nicht ok" still confirm.
type ConfirmationDetector struct {
	keywords []string
}

// NewConfirmationDetector builds a detector; keywords are matched lower-cased.
func NewConfirmationDetector(keywords []string) *ConfirmationDetector {
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			normalized = append(normalized, k)
		}
	}
	return &ConfirmationDetector{keywords: normalized}
}

// Match returns the first keyword contained in text.
func (d *ConfirmationDetector) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, k := range d.keywords {
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}

// Confirms reports whether text contains any affirmation keyword.
func (d *ConfirmationDetector) Confirms(text string) bool {
	_, ok := d.Match(text)
	return ok
}
