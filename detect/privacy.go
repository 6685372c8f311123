// Package detect holds the compliance detectors that run over a call
// timeline: privacy disclosures, profanity, and the external classifiers.
package detect

import (
	"regexp"
	"strings"

	"github.com/maastricht-university/call-auditor/timeline"
)

// DefaultWindow is the number of preceding utterances searched for a
// verification exchange.
const DefaultWindow = 6

var (
	sensitivePattern = regexp.MustCompile(`(?i)\b(balance|available balance|amount due|outstanding|account number|acct no|card number|payment due|routing number|bank account)\b|\$\s*\d+|\b\d{6,}\b`)
	verifyPattern    = regexp.MustCompile(`(?i)\b(date of birth|dob|ssn|social security|last 4|verify|confirm|address|pin|cvv)\b`)
)

// Violation is an agent utterance that disclosed sensitive data without
// a recent identity check.
type Violation struct {
	CallID      string  `json:"call_id"`
	UtteranceID int     `json:"utterance_id"`
	Speaker     string  `json:"speaker"`
	Text        string  `json:"text"`
	Start       float64 `json:"stime"`
}

// Privacy flags sensitive disclosures. The compiled patterns are read-only
// and a single Privacy may be shared across goroutines.
type Privacy struct {
	sensitive *regexp.Regexp
	verify    *regexp.Regexp
	window    int
}

// NewPrivacy returns a detector looking back over window utterances.
// Non-positive window falls back to DefaultWindow.
func NewPrivacy(window int) *Privacy {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Privacy{sensitive: sensitivePattern, verify: verifyPattern, window: window}
}

func (p *Privacy) Window() int { return p.window }

// Sensitive reports whether text mentions regulated account data.
func (p *Privacy) Sensitive(text string) bool { return p.sensitive.MatchString(text) }

// Verified reports whether text contains an identity verification phrase.
func (p *Privacy) Verified(text string) bool { return p.verify.MatchString(text) }

// Detect scans agent utterances in timeline order.
func (p *Privacy) Detect(tl timeline.Timeline) []Violation {
	var out []Violation
	utts := tl.Utterances
	for i, u := range utts {
		if !u.IsAgent() || !p.Sensitive(u.Text) {
			continue
		}
		if p.Verified(p.context(utts, i)) {
			continue
		}
		out = append(out, Violation{
			CallID:      u.CallID,
			UtteranceID: u.UtteranceID,
			Speaker:     u.Speaker,
			Text:        u.Text,
			Start:       u.Start,
		})
	}
	return out
}

// context joins the texts of utts[max(0,i-window):i].
func (p *Privacy) context(utts []timeline.Utterance, i int) string {
	lo := i - p.window
	if lo < 0 {
		lo = 0
	}
	parts := make([]string, 0, i-lo)
	for _, u := range utts[lo:i] {
		parts = append(parts, u.Text)
	}
	return strings.Join(parts, " ")
}
