package timeline

import (
	"math"
	"sort"
	"strings"
)

// Utterance is one timestamped speech segment of one speaker.
type Utterance struct {
	CallID      string  `json:"call_id" yaml:"call_id"`
	UtteranceID int     `json:"utterance_id" yaml:"utterance_id"`
	Speaker     string  `json:"speaker" yaml:"speaker"`
	Text        string  `json:"text" yaml:"text"`
	Start       float64 `json:"stime" yaml:"stime"` // sec
	End         float64 `json:"etime" yaml:"etime"` // sec
}

// Duration is End-Start, clamped at zero when End < Start.
func (u Utterance) Duration() float64 { return math.Max(0, u.End-u.Start) }

// IsAgent reports whether the speaker label names an agent.
func (u Utterance) IsAgent() bool { return strings.Contains(strings.ToLower(u.Speaker), "agent") }

const (
	RoleAgent    = "agent"
	RoleBorrower = "borrower"
)

// RoleOf maps a free-text speaker label to agent or borrower.
func RoleOf(speaker string) string {
	if strings.Contains(strings.ToLower(speaker), "agent") {
		return RoleAgent
	}
	return RoleBorrower
}

// Timeline is the ordered utterance sequence of a single call.
// Utterances are sorted by Start, ties kept in input order.
type Timeline struct {
	CallID     string
	Utterances []Utterance
}

// New copies utts and stable-sorts them by start time.
func New(callID string, utts []Utterance) Timeline {
	cp := make([]Utterance, len(utts))
	copy(cp, utts)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Start < cp[j].Start })
	return Timeline{CallID: callID, Utterances: cp}
}

func (t Timeline) Len() int { return len(t.Utterances) }

// Texts returns utterance texts in timeline order.
func (t Timeline) Texts() []string {
	out := make([]string, len(t.Utterances))
	for i, u := range t.Utterances {
		out[i] = u.Text
	}
	return out
}
