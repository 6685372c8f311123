package orchestrator

import (
	"time"

	"github.com/maastricht-university/call-auditor/metrics"
)

type Issue string

const (
	IssueProfanity Issue = "profanity"
	IssuePrivacy   Issue = "privacy"
)

// Flag is one exported finding on one utterance.
type Flag struct {
	CallID      string   `json:"call_id"`
	UtteranceID int      `json:"utterance_id"`
	Speaker     string   `json:"speaker"`
	Role        string   `json:"role"`
	Text        string   `json:"text"`
	Issue       Issue    `json:"issue"`
	Start       float64  `json:"stime"`
	End         float64  `json:"etime"`
	Probability *float64 `json:"prob,omitempty"`
}

type CallRow struct {
	CallID     string `json:"call_id"`
	Utterances int    `json:"utterances"`
	Malformed  int    `json:"malformed_intervals,omitempty"`
	metrics.CallMetrics
}

// Report is the result of one batch run.
type Report struct {
	RunID       string    `json:"run_id"`
	Folder      string    `json:"folder"`
	GeneratedAt time.Time `json:"generated_at"`
	Calls       []CallRow `json:"calls"`
	Flags       []Flag    `json:"flags"`
}

// Count returns the number of flags with the given issue.
func (r *Report) Count(issue Issue) int {
	n := 0
	for _, f := range r.Flags {
		if f.Issue == issue {
			n++
		}
	}
	return n
}
