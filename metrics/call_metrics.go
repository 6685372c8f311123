// Package metrics computes call-level talk metrics over a timeline.
package metrics

import (
	"math"
	"sort"

	"github.com/maastricht-university/call-auditor/timeline"
)

// minCallDuration keeps percentages finite for zero-length calls.
const minCallDuration = 1e-9

type CallMetrics struct {
	CallDuration    float64 `json:"call_duration"`
	SpeakingSeconds float64 `json:"speaking_seconds"`
	OvertalkSeconds float64 `json:"overtalk_seconds"`
	SilenceSeconds  float64 `json:"silence_seconds"`
	OvertalkPct     float64 `json:"overtalk_pct"`
	SilencePct      float64 `json:"silence_pct"`
}

// SpeakingOnlyPct is the share of the call with exactly one active speaker.
func (m CallMetrics) SpeakingOnlyPct() float64 {
	return math.Max(0, 100-m.OvertalkPct-m.SilencePct)
}

type edge struct {
	t     float64
	delta int
}

// Compute sweeps utterance start/end edges to measure speaking time,
// overtalk (two or more active speakers) and silence.
//
// Callers must supply End >= Start; the parser clamps such input.
// Edges are ordered by time only. Coincident edges contribute dt == 0,
// so their relative order does not affect the totals.
func Compute(tl timeline.Timeline) CallMetrics {
	if tl.Len() == 0 {
		return CallMetrics{}
	}

	edges := make([]edge, 0, 2*tl.Len())
	start, end := math.Inf(1), math.Inf(-1)
	for _, u := range tl.Utterances {
		edges = append(edges, edge{t: u.Start, delta: +1}, edge{t: u.End, delta: -1})
		start = math.Min(start, u.Start)
		end = math.Max(end, u.End)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].t < edges[j].t })

	var m CallMetrics
	m.SpeakingSeconds, m.OvertalkSeconds = sweep(edges)

	m.CallDuration = math.Max(minCallDuration, end-start)
	m.SilenceSeconds = math.Max(0, m.CallDuration-m.SpeakingSeconds)
	m.OvertalkPct = 100 * m.OvertalkSeconds / m.CallDuration
	m.SilencePct = 100 * m.SilenceSeconds / m.CallDuration
	return m
}

func sweep(edges []edge) (speaking, overtalk float64) {
	active := 0
	last := edges[0].t
	for _, e := range edges {
		dt := e.t - last
		if active > 0 {
			speaking += dt
		}
		if active > 1 {
			overtalk += dt
		}
		active += e.delta
		last = e.t
	}
	return speaking, overtalk
}

// Malformed counts utterances that ended before they started.
func Malformed(tl timeline.Timeline) int {
	n := 0
	for _, u := range tl.Utterances {
		if u.End < u.Start {
			n++
		}
	}
	return n
}
