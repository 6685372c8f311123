package metrics

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/call-auditor/timeline"
)

const eps = 1e-9

func tl(spans ...[2]float64) timeline.Timeline {
	utts := make([]timeline.Utterance, 0, len(spans))
	for i, s := range spans {
		utts = append(utts, timeline.Utterance{UtteranceID: i, Start: s[0], End: s[1]})
	}
	return timeline.New("c", utts)
}

func TestComputeEmpty(t *testing.T) {
	assert.Equal(t, CallMetrics{}, Compute(timeline.New("c", nil)))
}

func TestComputeSingle(t *testing.T) {
	m := Compute(tl([2]float64{0, 5}))
	assert.InDelta(t, 5, m.CallDuration, eps)
	assert.InDelta(t, 5, m.SpeakingSeconds, eps)
	assert.Zero(t, m.OvertalkSeconds)
	assert.Zero(t, m.SilenceSeconds)
	assert.InDelta(t, 100, m.SpeakingOnlyPct(), eps)
}

func TestComputeFullOverlap(t *testing.T) {
	m := Compute(tl([2]float64{0, 10}, [2]float64{0, 10}))
	assert.InDelta(t, 10, m.CallDuration, eps)
	assert.InDelta(t, 10, m.OvertalkSeconds, eps)
	assert.Zero(t, m.SilenceSeconds)
	assert.InDelta(t, 100, m.OvertalkPct, eps)
}

func TestComputeDisjoint(t *testing.T) {
	m := Compute(tl([2]float64{0, 5}, [2]float64{10, 15}))
	assert.InDelta(t, 15, m.CallDuration, eps)
	assert.InDelta(t, 10, m.SpeakingSeconds, eps)
	assert.InDelta(t, 5, m.SilenceSeconds, eps)
	assert.InDelta(t, 100.0/3, m.SilencePct, 1e-6)
}

func TestComputePartialOverlap(t *testing.T) {
	m := Compute(tl([2]float64{0, 6}, [2]float64{4, 10}, [2]float64{5, 7}))
	assert.InDelta(t, 10, m.SpeakingSeconds, eps)
	// [4,6] has 2+ speakers, plus [6,7] with two active.
	assert.InDelta(t, 3, m.OvertalkSeconds, eps)
	assert.Zero(t, m.SilenceSeconds)
}

func TestComputeZeroLengthCall(t *testing.T) {
	m := Compute(tl([2]float64{3, 3}))
	assert.Equal(t, minCallDuration, m.CallDuration)
	assert.Zero(t, m.OvertalkPct)
	assert.Zero(t, m.SpeakingSeconds)
}

func TestComputeIdempotent(t *testing.T) {
	in := tl([2]float64{0, 4}, [2]float64{2, 9}, [2]float64{12, 13})
	assert.Equal(t, Compute(in), Compute(in))
}

func randomTimeline(r *rand.Rand) timeline.Timeline {
	n := 1 + r.Intn(12)
	spans := make([][2]float64, n)
	for i := range spans {
		// integer grid makes coincident edges common
		s := float64(r.Intn(20))
		spans[i] = [2]float64{s, s + float64(r.Intn(8))}
	}
	return tl(spans...)
}

func TestComputeInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		m := Compute(randomTimeline(r))
		require.GreaterOrEqual(t, m.OvertalkSeconds, 0.0)
		require.LessOrEqual(t, m.OvertalkSeconds, m.SpeakingSeconds+eps)
		require.LessOrEqual(t, m.SpeakingSeconds, m.CallDuration+eps)
		require.LessOrEqual(t, m.OvertalkPct+m.SilencePct, 100+1e-6)
	}
}

// Coincident start and end edges must not change totals whatever order
// the sort leaves them in.
func TestSweepTieOrderBenign(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		in := randomTimeline(r)
		var edges []edge
		for _, u := range in.Utterances {
			edges = append(edges, edge{u.Start, +1}, edge{u.End, -1})
		}
		sort.SliceStable(edges, func(a, b int) bool { return edges[a].t < edges[b].t })
		wantSpk, wantOver := sweep(edges)

		shuffled := append([]edge(nil), edges...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		sort.SliceStable(shuffled, func(a, b int) bool { return shuffled[a].t < shuffled[b].t })
		gotSpk, gotOver := sweep(shuffled)

		require.InDelta(t, wantSpk, gotSpk, eps)
		require.InDelta(t, wantOver, gotOver, eps)
	}
}

func TestMalformed(t *testing.T) {
	assert.Equal(t, 1, Malformed(tl([2]float64{0, 1}, [2]float64{5, 2})))
}
