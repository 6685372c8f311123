package evaluate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	r, err := Score("Pattern Matching", []int{1, 1, 0, 0, 1}, []int{1, 0, 0, 1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, r.Accuracy, 1e-9)
	assert.InDelta(t, 2.0/3, r.Precision, 1e-9)
	assert.InDelta(t, 2.0/3, r.Recall, 1e-9)
	assert.InDelta(t, 2.0/3, r.F1, 1e-9)
	assert.Equal(t, 5, r.Support)
}

func TestScoreZeroDivision(t *testing.T) {
	r, err := Score("none", []int{0, 0}, []int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Accuracy)
	assert.Zero(t, r.Precision)
	assert.Zero(t, r.Recall)
	assert.Zero(t, r.F1)

	r, err = Score("empty", nil, nil)
	require.NoError(t, err)
	assert.Zero(t, r.Accuracy)
}

func TestScoreLengthMismatch(t *testing.T) {
	_, err := Score("x", []int{1}, []int{1, 0})
	assert.Error(t, err)
}

func TestBest(t *testing.T) {
	_, ok := Best(nil)
	assert.False(t, ok)
	b, ok := Best([]Result{{Approach: "a", F1: 0.5}, {Approach: "b", F1: 0.7}, {Approach: "c", F1: 0.7}})
	require.True(t, ok)
	assert.Equal(t, "b", b.Approach)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, []Result{{Approach: "ML Baseline", Accuracy: 1, Support: 3}}))
	assert.Contains(t, buf.String(), "Approach")
	assert.Contains(t, buf.String(), "ML Baseline")
	assert.Contains(t, buf.String(), "1.0000")
}
