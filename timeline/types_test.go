package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSortsStable(t *testing.T) {
	tl := New("c1", []Utterance{
		{UtteranceID: 0, Start: 5, End: 6},
		{UtteranceID: 1, Start: 1, End: 2},
		{UtteranceID: 2, Start: 5, End: 7},
		{UtteranceID: 3, Start: 1, End: 3},
	})

	ids := make([]int, 0, tl.Len())
	for _, u := range tl.Utterances {
		ids = append(ids, u.UtteranceID)
	}
	assert.Equal(t, []int{1, 3, 0, 2}, ids)
	assert.Equal(t, "c1", tl.CallID)
}

func TestNewDoesNotMutateInput(t *testing.T) {
	in := []Utterance{{UtteranceID: 0, Start: 2}, {UtteranceID: 1, Start: 1}}
	_ = New("c", in)
	assert.Equal(t, 0, in[0].UtteranceID)
}

func TestDurationClamped(t *testing.T) {
	assert.Equal(t, 0.0, Utterance{Start: 5, End: 3}.Duration())
	assert.Equal(t, 2.5, Utterance{Start: 1, End: 3.5}.Duration())
}

func TestRoleOf(t *testing.T) {
	assert.Equal(t, RoleAgent, RoleOf("Agent_1"))
	assert.Equal(t, RoleAgent, RoleOf("support AGENT"))
	assert.Equal(t, RoleBorrower, RoleOf("customer"))
	assert.True(t, Utterance{Speaker: "agent"}.IsAgent())
	assert.False(t, Utterance{Speaker: "borrower"}.IsAgent())
}
