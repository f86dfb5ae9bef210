package stategraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptional_ZeroLeavesFieldUntouched(t *testing.T) {
	var o Optional[[]string]

	assert.False(t, o.IsSet())
	assert.Equal(t, []string{"keep"}, o.Apply([]string{"keep"}))
}

// TestOptional_SetEmptyReplaces distinguishes "set to empty" from "absent".
func TestOptional_SetEmptyReplaces(t *testing.T) {
	o := Some([]string{})

	v, ok := o.Get()
	assert.True(t, ok)
	assert.Empty(t, v)
	assert.Empty(t, o.Apply([]string{"old"}))
}

func TestAppendOnly_Appends(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, AppendOnly([]int{1}, 2, 3))
	assert.Equal(t, []int{4}, AppendOnly(nil, 4))
}

func TestAppendOnly_EmptyIsIdentity(t *testing.T) {
	current := []string{"a", "b"}
	assert.Equal(t, current, AppendOnly(current))
}

// TestAppendOnly_DoesNotAliasEarlierState verifies that two merges from
// the same base never overwrite each other's tail.
func TestAppendOnly_DoesNotAliasEarlierState(t *testing.T) {
	base := make([]string, 1, 8)
	base[0] = "a"

	left := AppendOnly(base, "left")
	right := AppendOnly(base, "right")

	assert.Equal(t, []string{"a", "left"}, left)
	assert.Equal(t, []string{"a", "right"}, right)
	assert.Len(t, base, 1)
}

func TestMergeState_ZeroUpdateIsIdentity(t *testing.T) {
	s := State{Progress: []string{"x"}, Count: 2, Done: true, Output: "out"}
	assert.Equal(t, s, mergeState(s, Update{}))
}

func TestReplace(t *testing.T) {
	assert.Equal(t, Counter{Value: 9}, Replace(Counter{Value: 1}, Counter{Value: 9}))
}
