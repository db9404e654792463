package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtend_Walk(t *testing.T) {
	x := Fresh("x")
	sub, ok := Extend(x, NewInt(42), EmptySubst)
	require.True(t, ok)
	assert.Equal(t, NewInt(42), Walk(x, sub))
}

func TestExtend_OccursCheckRejectsCycle(t *testing.T) {
	x := Fresh("x")
	cyclic := NewCompound("f", x)
	_, ok := Extend(x, cyclic, EmptySubst)
	assert.False(t, ok, "binding x to f(x) must be rejected by the occurs-check")
}

func TestExtend_OccursCheckThroughChain(t *testing.T) {
	x := Fresh("x")
	y := Fresh("y")
	sub, ok := Extend(y, x, EmptySubst)
	require.True(t, ok)
	_, ok = Extend(x, NewCompound("f", y), sub)
	assert.False(t, ok, "x -> f(y) must be rejected once y is bound to x")
}

func TestWalkStar_DeepSubstitution(t *testing.T) {
	x := Fresh("x")
	y := Fresh("y")
	sub, ok := Extend(x, NewInt(1), EmptySubst)
	require.True(t, ok)
	sub, ok = Extend(y, NewCompound("pair", x, NewInt(2)), sub)
	require.True(t, ok)

	walked := WalkStar(y, sub)
	assert.Equal(t, "pair(1, 2)", walked.String())
}

func TestSubst_Size(t *testing.T) {
	assert.Equal(t, 0, EmptySubst.Size())
	sub, _ := Extend(Fresh(""), NewInt(1), EmptySubst)
	sub, _ = Extend(Fresh(""), NewInt(2), sub)
	assert.Equal(t, 2, sub.Size())
}
