package logic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(s *Store) *Resolver {
	return NewResolver(s)
}

func TestResolver_FactLookup(t *testing.T) {
	s := NewStore()
	s.AssertFact("parent", []Term{NewAtom("tom"), NewAtom("liz")})
	s.AssertFact("parent", []Term{NewAtom("bob"), NewAtom("liz")})

	r := newTestResolver(s)
	x := Fresh("x")
	goal := r.ResolveTerm(NewCompound("parent", x, NewAtom("liz")))
	ctx := context.Background()
	results := drain(ctx, goal(ctx, EmptySubst))
	assert.Len(t, results, 2)
}

func TestResolver_RuleResolutionAndRenameOnUse(t *testing.T) {
	s := NewStore()
	s.AssertFact("parent", []Term{NewAtom("tom"), NewAtom("liz")})
	s.AssertFact("parent", []Term{NewAtom("liz"), NewAtom("ann")})

	hx, hy, bz := Fresh("x"), Fresh("y"), Fresh("z")
	_, err := s.AddRule("grandparent", []Term{hx, hy}, []Term{
		NewCompound("parent", hx, bz),
		NewCompound("parent", bz, hy),
	})
	require.NoError(t, err)

	r := newTestResolver(s)
	qx := Fresh("qx")
	goal := r.ResolveTerm(NewCompound("grandparent", qx, NewAtom("ann")))
	ctx := context.Background()
	sub, ok := goal(ctx, EmptySubst).Next(ctx)
	require.True(t, ok)
	assert.Equal(t, NewAtom("tom"), Walk(qx, sub))
}

func TestResolver_FactsTriedBeforeRules(t *testing.T) {
	s := NewStore()
	s.AssertFact("p", []Term{NewInt(1)})
	x := Fresh("x")
	_, err := s.AddRule("p", []Term{x}, []Term{NewCompound("q", x)})
	require.NoError(t, err)
	s.AssertFact("q", []Term{NewInt(2)})

	r := newTestResolver(s)
	qx := Fresh("qx")
	goal := r.ResolveTerm(NewCompound("p", qx))
	ctx := context.Background()
	results := drain(ctx, goal(ctx, EmptySubst))
	require.Len(t, results, 2)
	assert.Equal(t, NewInt(1), Walk(qx, results[0]))
	assert.Equal(t, NewInt(2), Walk(qx, results[1]))
}

func TestResolver_CutPrunesRemainingClausesOfSameCall(t *testing.T) {
	s := NewStore()
	_, err := s.AddRule("first", []Term{NewInt(1)}, []Term{NewAtom("!")})
	require.NoError(t, err)
	_, err = s.AddRule("first", []Term{NewInt(2)}, []Term{NewAtom("true")})
	require.NoError(t, err)

	r := newTestResolver(s)
	qx := Fresh("qx")
	goal := r.ResolveTerm(NewCompound("first", qx))
	ctx := context.Background()
	results := drain(ctx, goal(ctx, EmptySubst))
	require.Len(t, results, 1, "cut inside the first clause's body must prevent the second clause from running")
	assert.Equal(t, NewInt(1), Walk(qx, results[0]))
}

func TestResolver_NegationAsFailure(t *testing.T) {
	s := NewStore()
	s.AssertFact("even", []Term{NewInt(2)})

	r := newTestResolver(s)
	ctx := context.Background()

	goal := r.ResolveTerm(NewCompound("\\+", NewCompound("even", NewInt(3))))
	_, ok := goal(ctx, EmptySubst).Next(ctx)
	assert.True(t, ok)

	goal = r.ResolveTerm(NewCompound("\\+", NewCompound("even", NewInt(2))))
	_, ok = goal(ctx, EmptySubst).Next(ctx)
	assert.False(t, ok)
}

func TestResolver_GroundCallMemoization(t *testing.T) {
	s := NewStore()
	s.AssertFact("fact", []Term{NewInt(1)})

	r := newTestResolver(s)
	ctx := context.Background()
	goal := r.ResolveTerm(NewCompound("fact", NewInt(1)))
	// The cache entry is written only once the call's solutions are
	// exhausted, so drain the stream before looking it up.
	results := drain(ctx, goal(ctx, EmptySubst))
	require.Len(t, results, 1)

	key := cacheKeyFor("fact", []Term{NewInt(1)})
	count, found := s.cacheGet(key)
	assert.True(t, found)
	assert.Equal(t, 1, count)
}

func TestResolver_GroundCallMemoization_PreservesSolutionMultiplicity(t *testing.T) {
	s := NewStore()
	// Two independent rules, each an independent derivation of the same
	// ground call: a cache hit must replay both, not collapse them to
	// one solution.
	_, _ = s.AddRule("reaches", []Term{NewAtom("liz")}, []Term{NewCompound("parent", NewAtom("tom"), NewAtom("liz"))})
	_, _ = s.AddRule("reaches", []Term{NewAtom("liz")}, []Term{NewCompound("parent", NewAtom("bob"), NewAtom("liz"))})
	s.AssertFact("parent", []Term{NewAtom("tom"), NewAtom("liz")})
	s.AssertFact("parent", []Term{NewAtom("bob"), NewAtom("liz")})

	r := newTestResolver(s)
	ctx := context.Background()

	g := r.ResolveTerm(NewCompound("reaches", NewAtom("liz")))
	stream1 := g(ctx, EmptySubst)
	n := 0
	for {
		_, ok := stream1.Next(ctx)
		if !ok {
			break
		}
		n++
	}
	assert.Equal(t, 2, n, "a ground call with two independent derivations must yield two solutions")

	// Re-run the identical ground call; this time it should hit the
	// cache, and must still yield both solutions.
	stream2 := g(ctx, EmptySubst)
	n2 := 0
	for {
		_, ok := stream2.Next(ctx)
		if !ok {
			break
		}
		n2++
	}
	assert.Equal(t, 2, n2, "a cache hit must replay every derivation, not collapse them to one")
}

func TestResolver_IfThenElse(t *testing.T) {
	s := NewStore()
	s.AssertFact("cond", []Term{NewInt(1)})

	r := newTestResolver(s)
	ctx := context.Background()
	x := Fresh("x")
	goal := r.ResolveTerm(NewCompound("->",
		NewCompound("cond", NewInt(1)),
		NewCompound("is", x, NewInt(7)),
	))
	sub, ok := goal(ctx, EmptySubst).Next(ctx)
	require.True(t, ok)
	assert.Equal(t, NewInt(7), Walk(x, sub))
}

func TestResolver_UnknownPredicateFails(t *testing.T) {
	s := NewStore()
	r := newTestResolver(s)
	ctx := context.Background()
	goal := r.ResolveTerm(NewCompound("nosuchpred", NewInt(1)))
	_, ok := goal(ctx, EmptySubst).Next(ctx)
	assert.False(t, ok)
}

func TestResolver_BuiltinShadowsKB(t *testing.T) {
	s := NewStore()
	// "true" is a registered builtin of arity 0; asserting a fact of the
	// same name/arity must never be reachable through resolution.
	s.AssertFact("true", nil)

	r := newTestResolver(s)
	ctx := context.Background()
	goal := r.ResolveTerm(NewAtom("true"))
	results := drain(ctx, goal(ctx, EmptySubst))
	assert.Len(t, results, 1, "the builtin true/0 always succeeds exactly once, never twice via the shadowed fact")
}
