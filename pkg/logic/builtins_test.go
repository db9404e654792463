package logic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins_TrueFalseFail(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())

	_, ok := r.ResolveTerm(NewAtom("true"))(ctx, EmptySubst).Next(ctx)
	assert.True(t, ok)

	_, ok = r.ResolveTerm(NewAtom("fail"))(ctx, EmptySubst).Next(ctx)
	assert.False(t, ok)

	_, ok = r.ResolveTerm(NewAtom("false"))(ctx, EmptySubst).Next(ctx)
	assert.False(t, ok)
}

func TestBuiltins_Once(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.AssertFact("p", []Term{NewInt(1)})
	s.AssertFact("p", []Term{NewInt(2)})
	r := newTestResolver(s)
	x := Fresh("x")
	goal := r.ResolveTerm(NewCompound("once", NewCompound("p", x)))
	results := drain(ctx, goal(ctx, EmptySubst))
	require.Len(t, results, 1)
	assert.Equal(t, NewInt(1), Walk(x, results[0]))
}

func TestBuiltins_Repeat_BoundedByOnce(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	goal := r.ResolveTerm(NewCompound("once", NewAtom("repeat")))
	_, ok := goal(ctx, EmptySubst).Next(ctx)
	assert.True(t, ok)
}

func TestBuiltins_ArithIs(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	x := Fresh("x")
	goal := r.ResolveTerm(NewCompound("is", x, NewCompound("+", NewInt(2), NewInt(3))))
	sub, ok := goal(ctx, EmptySubst).Next(ctx)
	require.True(t, ok)
	assert.Equal(t, NewInt(5), Walk(x, sub))
}

func TestBuiltins_ArithIs_UnboundOperandFails(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	x, y := Fresh("x"), Fresh("y")
	goal := r.ResolveTerm(NewCompound("is", x, NewCompound("+", y, NewInt(1))))
	_, ok := goal(ctx, EmptySubst).Next(ctx)
	assert.False(t, ok)
}

func TestBuiltins_DivisionByZeroFails(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	x := Fresh("x")
	goal := r.ResolveTerm(NewCompound("is", x, NewCompound("/", NewInt(1), NewInt(0))))
	_, ok := goal(ctx, EmptySubst).Next(ctx)
	assert.False(t, ok)
}

func TestBuiltins_ArithComparators(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	cases := []struct {
		op   string
		a, b int64
		want bool
	}{
		{"<", 1, 2, true}, {"<", 2, 1, false},
		{">", 2, 1, true}, {"=<", 2, 2, true}, {">=", 1, 2, false},
		{"=:=", 3, 3, true}, {"=\\=", 3, 3, false},
	}
	for _, c := range cases {
		goal := r.ResolveTerm(NewCompound(c.op, NewInt(c.a), NewInt(c.b)))
		_, ok := goal(ctx, EmptySubst).Next(ctx)
		assert.Equal(t, c.want, ok, "%s(%d,%d)", c.op, c.a, c.b)
	}
}

func TestBuiltins_StructuralEquality(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())

	_, ok := r.ResolveTerm(NewCompound("==", NewInt(1), NewInt(1)))(ctx, EmptySubst).Next(ctx)
	assert.True(t, ok)

	_, ok = r.ResolveTerm(NewCompound("\\==", NewInt(1), NewInt(2)))(ctx, EmptySubst).Next(ctx)
	assert.True(t, ok)

	x := Fresh("x")
	_, ok = r.ResolveTerm(NewCompound("==", x, NewInt(1)))(ctx, EmptySubst).Next(ctx)
	assert.False(t, ok, "an unbound variable is never structurally equal to a number")
}

func TestBuiltins_TypeChecks(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())

	ok := func(term Term) bool {
		_, succeeded := r.ResolveTerm(term)(ctx, EmptySubst).Next(ctx)
		return succeeded
	}

	assert.True(t, ok(NewCompound("number", NewInt(1))))
	assert.True(t, ok(NewCompound("integer", NewInt(1))))
	assert.False(t, ok(NewCompound("integer", NewFloat(1.5))))
	assert.True(t, ok(NewCompound("atom", NewAtom("a"))))
	assert.True(t, ok(NewCompound("is_list", NewList(NewInt(1)))))
	assert.True(t, ok(NewCompound("var", Fresh("x"))))
	assert.True(t, ok(NewCompound("nonvar", NewInt(1))))
	assert.True(t, ok(NewCompound("ground", NewCompound("f", NewInt(1)))))
	assert.False(t, ok(NewCompound("ground", NewCompound("f", Fresh("x")))))
}

func TestBuiltins_Findall(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.AssertFact("color", []Term{NewAtom("red")})
	s.AssertFact("color", []Term{NewAtom("green")})
	r := newTestResolver(s)

	x, xs := Fresh("x"), Fresh("xs")
	goal := r.ResolveTerm(NewCompound("findall", x, NewCompound("color", x), xs))
	sub, ok := goal(ctx, EmptySubst).Next(ctx)
	require.True(t, ok)
	assert.Equal(t, "[red, green]", WalkStar(xs, sub).String())
}

func TestBuiltins_Findall_NoSolutionsYieldsEmptyList(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	xs := Fresh("xs")
	goal := r.ResolveTerm(NewCompound("findall", Fresh("x"), NewAtom("fail"), xs))
	sub, ok := goal(ctx, EmptySubst).Next(ctx)
	require.True(t, ok)
	assert.Equal(t, "[]", WalkStar(xs, sub).String())
}

func TestBuiltins_Between(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	x := Fresh("x")
	goal := r.ResolveTerm(NewCompound("between", NewInt(1), NewInt(3), x))
	results := drain(ctx, goal(ctx, EmptySubst))
	require.Len(t, results, 3)
	assert.Equal(t, NewInt(1), Walk(x, results[0]))
	assert.Equal(t, NewInt(3), Walk(x, results[2]))
}

func TestBuiltins_Between_EmptyRange(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	x := Fresh("x")
	goal := r.ResolveTerm(NewCompound("between", NewInt(5), NewInt(3), x))
	_, ok := goal(ctx, EmptySubst).Next(ctx)
	assert.False(t, ok)
}

func TestBuiltins_Between_GroundCheck(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	goal := r.ResolveTerm(NewCompound("between", NewInt(1), NewInt(3), NewInt(2)))
	_, ok := goal(ctx, EmptySubst).Next(ctx)
	assert.True(t, ok)
}

func TestBuiltins_CopyTerm(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	x := Fresh("x")
	template := NewCompound("pair", x, x)
	c := Fresh("c")
	goal := r.ResolveTerm(NewCompound("copy_term", template, c))
	sub, ok := goal(ctx, EmptySubst).Next(ctx)
	require.True(t, ok)
	copied := WalkStar(c, sub).(*Compound)
	assert.Same(t, copied.Args[0], copied.Args[1], "repeated variables in the template must map to the same fresh variable")
	assert.NotEqual(t, x.ID(), copied.Args[0].(*Var).ID())
}

func TestListRelations_Member(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	x := Fresh("x")
	goal := r.ResolveTerm(NewCompound("member", x, NewList(NewInt(1), NewInt(2), NewInt(3))))
	results := drain(ctx, goal(ctx, EmptySubst))
	require.Len(t, results, 3)
}

func TestListRelations_Append(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	x := Fresh("x")
	goal := r.ResolveTerm(NewCompound("append", NewList(NewInt(1), NewInt(2)), NewList(NewInt(3)), x))
	sub, ok := goal(ctx, EmptySubst).Next(ctx)
	require.True(t, ok)
	assert.Equal(t, "[1, 2, 3]", WalkStar(x, sub).String())
}

func TestListRelations_Length(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	n := Fresh("n")
	goal := r.ResolveTerm(NewCompound("length", NewList(NewInt(1), NewInt(2), NewInt(3)), n))
	sub, ok := goal(ctx, EmptySubst).Next(ctx)
	require.True(t, ok)
	assert.Equal(t, NewInt(3), Walk(n, sub))
}

func TestListRelations_Reverse(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	x := Fresh("x")
	goal := r.ResolveTerm(NewCompound("reverse", NewList(NewInt(1), NewInt(2), NewInt(3)), x))
	sub, ok := goal(ctx, EmptySubst).Next(ctx)
	require.True(t, ok)
	assert.Equal(t, "[3, 2, 1]", WalkStar(x, sub).String())
}

func TestListRelations_Nth(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())
	x := Fresh("x")
	goal := r.ResolveTerm(NewCompound("nth", NewInt(1), NewList(NewAtom("a"), NewAtom("b"), NewAtom("c")), x))
	sub, ok := goal(ctx, EmptySubst).Next(ctx)
	require.True(t, ok)
	assert.Equal(t, NewAtom("b"), Walk(x, sub))
}

func TestListRelations_EmptyNonEmpty(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(NewStore())

	_, ok := r.ResolveTerm(NewCompound("empty", Nil))(ctx, EmptySubst).Next(ctx)
	assert.True(t, ok)

	_, ok = r.ResolveTerm(NewCompound("non_empty", NewList(NewInt(1))))(ctx, EmptySubst).Next(ctx)
	assert.True(t, ok)
}
