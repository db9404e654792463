package logic

import "context"

// This file implements the relational list built-ins of spec.md §4.6
// (member/2, append/3, length/2, nth/3, reverse/2, first/2, rest/2,
// cons/3, empty/1, non_empty/1) in the style of the teacher's
// list_ops.go: each relation is a Disj of a base case and a recursive
// case, and every recursive call is wrapped in a thunk goal
// (func(ctx, sub) *Stream { return Rel(...)(ctx, sub) }) so that
// constructing the Goal doesn't itself recurse — only *running* it does,
// which is what keeps these relations demand-driven instead of blowing
// the Go call stack at construction time.

func cons(head, tail Term) *List { return &List{Items: []Term{head}, Tail: tail} }

func thunk(build func() Goal) Goal {
	return func(ctx context.Context, sub *Subst) *Stream { return build()(ctx, sub) }
}

// Membero relates element X to list L: X unifies with some element of L.
func Membero(x, l Term) Goal {
	return Disj(
		Eq(l, cons(x, Fresh(""))),
		func(ctx context.Context, sub *Subst) *Stream {
			tail := Fresh("")
			return Conj(
				Eq(l, cons(Fresh(""), tail)),
				thunk(func() Goal { return Membero(x, tail) }),
			)(ctx, sub)
		},
	)
}

// Appendo relates l1, l2, and l3 such that l3 is l1 followed by l2.
// Bidirectional: any one list may be derived from the other two.
func Appendo(l1, l2, l3 Term) Goal {
	return Disj(
		Conj(Eq(l1, Nil), Eq(l2, l3)),
		func(ctx context.Context, sub *Subst) *Stream {
			h := Fresh("")
			t1 := Fresh("")
			t3 := Fresh("")
			return Conj(
				Eq(l1, cons(h, t1)),
				Eq(l3, cons(h, t3)),
				thunk(func() Goal { return Appendo(t1, l2, t3) }),
			)(ctx, sub)
		},
	)
}

// Lengtho relates a list to its length. If l is unbound, it enumerates
// lists of increasing length — callers normally invoke it with l bound.
func Lengtho(l, n Term) Goal {
	return Disj(
		Conj(Eq(l, Nil), Eq(n, NewInt(0))),
		func(ctx context.Context, sub *Subst) *Stream {
			h := Fresh("")
			t := Fresh("")
			n1 := Fresh("")
			return Conj(
				Eq(l, cons(h, t)),
				thunk(func() Goal { return Lengtho(t, n1) }),
				isGoal(n, NewCompound("+", n1, NewInt(1))),
			)(ctx, sub)
		},
	)
}

// Nth relates a 0-based index, a list, and the element at that index.
func Nth(n, l, x Term) Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		idx := Walk(n, sub)
		num, ok := idx.(*Number)
		if !ok {
			return nthEnumerate(l, x)(ctx, sub)
		}
		return nthAt(int(num.Int()), l, x)(ctx, sub)
	}
}

func nthAt(i int, l, x Term) Goal {
	if i < 0 {
		return Failure
	}
	if i == 0 {
		h := Fresh("")
		return Conj(Eq(l, cons(h, Fresh(""))), Eq(x, h))
	}
	t := Fresh("")
	return Conj(Eq(l, cons(Fresh(""), t)), thunk(func() Goal { return nthAt(i-1, t, x) }))
}

func nthEnumerate(l, x Term) Goal {
	return Disj(
		Conj(Eq(l, cons(x, Fresh("")))),
		func(ctx context.Context, sub *Subst) *Stream {
			t := Fresh("")
			return Conj(
				Eq(l, cons(Fresh(""), t)),
				thunk(func() Goal { return nthEnumerate(t, x) }),
			)(ctx, sub)
		},
	)
}

// Reverso relates a list to its reverse, via Appendo, matching the
// accumulator-free definition the teacher keeps in list_ops.go.
func Reverso(l, r Term) Goal {
	return Disj(
		Conj(Eq(l, Nil), Eq(r, Nil)),
		func(ctx context.Context, sub *Subst) *Stream {
			h := Fresh("")
			t := Fresh("")
			rt := Fresh("")
			return Conj(
				Eq(l, cons(h, t)),
				thunk(func() Goal { return Reverso(t, rt) }),
				thunk(func() Goal { return Appendo(rt, NewList(h), r) }),
			)(ctx, sub)
		},
	)
}

// Firsto and Resto project the head and tail of a non-empty list.
func Firsto(l, h Term) Goal { return Eq(l, cons(h, Fresh(""))) }
func Resto(l, t Term) Goal  { return Eq(l, cons(Fresh(""), t)) }

// Conso relates head, tail, and a list such that list = [head|tail].
func Conso(h, t, l Term) Goal { return Eq(l, cons(h, t)) }

// Emptyo and NonEmptyo check whether l is the empty list.
func Emptyo(l Term) Goal    { return Eq(l, Nil) }
func NonEmptyo(l Term) Goal { return Conj(Firsto(l, Fresh(""))) }

func init() {
	registerBuiltin(builtinKey("member", 2), func(r *Resolver, args []Term) Goal { return Membero(args[0], args[1]) })
	registerBuiltin(builtinKey("append", 3), func(r *Resolver, args []Term) Goal { return Appendo(args[0], args[1], args[2]) })
	registerBuiltin(builtinKey("length", 2), func(r *Resolver, args []Term) Goal { return Lengtho(args[0], args[1]) })
	registerBuiltin(builtinKey("nth", 3), func(r *Resolver, args []Term) Goal { return Nth(args[0], args[1], args[2]) })
	registerBuiltin(builtinKey("reverse", 2), func(r *Resolver, args []Term) Goal { return Reverso(args[0], args[1]) })
	registerBuiltin(builtinKey("first", 2), func(r *Resolver, args []Term) Goal { return Firsto(args[0], args[1]) })
	registerBuiltin(builtinKey("rest", 2), func(r *Resolver, args []Term) Goal { return Resto(args[0], args[1]) })
	registerBuiltin(builtinKey("cons", 3), func(r *Resolver, args []Term) Goal { return Conso(args[0], args[1], args[2]) })
	registerBuiltin(builtinKey("empty", 1), func(r *Resolver, args []Term) Goal { return Emptyo(args[0]) })
	registerBuiltin(builtinKey("non_empty", 1), func(r *Resolver, args []Term) Goal { return NonEmptyo(args[0]) })
}
