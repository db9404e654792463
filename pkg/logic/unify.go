package logic

// Unify attempts to unify t1 and t2 under sub, returning an extended
// substitution on success. Both sides are walked first so that already-
// bound variables are compared by their current value. Unification is
// symmetric with respect to which side is a variable — when both sides
// are unbound variables the left is bound to the right, purely for
// trace-output stability, not because direction affects correctness.
//
// Grounded on the teacher's primitives.go `unify` helper, generalized
// from two term kinds (Var, Pair) to all seven and given the occurs-check
// the teacher's version lacks.
func Unify(t1, t2 Term, sub *Subst) (*Subst, bool) {
	t1 = Walk(t1, sub)
	t2 = Walk(t2, sub)

	// A List with no items is the same list as its tail, so an empty
	// List (as built by NewList()) unifies with the Nil atom.
	if l, ok := t1.(*List); ok && len(l.Items) == 0 {
		t1 = Walk(l.Tail, sub)
	}
	if l, ok := t2.(*List); ok && len(l.Items) == 0 {
		t2 = Walk(l.Tail, sub)
	}

	v1, isVar1 := t1.(*Var)
	v2, isVar2 := t2.(*Var)

	switch {
	case isVar1 && isVar2 && v1.id == v2.id:
		return sub, true
	case isVar1:
		return Extend(v1, t2, sub)
	case isVar2:
		return Extend(v2, t1, sub)
	}

	if t1.Tag() != t2.Tag() {
		return sub, false
	}

	switch a := t1.(type) {
	case *Atom:
		b := t2.(*Atom)
		return sub, a == b // interned, so pointer equality is value equality
	case *Number:
		b := t2.(*Number)
		return sub, a.val == b.val
	case *Str:
		b := t2.(*Str)
		return sub, a.val == b.val
	case *Compound:
		b := t2.(*Compound)
		if a.Functor != b.Functor || len(a.Args) != len(b.Args) {
			return sub, false
		}
		return unifyTermSlice(a.Args, b.Args, sub)
	case *List:
		b := t2.(*List)
		return unifyLists(a, b, sub)
	case *Map:
		b := t2.(*Map)
		return unifyMaps(a, b, sub)
	default:
		return sub, false
	}
}

func unifyTermSlice(a, b []Term, sub *Subst) (*Subst, bool) {
	for i := range a {
		var ok bool
		sub, ok = Unify(a[i], b[i], sub)
		if !ok {
			return sub, false
		}
	}
	return sub, true
}

// unifyLists unifies two possibly-partial lists element-wise. The common
// prefix is unified pairwise; when one list has more known items than the
// other, the shorter list's tail is unified against the longer list's
// remaining items reassembled as a list — exactly the behavior of
// unifying cons cells one at a time, expressed over the slice
// representation so that proper lists (the common case) unify in one
// pass with no intermediate allocation per element.
func unifyLists(a, b *List, sub *Subst) (*Subst, bool) {
	n := len(a.Items)
	if len(b.Items) < n {
		n = len(b.Items)
	}
	var ok bool
	for i := 0; i < n; i++ {
		sub, ok = Unify(a.Items[i], b.Items[i], sub)
		if !ok {
			return sub, false
		}
	}

	switch {
	case len(a.Items) == len(b.Items):
		return Unify(a.Tail, b.Tail, sub)
	case len(a.Items) > n:
		rest := &List{Items: a.Items[n:], Tail: a.Tail}
		return Unify(rest, b.Tail, sub)
	default:
		rest := &List{Items: b.Items[n:], Tail: b.Tail}
		return Unify(a.Tail, rest, sub)
	}
}

func unifyMaps(a, b *Map, sub *Subst) (*Subst, bool) {
	if len(a.Entries) != len(b.Entries) {
		return sub, false
	}
	var ok bool
	for k, av := range a.Entries {
		bv, exists := b.Entries[k]
		if !exists {
			return sub, false
		}
		sub, ok = Unify(av, bv, sub)
		if !ok {
			return sub, false
		}
	}
	return sub, true
}
