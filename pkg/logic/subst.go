package logic

// Subst is an immutable substitution: a finite map from variable id to
// term. Extending a Subst never mutates the receiver — it returns a new
// Subst that shares structure with its parent via a parent pointer,
// mirroring the "immutable-map pointers swapped atomically" option from
// the design notes. Backtracking simply discards the
// extended Subst and resumes with the parent, which is why no explicit
// trail or undo log is needed.
type Subst struct {
	v      int64
	t      Term
	parent *Subst
	depth  int
}

// EmptySubst is the substitution with no bindings.
var EmptySubst *Subst = nil

// Lookup returns the term bound to variable id v in sub, or nil if v is
// unbound. Lookup walks the parent chain, which is O(depth) — acceptable
// because branches are shallow relative to total bindings and the chain
// is only ever walked by Walk/WalkStar, never rebuilt.
func (sub *Subst) Lookup(v int64) Term {
	for s := sub; s != nil; s = s.parent {
		if s.v == v {
			return s.t
		}
	}
	return nil
}

// Walk follows a chain of variable bindings in sub and returns the first
// term that is not itself a bound variable. It does not recurse into
// compounds/lists/maps — use WalkStar for that.
func Walk(t Term, sub *Subst) Term {
	for {
		v, ok := t.(*Var)
		if !ok {
			return t
		}
		bound := sub.Lookup(v.id)
		if bound == nil {
			return t
		}
		t = bound
	}
}

// WalkStar deeply walks t through sub, producing a term with every
// discoverable binding inlined — the "reified modulo remaining unbound
// variables" view used internally wherever a fully-resolved term is
// needed (arithmetic, structural equality, findall templates).
func WalkStar(t Term, sub *Subst) Term {
	t = Walk(t, sub)
	switch v := t.(type) {
	case *Compound:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = WalkStar(a, sub)
		}
		return &Compound{Functor: v.Functor, Args: args}
	case *List:
		items := make([]Term, 0, len(v.Items))
		for _, a := range v.Items {
			items = append(items, WalkStar(a, sub))
		}
		// A tail that resolves to another list is merged into this one, so
		// a chain of [H|T] cells comes back as a single flat list.
		tail := WalkStar(v.Tail, sub)
		if tl, ok := tail.(*List); ok {
			items = append(items, tl.Items...)
			tail = tl.Tail
		}
		return &List{Items: items, Tail: tail}
	case *Map:
		entries := make(map[string]Term, len(v.Entries))
		for k, val := range v.Entries {
			entries[k] = WalkStar(val, sub)
		}
		return &Map{Entries: entries, Keys: v.Keys}
	default:
		return t
	}
}

// occursIn reports whether variable id vid appears anywhere within t once
// t is fully walked through sub. This is the occurs-check: it is always
// performed before a binding is accepted (spec mandates no unsound fast
// path), so the engine never constructs a cyclic term.
func occursIn(vid int64, t Term, sub *Subst) bool {
	t = Walk(t, sub)
	switch v := t.(type) {
	case *Var:
		return v.id == vid
	case *Compound:
		for _, a := range v.Args {
			if occursIn(vid, a, sub) {
				return true
			}
		}
		return false
	case *List:
		for _, a := range v.Items {
			if occursIn(vid, a, sub) {
				return true
			}
		}
		return occursIn(vid, v.Tail, sub)
	case *Map:
		for _, val := range v.Entries {
			if occursIn(vid, val, sub) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Extend returns sub ∪ {v ↦ t} after an occurs-check. ok is false — and
// the returned Subst is the unmodified receiver — if v occurs within
// walk*(t, sub), which would otherwise create a cyclic binding.
func Extend(v *Var, t Term, sub *Subst) (*Subst, bool) {
	if occursIn(v.id, t, sub) {
		return sub, false
	}
	depth := 0
	if sub != nil {
		depth = sub.depth + 1
	}
	return &Subst{v: v.id, t: t, parent: sub, depth: depth}, true
}

// Size returns the number of bindings reachable from sub (including
// shadowed ones from earlier extends of the same variable, which cannot
// happen in practice since Extend never rebinds an already-bound var on
// the same branch, but is reported faithfully regardless).
func (sub *Subst) Size() int {
	n := 0
	for s := sub; s != nil; s = s.parent {
		n++
	}
	return n
}
