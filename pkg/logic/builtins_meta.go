package logic

import "context"

func init() {
	registerBuiltin(builtinKey("findall", 3), func(r *Resolver, args []Term) Goal {
		return findallGoal(r, args[0], args[1], args[2])
	})
	registerBuiltin(builtinKey("between", 3), func(r *Resolver, args []Term) Goal {
		return betweenGoal(args[0], args[1], args[2])
	})
	registerBuiltin(builtinKey("copy_term", 2), func(r *Resolver, args []Term) Goal {
		return copyTermGoal(args[0], args[1])
	})
}

// findallGoal implements findall(Template, Goal, List): it runs Goal to
// exhaustion under a scratch cut barrier (so a cut inside Goal cannot
// reach outward) and collects walk*(Template) for each solution. It
// always succeeds, binding List to the (possibly empty) collected list —
// findall(X, fail, Xs) unifies Xs with [] rather than failing.
func findallGoal(r *Resolver, template, goalTerm, list Term) Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		inner, cancel := withCutBarrier(ctx)
		defer cancel()
		g := r.ResolveTerm(goalTerm)
		s := g(inner, sub)
		results := make([]Term, 0)
		for {
			sol, ok := s.Next(ctx)
			if !ok {
				break
			}
			results = append(results, WalkStar(template, sol))
		}
		newSub, ok := Unify(list, NewList(results...), sub)
		if !ok {
			return emptyStream()
		}
		return unitStream(newSub)
	}
}

// betweenGoal implements between(Low, High, X): if X is ground after
// walking, it succeeds iff Low <= X <= High; otherwise it enumerates
// X = Low, Low+1, ..., High. between(5, 3, X) — an empty range — yields
// no solutions.
func betweenGoal(low, high, x Term) Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		lo, ok := evalArith(low, sub)
		if !ok {
			return emptyStream()
		}
		hi, ok := evalArith(high, sub)
		if !ok {
			return emptyStream()
		}
		xv := Walk(x, sub)
		if n, isNum := xv.(*Number); isNum {
			if n.val >= lo.val && n.val <= hi.val {
				return unitStream(sub)
			}
			return emptyStream()
		}
		return generate(func(emit func(*Subst) bool) {
			for i := int64(lo.val); i <= int64(hi.val); i++ {
				newSub, ok := Unify(x, NewInt(i), sub)
				if ok && !emit(newSub) {
					return
				}
			}
		})
	}
}

// copyTermGoal implements copy_term(T, C): C unifies with a copy of T in
// which every variable has been replaced by a fresh one, preserving
// sharing (two occurrences of the same variable in T map to the same
// fresh variable in C).
func copyTermGoal(t, c Term) Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		walked := WalkStar(t, sub)
		renamed := renameTerm(walked, make(map[int64]*Var))
		newSub, ok := Unify(c, renamed, sub)
		if !ok {
			return emptyStream()
		}
		return unitStream(newSub)
	}
}

// renameTerm returns a structural copy of t with every variable replaced
// by a fresh one, consistently: repeated occurrences of the same
// variable id map to the same fresh variable. Used by copy_term/2 and by
// the resolver's rename-on-use of rule clauses (spec.md §4.3).
func renameTerm(t Term, mapping map[int64]*Var) Term {
	switch v := t.(type) {
	case *Var:
		if fresh, ok := mapping[v.id]; ok {
			return fresh
		}
		fresh := Fresh(v.name)
		mapping[v.id] = fresh
		return fresh
	case *Compound:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = renameTerm(a, mapping)
		}
		return &Compound{Functor: v.Functor, Args: args}
	case *List:
		items := make([]Term, len(v.Items))
		for i, a := range v.Items {
			items[i] = renameTerm(a, mapping)
		}
		return &List{Items: items, Tail: renameTerm(v.Tail, mapping)}
	case *Map:
		entries := make(map[string]Term, len(v.Entries))
		for k, val := range v.Entries {
			entries[k] = renameTerm(val, mapping)
		}
		return &Map{Entries: entries, Keys: v.Keys}
	default:
		return t
	}
}
