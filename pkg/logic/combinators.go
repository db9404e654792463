package logic

import "context"

// Conj builds a conjunction goal: σ ↦ flat-map(g1(σ), g2(σ), ...). Goals
// run left to right, depth-first — each goal's stream is driven to
// completion against every substitution produced by the goals before it
// before the combinator considers itself exhausted. Grounded on the
// teacher's primitives.go Conj/conjHelper, retyped over *Subst.
func Conj(goals ...Goal) Goal {
	switch len(goals) {
	case 0:
		return Success
	case 1:
		return goals[0]
	}
	return func(ctx context.Context, sub *Subst) *Stream {
		return conjStream(ctx, goals, sub)
	}
}

func conjStream(ctx context.Context, goals []Goal, sub *Subst) *Stream {
	if len(goals) == 0 {
		return unitStream(sub)
	}
	first, rest := goals[0], goals[1:]
	return generate(func(emit func(*Subst) bool) {
		s1 := first(ctx, sub)
		defer s1.Close()
		for {
			s, ok := s1.Next(ctx)
			if !ok {
				return
			}
			tail := conjStream(ctx, rest, s)
			for {
				out, ok := tail.Next(ctx)
				if !ok {
					break
				}
				if !emit(out) {
					tail.Close()
					return
				}
			}
			// A cut fired somewhere in rest (directly, or within a clause
			// body rest resolved into) must also prune the choice points
			// first still has open — otherwise backtracking into first
			// for another solution re-runs rest (and the already-fired
			// cut) again, defeating "generate, then commit" idioms like
			// member(X, List), !.
			if cutTriggered(ctx) {
				return
			}
		}
	})
}

// Disj builds a disjunction goal: σ ↦ lazy-concat(g1(σ), g2(σ), ...).
// The first branch is exhausted before the second begins, per spec.md's
// source-semantics requirement — interleaving branches would change
// answer order and is deliberately not done here. Also honors a cut
// barrier in ctx (see cut.go): once a branch sets the barrier, remaining
// branches are skipped.
func Disj(goals ...Goal) Goal {
	if len(goals) == 0 {
		return Failure
	}
	return func(ctx context.Context, sub *Subst) *Stream {
		return generate(func(emit func(*Subst) bool) {
			barrier := cutBarrierFrom(ctx)
			for _, g := range goals {
				s := g(ctx, sub)
				stop := false
				for {
					out, ok := s.Next(ctx)
					if !ok {
						break
					}
					if !emit(out) {
						s.Close()
						stop = true
						break
					}
				}
				if stop {
					return
				}
				if barrier != nil && barrier.triggered.Load() {
					return
				}
			}
		})
	}
}

// FreshN allocates n new anonymous logic variables and invokes body with
// them, returning the resulting Goal. This is the `fresh(n, body)`
// combinator of spec.md §4.5: it lets a rule or meta-goal introduce new
// variables without the caller needing to pre-allocate them.
func FreshN(n int, body func(vars []*Var) Goal) Goal {
	vars := make([]*Var, n)
	for i := range vars {
		vars[i] = Fresh("")
	}
	return body(vars)
}

// Not builds a negation-as-failure goal: it succeeds with the input
// substitution unchanged iff g has no solutions under that substitution,
// and fails otherwise. No bindings made while exploring g ever escape,
// since the success case reuses the original sub rather than anything g
// produced.
func Not(g Goal) Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		inner, cancel := withCutBarrier(ctx)
		defer cancel()
		s := g(inner, sub)
		_, hasSolution := s.Next(ctx)
		s.Close()
		if hasSolution {
			return emptyStream()
		}
		return unitStream(sub)
	}
}

// Conda ("soft cut") evaluates each clause's test in order; the first
// test that yields at least one solution commits the whole disjunction
// to that clause (exploring every solution of its test), and later
// clauses are never tried — even if the committed clause ultimately
// fails. Grounded on control_flow.go's Ifa, generalized from a single
// (test, then, else) triple to an arbitrary list of (test, then) pairs
// plus a default.
func Conda(clauses [][2]Goal, defaultGoal Goal) Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		return generate(func(emit func(*Subst) bool) {
			for _, clause := range clauses {
				test, then := clause[0], clause[1]
				testStream := test(ctx, sub)
				first, ok := testStream.Next(ctx)
				if !ok {
					testStream.Close()
					continue
				}
				// Committed: explore `then` for this and every other
				// solution of `test`, and never try a later clause.
				for _, s := range []*Subst{first} {
					if !runThen(ctx, then, s, emit) {
						testStream.Close()
						return
					}
				}
				for {
					s, ok := testStream.Next(ctx)
					if !ok {
						break
					}
					if !runThen(ctx, then, s, emit) {
						testStream.Close()
						return
					}
				}
				return
			}
			if defaultGoal != nil {
				s := defaultGoal(ctx, sub)
				for {
					out, ok := s.Next(ctx)
					if !ok {
						return
					}
					if !emit(out) {
						s.Close()
						return
					}
				}
			}
		})
	}
}

func runThen(ctx context.Context, then Goal, sub *Subst, emit func(*Subst) bool) bool {
	s := then(ctx, sub)
	for {
		out, ok := s.Next(ctx)
		if !ok {
			return true
		}
		if !emit(out) {
			s.Close()
			return false
		}
	}
}

// Condu is Conda restricted to the first solution of the committed
// clause's test (Prolog's once/if-then-else commitment), grounded on
// control_flow.go's Ifte.
func Condu(clauses [][2]Goal, defaultGoal Goal) Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		for _, clause := range clauses {
			test, then := clause[0], clause[1]
			testStream := test(ctx, sub)
			first, ok := testStream.Next(ctx)
			testStream.Close()
			if !ok {
				continue
			}
			return then(ctx, first)
		}
		if defaultGoal != nil {
			return defaultGoal(ctx, sub)
		}
		return emptyStream()
	}
}
