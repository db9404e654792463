package logic

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/lucidkb/logicore/internal/logx"
)

// Resolver drives SLD resolution against one snapshot of a Store,
// dispatching each goal term to a built-in, a control construct, or the
// knowledge base's facts and rules. Grounded on spec.md §4.4's
// resolve(term, σ) algorithm; the snapshot field is what gives a running
// query wait-free, isolated reads of the knowledge base even while other
// goroutines mutate it concurrently (spec.md §4.3/§5).
type Resolver struct {
	store    *Store
	snapshot map[string]*predicate
	tracer   *Tracer
	spy      *SpyTable
	logger   *zap.Logger
}

// ResolverOption configures a Resolver at construction time.
type ResolverOption func(*Resolver)

// WithTracer attaches a Tracer; every KB predicate call (not built-ins
// or control constructs) is recorded as a call/exit/fail/redo sequence.
func WithTracer(t *Tracer) ResolverOption {
	return func(r *Resolver) { r.tracer = t }
}

// WithSpy attaches a SpyTable for independent per-predicate debug logging.
func WithSpy(s *SpyTable) ResolverOption {
	return func(r *Resolver) { r.spy = s }
}

// WithResolverLogger sets the Resolver's structured logger. No resolver
// code path writes to it.
func WithResolverLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver takes a snapshot of store and returns a Resolver that
// resolves every goal against that snapshot, regardless of mutations the
// store undergoes afterward — spec.md §4.3's "facts-of/rules-of: snapshot
// read, wait-free over the snapshot".
func NewResolver(store *Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:    store,
		snapshot: store.snapshotPredicates(),
		logger:   logx.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveTerm turns a goal term into a Goal. It is re-evaluated against
// the current substitution every time the returned Goal runs, so a goal
// built from a still-unbound variable resolves correctly once that
// variable is eventually bound by an earlier conjunct.
func (r *Resolver) ResolveTerm(t Term) Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		return r.resolveWalked(ctx, Walk(t, sub), sub)
	}
}

func (r *Resolver) resolveWalked(ctx context.Context, t Term, sub *Subst) *Stream {
	switch v := t.(type) {
	case *Atom:
		return r.call(ctx, v.name, 0, nil, sub)
	case *Compound:
		switch {
		case v.Functor.name == "," && len(v.Args) == 2:
			return Conj(r.ResolveTerm(v.Args[0]), r.ResolveTerm(v.Args[1]))(ctx, sub)
		case v.Functor.name == ";" && len(v.Args) == 2:
			return Disj(r.ResolveTerm(v.Args[0]), r.ResolveTerm(v.Args[1]))(ctx, sub)
		case v.Functor.name == "->" && len(v.Args) == 2:
			return Condu([][2]Goal{{r.ResolveTerm(v.Args[0]), r.ResolveTerm(v.Args[1])}}, Failure)(ctx, sub)
		default:
			return r.call(ctx, v.Functor.name, len(v.Args), v.Args, sub)
		}
	default:
		// A goal must be an atom or compound (the predicate/args shape);
		// an unbound variable, number, string, list, or map used as a
		// goal is not callable and simply fails rather than erroring,
		// consistent with every other failure-as-value in this package.
		return emptyStream()
	}
}

// conjOf resolves a slice of goal terms (a rule body) into a single Conj
// goal.
func (r *Resolver) conjOf(goals []Term) Goal {
	gs := make([]Goal, len(goals))
	for i, g := range goals {
		gs[i] = r.ResolveTerm(g)
	}
	return Conj(gs...)
}

// call dispatches a predicate/arity call, built-ins shadowing the
// knowledge base (spec.md §4.4 step 3) — looked up first, and never
// instrumented by Tracer/SpyTable, which exist to observe knowledge-base
// predicate calls.
func (r *Resolver) call(ctx context.Context, name string, arity int, args []Term, sub *Subst) *Stream {
	if fn, ok := lookupBuiltin(name, arity); ok {
		return fn(r, args)(ctx, sub)
	}
	return r.instrumented(ctx, name, args, sub, func(innerCtx context.Context) *Stream {
		return r.resolvePredicate(innerCtx, name, arity, args, sub)
	})
}

// instrumented wraps produce with Tracer and SpyTable bookkeeping. When
// neither is attached (the common case for a plain library call) it
// degrades to a direct call with no extra goroutine or allocation.
func (r *Resolver) instrumented(ctx context.Context, name string, args []Term, sub *Subst, produce func(context.Context) *Stream) *Stream {
	spied := r.spy != nil && r.spy.IsSpied(name)
	if r.tracer == nil && !spied {
		return produce(ctx)
	}

	childCtx := ctx
	var node *TraceNode
	walked := make([]Term, len(args))
	for i, a := range args {
		walked[i] = WalkStar(a, sub)
	}
	if r.tracer != nil {
		childCtx, node = r.tracer.enter(ctx, name, walked)
	}
	if spied {
		r.spy.record("call", name, walked)
	}

	inner := produce(childCtx)
	return generate(func(emit func(*Subst) bool) {
		count := 0
		for {
			out, ok := inner.Next(ctx)
			if !ok {
				break
			}
			count++
			if r.tracer != nil {
				if count == 1 {
					r.tracer.exit(node)
				} else {
					r.tracer.redo(node)
				}
			}
			if spied {
				if count == 1 {
					r.spy.record("exit", name, walked)
				} else {
					r.spy.record("redo", name, walked)
				}
			}
			if !emit(out) {
				inner.Close()
				return
			}
		}
		if count == 0 {
			if r.tracer != nil {
				r.tracer.fail(node)
			}
			if spied {
				r.spy.record("fail", name, walked)
			}
		}
	})
}

// resolvePredicate implements spec.md §4.4 steps 1-2: try every fact,
// then every rule (renamed fresh), in that order, within a cut barrier
// scoped to this one call — a `!` anywhere in a rule body prunes both
// remaining rules of this call and remaining solutions within its own
// clause, but never reaches outward past this call (combinators.go's
// Disj and Cut already implement the outward-blocking half; this loop
// implements the "stop trying further clauses" half).
func (r *Resolver) resolvePredicate(ctx context.Context, name string, arity int, args []Term, sub *Subst) *Stream {
	callCtx, _ := withCutBarrier(ctx)
	barrier := cutBarrierFrom(callCtx)

	walkedArgs := make([]Term, len(args))
	for i, a := range args {
		walkedArgs[i] = WalkStar(a, sub)
	}
	ground := IsGround(NewList(walkedArgs...))
	var cacheKey string
	if ground {
		cacheKey = cacheKeyFor(name, walkedArgs)
		if count, found := r.store.cacheGet(cacheKey); found {
			return replaySolutionCount(sub, count)
		}
	}

	pred := r.snapshot[predKey(name, arity)]
	callArgs := NewList(args...)

	return generate(func(emit func(*Subst) bool) {
		count := 0
		exhausted := true
		if pred != nil {
			for _, fact := range pred.Facts {
				newSub, ok := Unify(callArgs, fact, sub)
				if !ok {
					continue
				}
				count++
				if !emit(newSub) {
					exhausted = false
					return
				}
			}
		}

		if pred != nil && !barrier.triggered.Load() {
			for _, rule := range pred.Rules {
				mapping := map[int64]*Var{}
				renamedHead := make([]Term, len(rule.HeadArgs))
				for i, h := range rule.HeadArgs {
					renamedHead[i] = renameTerm(h, mapping)
				}
				renamedBody := make([]Term, len(rule.Body))
				for i, b := range rule.Body {
					renamedBody[i] = renameTerm(b, mapping)
				}

				headSub, ok := Unify(callArgs, NewList(renamedHead...), sub)
				if !ok {
					continue
				}

				bodyGoal := r.conjOf(renamedBody)
				bodyStream := bodyGoal(callCtx, headSub)
				for {
					out, ok := bodyStream.Next(ctx)
					if !ok {
						break
					}
					count++
					if !emit(out) {
						bodyStream.Close()
						exhausted = false
						return
					}
				}
				if barrier.triggered.Load() {
					break
				}
			}
		}

		// Only a fully exhausted exploration's count is a sound cache
		// entry — if the caller stopped consuming early (a Limit, a cut
		// further up, once/1), count is a lower bound, not the call's
		// total solution count, and caching it would under-count a later,
		// separate call to the same ground goal.
		if ground && exhausted {
			r.store.cacheSet(cacheKey, count)
		}
	})
}

// replaySolutionCount replays a ground call's cached solution count as
// `count` copies of sub. Every solution of a ground call only differs
// from sub by bindings of fresh variables local to the matched fact or
// rule activation — never by bindings of a variable visible to the
// caller, since the call's own arguments are already fully ground — so
// replaying sub itself `count` times is equivalent to re-deriving each
// solution.
func replaySolutionCount(sub *Subst, count int) *Stream {
	return generate(func(emit func(*Subst) bool) {
		for i := 0; i < count; i++ {
			if !emit(sub) {
				return
			}
		}
	})
}

func cacheKeyFor(name string, walkedArgs []Term) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('/')
	for i, a := range walkedArgs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.String())
	}
	return b.String()
}
