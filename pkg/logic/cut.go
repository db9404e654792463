package logic

import (
	"context"
	"sync/atomic"
)

// cutBarrier tracks whether a cut (!) has fired within the current clause
// activation. It is carried on the context for the duration of one
// clause's head-match-and-body resolution and is consulted by Disj and
// by the resolver's per-clause loop to prune remaining alternatives —
// the "raise a sentinel, caught at the clause boundary" design spec.md
// §9 calls for, implemented here as a context-scoped flag rather than a
// Go panic/recover, since panics do not reliably cross the goroutine
// boundaries Stream introduces.
type cutBarrier struct {
	triggered atomic.Bool
}

type cutBarrierKey struct{}

// withCutBarrier installs a fresh cut barrier on ctx, shadowing any
// barrier from an enclosing scope so that a cut inside this scope cannot
// prune choice points that belong to the caller, and vice versa. The
// returned cancel func is a no-op; it exists so call sites read
// symmetrically with context.WithCancel and can defer it unconditionally.
func withCutBarrier(ctx context.Context) (context.Context, func()) {
	b := &cutBarrier{}
	return context.WithValue(ctx, cutBarrierKey{}, b), func() {}
}

func cutBarrierFrom(ctx context.Context) *cutBarrier {
	b, _ := ctx.Value(cutBarrierKey{}).(*cutBarrier)
	return b
}

// Cut returns a Goal for the `!` operator: it succeeds exactly once,
// unchanged, and marks the nearest enclosing cut barrier as triggered. If
// cut is used outside of any clause activation (no barrier installed),
// it degrades to plain success — per spec.md §7 CutSignal, malformed use
// of cut outside a clause is converted to ordinary (non-pruning)
// behavior rather than propagated as an error.
func Cut() Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		if b := cutBarrierFrom(ctx); b != nil {
			b.triggered.Store(true)
		}
		return unitStream(sub)
	}
}

// cutTriggered reports whether the nearest enclosing cut barrier on ctx
// has fired.
func cutTriggered(ctx context.Context) bool {
	b := cutBarrierFrom(ctx)
	return b != nil && b.triggered.Load()
}
