package logic

import "context"

// Stream is a lazy, possibly-infinite sequence of substitutions. Pulling
// one answer via Next advances the underlying search just enough to
// produce it — the whole solution set never needs to materialize. This
// mirrors the teacher's channel-backed Stream (core.go), kept as-is in
// shape: an unbuffered channel so the producer goroutine blocks between
// items until the consumer asks for the next one, which is what makes
// the stream demand-driven rather than eager.
type Stream struct {
	items chan *Subst
	done  chan struct{}
}

func newStream() *Stream {
	return &Stream{
		items: make(chan *Subst),
		done:  make(chan struct{}),
	}
}

// Close tells the stream's producer to stop; it is safe to call multiple
// times and safe to call on an exhausted stream. Abandoning a Stream by
// calling Close (instead of draining it with Next) releases any inner
// goroutines blocked on a send, since every producer selects on done
// alongside its send.
func (s *Stream) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *Stream) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// emit delivers sub to the consumer, blocking until it is received or the
// stream is closed. It returns false if the stream was closed first, in
// which case the caller (a producer goroutine) should stop immediately.
func (s *Stream) emit(sub *Subst) bool {
	select {
	case s.items <- sub:
		return true
	case <-s.done:
		return false
	}
}

// Next pulls the next substitution from the stream, blocking until one is
// produced, the stream is exhausted, or ctx is cancelled. ok is false on
// exhaustion or cancellation.
func (s *Stream) Next(ctx context.Context) (*Subst, bool) {
	select {
	case sub, open := <-s.items:
		if !open {
			return nil, false
		}
		return sub, true
	case <-ctx.Done():
		s.Close()
		return nil, false
	case <-s.done:
		return nil, false
	}
}

// Take pulls up to n substitutions, returning them along with whether the
// stream might still have more.
func (s *Stream) Take(ctx context.Context, n int) ([]*Subst, bool) {
	results := make([]*Subst, 0, n)
	for i := 0; i < n; i++ {
		sub, ok := s.Next(ctx)
		if !ok {
			return results, false
		}
		results = append(results, sub)
	}
	return results, true
}

// unitStream returns a Stream producing exactly sub, then exhausting.
func unitStream(sub *Subst) *Stream {
	s := newStream()
	go func() {
		defer close(s.items)
		s.emit(sub)
	}()
	return s
}

// emptyStream returns a Stream with no solutions.
func emptyStream() *Stream {
	s := newStream()
	close(s.items)
	return s
}

// generate runs produce in its own goroutine, closing the stream's items
// channel when produce returns. produce should call emit for each
// solution and stop as soon as emit returns false.
func generate(produce func(emit func(*Subst) bool)) *Stream {
	s := newStream()
	go func() {
		defer close(s.items)
		produce(s.emit)
	}()
	return s
}

// Goal is a function from a substitution to a lazy stream of extended
// substitutions — the core abstraction of the resolver. Built-ins,
// facts, rule bodies, and the combinators in combinators.go are all
// Goals. Kept from the teacher's core.go Goal type, retyped to close
// directly over *Subst instead of the teacher's ConstraintStore
// interface: the ConstraintStore layer exists only to host finite-domain
// constraint propagation, which is out of scope here (see DESIGN.md).
type Goal func(ctx context.Context, sub *Subst) *Stream

// Success is a Goal that always succeeds, unchanged, with its input
// substitution.
var Success Goal = func(ctx context.Context, sub *Subst) *Stream {
	return unitStream(sub)
}

// Failure is a Goal that never succeeds.
var Failure Goal = func(ctx context.Context, sub *Subst) *Stream {
	return emptyStream()
}

// unitGoal returns a Goal that succeeds once with sub, ignoring the
// substitution it is called with.
func unitGoal(sub *Subst) Goal {
	return func(ctx context.Context, _ *Subst) *Stream {
		return unitStream(sub)
	}
}

// Eq is a Goal that unifies term1 and term2 and succeeds iff they unify.
func Eq(term1, term2 Term) Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		newSub, ok := Unify(term1, term2, sub)
		if !ok {
			return emptyStream()
		}
		return unitStream(newSub)
	}
}

// drain pulls every remaining solution from s, respecting cancellation,
// and returns them as a slice. The package's tests use it to collect
// every solution of a goal.
func drain(ctx context.Context, s *Stream) []*Subst {
	var out []*Subst
	for {
		sub, ok := s.Next(ctx)
		if !ok {
			return out
		}
		out = append(out, sub)
	}
}
