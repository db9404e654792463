// Package notify dispatches knowledge-base change events to registered
// watchers after a mutation has committed. It is the adapted
// counterpart of the teacher's internal/parallel.WorkerPool: instead of
// a long-lived worker pool draining a task channel, each commit fans its
// event out to every watcher concurrently, one goroutine per watcher
// with no concurrency limit, and waits on an error group so that one
// slow or panicking watcher cannot block the
// mutator that triggered it — spec.md §5 requires watcher delivery to
// run "after the transaction commits, asynchronously" and never block
// mutators.
package notify

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Event is the payload delivered to a watcher.
type Event struct {
	Kind      string
	Predicate string
	Args      []string // pre-rendered, so a watcher never touches engine internals
}

// Func is a registered watcher callback.
type Func func(Event)

// Dispatcher fans out committed events to registered watchers on its own
// goroutines, never on the caller's.
type Dispatcher struct {
	logger *zap.Logger
}

// New creates a Dispatcher. A nil logger is replaced with a no-op one.
func New(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logger: logger}
}

// Dispatch delivers ev to every watcher in fns concurrently and returns
// once all have run (or panicked and been recovered). Callers invoke
// Dispatch from its own goroutine if they want commit to return before
// delivery finishes; Dispatcher itself does not impose that — it only
// guarantees panic-safe fan-out, one goroutine per watcher, for whichever
// goroutine calls it.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event, fns map[string]Func) {
	if len(fns) == 0 {
		return
	}
	g, _ := errgroup.WithContext(ctx)
	for id, fn := range fns {
		id, fn := id, fn
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					d.logger.Warn("watcher panicked", zap.String("watcher", id), zap.Any("recovered", r))
				}
			}()
			fn(ev)
			return nil
		})
	}
	_ = g.Wait() // watcher errors are swallowed by design: a failing watcher is logged, never surfaced to the mutator
}
