package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_DeliversToEveryWatcher(t *testing.T) {
	d := New(nil)
	var mu sync.Mutex
	received := map[string]Event{}

	fns := map[string]Func{
		"a": func(ev Event) { mu.Lock(); received["a"] = ev; mu.Unlock() },
		"b": func(ev Event) { mu.Lock(); received["b"] = ev; mu.Unlock() },
	}
	d.Dispatch(context.Background(), Event{Kind: "assert", Predicate: "p"}, fns)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, received, 2)
	assert.Equal(t, "assert", received["a"].Kind)
	assert.Equal(t, "p", received["b"].Predicate)
}

func TestDispatcher_NoWatchersIsNoop(t *testing.T) {
	d := New(nil)
	d.Dispatch(context.Background(), Event{Kind: "assert"}, map[string]Func{})
}

func TestDispatcher_RecoversFromPanickingWatcher(t *testing.T) {
	d := New(nil)
	called := false
	fns := map[string]Func{
		"panics": func(Event) { panic("boom") },
		"ok":     func(Event) { called = true },
	}
	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), Event{Kind: "assert"}, fns)
	})
	assert.True(t, called, "a panicking watcher must not prevent other watchers from running")
}
