package logic

import (
	"sync"
	"time"
)

// SpyEvent is one entry of a spy point's dedicated log, independent of
// general tracing (spec.md §4.8: "Spy and trace compose").
type SpyEvent struct {
	Kind      string // call | exit | fail | redo
	Predicate string
	Args      []Term
	Timestamp time.Time
}

// SpyTable tracks which predicates are spied and records their call
// events into a dedicated log, separate from Tracer's general trace —
// spec.md §3.6/§4.8 describes spy points as "a per-predicate debug
// trigger... independent of general tracing". Keyed by predicate name
// only (not arity), matching spec.md's "set of predicate atoms" wording.
type SpyTable struct {
	mu     sync.RWMutex
	points map[string]bool
	log    []SpyEvent
	stats  map[string]int64
}

// NewSpyTable builds an empty spy table.
func NewSpyTable() *SpyTable {
	return &SpyTable{
		points: map[string]bool{},
		stats:  map[string]int64{},
	}
}

// Spy adds predicate to the set of spied predicates.
func (s *SpyTable) Spy(predicate string) {
	s.mu.Lock()
	s.points[predicate] = true
	s.mu.Unlock()
}

// Nospy removes predicate from the set of spied predicates.
func (s *SpyTable) Nospy(predicate string) {
	s.mu.Lock()
	delete(s.points, predicate)
	s.mu.Unlock()
}

// NospyAll clears every spy point.
func (s *SpyTable) NospyAll() {
	s.mu.Lock()
	s.points = map[string]bool{}
	s.mu.Unlock()
}

// IsSpied reports whether predicate currently has a spy point.
func (s *SpyTable) IsSpied(predicate string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.points[predicate]
}

// Points returns the currently spied predicate names, in no particular
// order.
func (s *SpyTable) Points() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.points))
	for p := range s.points {
		out = append(out, p)
	}
	return out
}

// record appends a spy event and bumps its per-kind counter. Called only
// for predicates already confirmed spied by the caller.
func (s *SpyTable) record(kind, predicate string, args []Term) {
	s.mu.Lock()
	s.log = append(s.log, SpyEvent{Kind: kind, Predicate: predicate, Args: args, Timestamp: time.Now()})
	s.stats[kind]++
	s.mu.Unlock()
}

// Log returns the most recent limit spy events, oldest first within that
// window. limit <= 0 returns the entire log.
func (s *SpyTable) Log(limit int) []SpyEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit >= len(s.log) {
		return append([]SpyEvent{}, s.log...)
	}
	return append([]SpyEvent{}, s.log[len(s.log)-limit:]...)
}

// Stats returns per-event-kind counts accumulated across all spy points.
func (s *SpyTable) Stats() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int64, len(s.stats))
	for k, v := range s.stats {
		out[k] = v
	}
	return out
}
