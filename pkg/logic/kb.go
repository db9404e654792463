package logic

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/lucidkb/logicore/internal/logx"
	"github.com/lucidkb/logicore/internal/notify"
)

// Rule is a stored clause: predicate(HeadArgs...) :- Body, where Body is
// a conjunction of goal terms. Facts never appear here — a fact is just
// an entry in a predicate's Facts set; a Rule always has a Body.
type Rule struct {
	ID        int64
	Predicate string
	HeadArgs  []Term
	Body      []Term
}

// predicate holds everything the KB knows about one predicate/arity pair.
// Facts is a set (duplicates collapse on assert); Rules is an ordered
// sequence, insertion order preserved, per spec.md §3.3. Both are
// replaced wholesale (never mutated in place) on every write, which is
// what lets Store hand out *predicate pointers to readers without any
// further locking — grounded on pldb.go's Database/Relation/Fact
// copy-on-write design, generalized from facts-only to facts+rules and
// stripped of pldb's per-column indexes (spec.md's Non-goals exclude
// indexing beyond predicate name).
type predicate struct {
	Facts []Term
	Rules []*Rule
}

func (p *predicate) clone() *predicate {
	if p == nil {
		return &predicate{}
	}
	return &predicate{
		Facts: append([]Term{}, p.Facts...),
		Rules: append([]*Rule{}, p.Rules...),
	}
}

// HistoryEntry is one append-only record of a committed mutation.
type HistoryEntry struct {
	ID        ulid.ULID
	Kind      string // assert | retract | add_rule | clear | import
	Predicate string
	Args      []Term
	Timestamp time.Time
}

// Stats is the snapshot returned by Store.Stats, matching spec.md §6.1's
// stats() shape exactly.
type Stats struct {
	TotalFacts     int64
	TotalRules     int64
	Predicates     int64
	Queries        int64
	FactsAsserted  int64
	FactsRetracted int64
	RulesAdded     int64
}

// Store is the transactional knowledge base: facts and rules per
// predicate, an append-only history log, an invalidation-driven query
// cache, and post-commit watcher dispatch. Every mutator holds mu for
// its whole transaction so that a reader calling snapshotPredicates never observes
// a half-applied change, and the returned snapshot is immune to any
// mutation that commits after it was taken, since predicates are only
// ever replaced, never edited in place.
type Store struct {
	mu         sync.RWMutex
	predicates map[string]*predicate
	history    []HistoryEntry
	historyCap int

	// cache memoizes a ground predicate call's full solution COUNT, not a
	// bare success/fail flag — a ground goal can have more than one
	// independent derivation (e.g. a diamond in an ancestor/path KB), and
	// collapsing that to a boolean would silently drop solutions on a
	// cache hit. See cacheGet/cacheSet below.
	cache *lru.Cache[string, int]

	watchMu  sync.RWMutex
	watchers map[string]notify.Func
	notifier *notify.Dispatcher

	logger *zap.Logger

	ulidEntropy *ulidSource
	nextRuleID  int64

	queries        int64
	factsAsserted  int64
	factsRetracted int64
	rulesAdded     int64
}

// Option configures a Store at construction time, the functional-option
// idiom the teacher uses for Model/Solver construction.
type Option func(*Store)

// WithLogger sets the structured logger used for Debug/Warn diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithCacheSize bounds the query cache's entry count. The default is 4096.
func WithCacheSize(n int) Option {
	return func(s *Store) {
		c, err := lru.New[string, int](n)
		if err == nil {
			s.cache = c
		}
	}
}

// WithHistoryCap bounds how many history entries are retained, dropping
// the oldest once the cap is exceeded. Zero (the default) means unbounded.
func WithHistoryCap(n int) Option {
	return func(s *Store) { s.historyCap = n }
}

// NewStore builds an empty knowledge base.
func NewStore(opts ...Option) *Store {
	cache, _ := lru.New[string, int](4096)
	s := &Store{
		predicates:  map[string]*predicate{},
		cache:       cache,
		watchers:    map[string]notify.Func{},
		logger:      logx.Nop(),
		ulidEntropy: newULIDSource(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notify.New(s.logger)
	}
	return s
}

func predKey(predicate string, arity int) string {
	return predicate + "/" + strconv.Itoa(arity)
}

// AssertFact adds args as a fact of predicate. Facts are a set: asserting
// one already present is a no-op on the fact set but still appends a
// history entry, per spec.md's explicit "append history anyway" pick
// (see DESIGN.md Open Question 3). Returns whether the fact was new.
func (s *Store) AssertFact(predicateName string, args []Term) bool {
	key := predKey(predicateName, len(args))
	fact := factTerm(args)

	s.mu.Lock()
	pred := s.predicates[key].clone()
	isNew := !containsTerm(pred.Facts, fact)
	if isNew {
		pred.Facts = append(pred.Facts, fact)
		s.predicates[key] = pred
	} else if s.predicates[key] == nil {
		s.predicates[key] = pred
	}
	s.factsAsserted++
	s.appendHistoryLocked("assert", predicateName, args)
	s.mu.Unlock()

	s.invalidateCache()
	s.logger.Debug("fact asserted", zap.String("predicate", predicateName), zap.Bool("new", isNew))
	s.dispatch("assert", predicateName, args)
	return isNew
}

// RetractFact removes args from predicate's fact set, if present.
// Returns whether anything was removed.
func (s *Store) RetractFact(predicateName string, args []Term) bool {
	key := predKey(predicateName, len(args))
	fact := factTerm(args)

	s.mu.Lock()
	existing := s.predicates[key]
	removed := false
	if existing != nil {
		pred := existing.clone()
		out := pred.Facts[:0]
		for _, f := range pred.Facts {
			if !removed && structurallyEqual(f, fact) {
				removed = true
				continue
			}
			out = append(out, f)
		}
		pred.Facts = out
		s.predicates[key] = pred
	}
	if removed {
		s.factsRetracted++
	}
	s.appendHistoryLocked("retract", predicateName, args)
	s.mu.Unlock()

	s.invalidateCache()
	s.logger.Debug("fact retract attempted", zap.String("predicate", predicateName), zap.Bool("removed", removed))
	s.dispatch("retract", predicateName, args)
	return removed
}

// AddRule appends a rule predicate(headArgs...) :- body to predicate's
// rule sequence. Rules are never deduplicated: two structurally
// identical rules are two distinct entries, tried in the order added.
// Returns ErrMalformedClause, leaving the KB unchanged, if predicateName
// is empty or body is empty — a headless predicate or a bodyless "rule"
// (which is just a fact, and belongs in AssertFact) does not match the
// shape spec.md §7 requires a stored rule to have.
func (s *Store) AddRule(predicateName string, headArgs []Term, body []Term) (*Rule, error) {
	if predicateName == "" || len(body) == 0 {
		return nil, fmt.Errorf("%w: predicate %q, %d head arg(s), %d body goal(s)", ErrMalformedClause, predicateName, len(headArgs), len(body))
	}
	key := predKey(predicateName, len(headArgs))

	s.mu.Lock()
	s.nextRuleID++
	rule := &Rule{ID: s.nextRuleID, Predicate: predicateName, HeadArgs: headArgs, Body: body}
	pred := s.predicates[key].clone()
	pred.Rules = append(pred.Rules, rule)
	s.predicates[key] = pred
	s.rulesAdded++
	s.appendHistoryLocked("add_rule", predicateName, headArgs)
	s.mu.Unlock()

	s.invalidateCache()
	s.logger.Debug("rule added", zap.String("predicate", predicateName), zap.Int64("rule_id", rule.ID))
	s.dispatch("add_rule", predicateName, headArgs)
	return rule, nil
}

// Clear empties facts and rules, empties the history and then records a
// single "clear" entry in it, and resets mutation counters.
// Query statistics (Queries) are left untouched — they describe read
// traffic, not KB content.
func (s *Store) Clear() {
	s.mu.Lock()
	s.predicates = map[string]*predicate{}
	s.history = nil
	s.factsAsserted = 0
	s.factsRetracted = 0
	s.rulesAdded = 0
	s.appendHistoryLocked("clear", "", nil)
	s.mu.Unlock()

	s.invalidateCache()
	s.logger.Debug("knowledge base cleared")
	s.dispatch("clear", "", nil)
}

// FactsOf returns a snapshot copy of predicate's current fact set.
func (s *Store) FactsOf(predicateName string, arity int) []Term {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pred := s.predicates[predKey(predicateName, arity)]
	if pred == nil {
		return nil
	}
	return append([]Term{}, pred.Facts...)
}

// RulesOf returns a snapshot copy of predicate's current rule sequence.
func (s *Store) RulesOf(predicateName string, arity int) []*Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pred := s.predicates[predKey(predicateName, arity)]
	if pred == nil {
		return nil
	}
	return append([]*Rule{}, pred.Rules...)
}

// snapshotPredicates clones the top-level predicate map under a brief
// read lock and hands the clone to the caller with no further locking
// needed: individual *predicate values are immutable once published, so
// a query holding this clone is isolated from every mutation that
// commits after the clone was taken — the "wait-free over the snapshot"
// reader contract of spec.md §4.3.
func (s *Store) snapshotPredicates() map[string]*predicate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := make(map[string]*predicate, len(s.predicates))
	for k, v := range s.predicates {
		clone[k] = v
	}
	return clone
}

// History returns the most recent limit history entries, oldest first
// within that window. limit <= 0 returns the entire log.
func (s *Store) History(limit int) []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit >= len(s.history) {
		return append([]HistoryEntry{}, s.history...)
	}
	return append([]HistoryEntry{}, s.history[len(s.history)-limit:]...)
}

func (s *Store) appendHistoryLocked(kind, predicateName string, args []Term) {
	s.history = append(s.history, HistoryEntry{
		ID:        s.ulidEntropy.next(),
		Kind:      kind,
		Predicate: predicateName,
		Args:      append([]Term{}, args...),
		Timestamp: time.Now(),
	})
	if s.historyCap > 0 && len(s.history) > s.historyCap {
		s.history = s.history[len(s.history)-s.historyCap:]
	}
}

// Stats returns a point-in-time snapshot of KB size and mutation
// counters, matching spec.md §6.1's stats() shape.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var totalFacts, totalRules int64
	for _, pred := range s.predicates {
		totalFacts += int64(len(pred.Facts))
		totalRules += int64(len(pred.Rules))
	}
	return Stats{
		TotalFacts:     totalFacts,
		TotalRules:     totalRules,
		Predicates:     int64(len(s.predicates)),
		Queries:        s.queries,
		FactsAsserted:  s.factsAsserted,
		FactsRetracted: s.factsRetracted,
		RulesAdded:     s.rulesAdded,
	}
}

// IncrementQueries is called once per top-level Query, by the Query API.
func (s *Store) IncrementQueries() {
	s.mu.Lock()
	s.queries++
	s.mu.Unlock()
}

// Watch registers fn under id, to be invoked with an Event after every
// committed mutation. Re-registering an existing id replaces its callback.
func (s *Store) Watch(id string, fn notify.Func) {
	s.watchMu.Lock()
	s.watchers[id] = fn
	s.watchMu.Unlock()
}

// Unwatch removes the watcher registered under id, if any.
func (s *Store) Unwatch(id string) {
	s.watchMu.Lock()
	delete(s.watchers, id)
	s.watchMu.Unlock()
}

func (s *Store) dispatch(kind, predicateName string, args []Term) {
	s.watchMu.RLock()
	fns := make(map[string]notify.Func, len(s.watchers))
	for id, fn := range s.watchers {
		fns[id] = fn
	}
	s.watchMu.RUnlock()
	if len(fns) == 0 {
		return
	}
	rendered := make([]string, len(args))
	for i, a := range args {
		rendered[i] = a.String()
	}
	ev := notify.Event{Kind: kind, Predicate: predicateName, Args: rendered}
	go s.notifier.Dispatch(context.Background(), ev, fns)
}

// cacheGet and cacheSet back the resolver's ground-call memoization (spec
// §9 Open Question 1: sound exact-match memoization, no unification-based
// subsumption). The cache is purged wholesale on every mutator commit, so
// it only ever reflects the current knowledge base. The stored value is
// the call's total solution count, so a cache hit can replay every
// derivation the first resolution found rather than collapsing them to a
// single success.
func (s *Store) cacheGet(key string) (int, bool) {
	if s.cache == nil {
		return 0, false
	}
	return s.cache.Get(key)
}

func (s *Store) cacheSet(key string, count int) {
	if s.cache == nil {
		return
	}
	s.cache.Add(key, count)
}

func (s *Store) invalidateCache() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func containsTerm(terms []Term, t Term) bool {
	for _, existing := range terms {
		if structurallyEqual(existing, t) {
			return true
		}
	}
	return false
}

// factTerm packs a fact's argument tuple into a single comparable term so
// the fact set can be deduplicated with structurallyEqual.
func factTerm(args []Term) Term {
	return NewList(args...)
}

// ulidSource generates monotonic ULIDs for history entries, using the
// recommended monotonic-entropy wrapper so that entries committed within
// the same millisecond still sort strictly by insertion order.
type ulidSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newULIDSource() *ulidSource {
	seed := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &ulidSource{entropy: ulid.Monotonic(seed, 0)}
}

func (u *ulidSource) next() ulid.ULID {
	u.mu.Lock()
	defer u.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), u.entropy)
	if err != nil {
		// Only fails if the entropy source errors, which the seeded PRNG
		// never does; fall back to a zero-entropy id rather than panicking.
		id, _ = ulid.New(ulid.Timestamp(time.Now()), nil)
	}
	return id
}
