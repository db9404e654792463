package logic

import "context"

// NewVarMap allocates one fresh named variable per name, the shared
// `?name` → *Var map a caller threads through the goals it builds and
// then passes to Query so results come back keyed by the same names.
// Grounded on the teacher's Run(n, func(q *Var) Goal) closure-based
// variable capture (core_test.go), generalized from a single captured
// variable to an arbitrary named set.
func NewVarMap(names ...string) map[string]*Var {
	out := make(map[string]*Var, len(names))
	for _, n := range names {
		out[n] = Fresh(n)
	}
	return out
}

// QueryOptions configures a single top-level query.
type QueryOptions struct {
	// Limit caps the number of results Next will return; 0 means
	// unlimited (the caller stops by exhausting the stream or calling
	// Close).
	Limit int
	// Trace enables a fresh Tracer for the duration of this query; the
	// result is retrievable via ResultIter.Trace after the query ends.
	Trace bool
	// TraceDepthCap overrides the tracer's default depth cap (50) when
	// Trace is set. Zero keeps the default.
	TraceDepthCap int
	// Spy attaches an existing SpyTable so spy points set before the
	// query observe this query's predicate calls too.
	Spy *SpyTable
}

// TraceSnapshot is the {log, tree, stats} bundle spec.md §6.1 returns
// alongside query results when Trace is requested.
type TraceSnapshot struct {
	Log   []TraceEvent
	Tree  []*TraceNode
	Stats map[string]int64
}

// QueryResult is one answer: the shared variable map's names bound to
// their reified values under that answer's substitution.
type QueryResult struct {
	Bindings map[string]Term
}

// ResultIter is a pull-based iterator over a query's solutions.
type ResultIter struct {
	ctx    context.Context
	cancel func()
	stream *Stream
	vars   map[string]*Var
	limit  int
	count  int
	tracer *Tracer
}

// Query resolves goals (implicitly conjoined, left to right) against
// store and returns an iterator over its solutions. vars is the shared
// `?name` → *Var map used to build goals; Next's results are keyed by
// the same names. Grounded on spec.md §4.7's Query API and the teacher's
// Run-closure variable capture, generalized to a named-variable map
// (see DESIGN.md).
func Query(store *Store, goals []Term, vars map[string]*Var, opts QueryOptions) *ResultIter {
	store.IncrementQueries()

	var tracer *Tracer
	if opts.Trace {
		var topts []TracerOption
		if opts.TraceDepthCap > 0 {
			topts = append(topts, WithTraceDepthCap(opts.TraceDepthCap))
		}
		tracer = NewTracer(topts...)
	}

	var resolverOpts []ResolverOption
	if tracer != nil {
		resolverOpts = append(resolverOpts, WithTracer(tracer))
	}
	if opts.Spy != nil {
		resolverOpts = append(resolverOpts, WithSpy(opts.Spy))
	}
	resolver := NewResolver(store, resolverOpts...)
	goal := resolver.conjOf(goals)

	ctx, cancel := context.WithCancel(context.Background())
	stream := goal(ctx, EmptySubst)

	return &ResultIter{
		ctx:    ctx,
		cancel: cancel,
		stream: stream,
		vars:   vars,
		limit:  opts.Limit,
		tracer: tracer,
	}
}

// Next pulls the next solution. ok is false once the stream is exhausted
// or the configured Limit has been reached.
func (it *ResultIter) Next() (QueryResult, bool) {
	if it.limit > 0 && it.count >= it.limit {
		it.stream.Close()
		return QueryResult{}, false
	}
	sub, ok := it.stream.Next(it.ctx)
	if !ok {
		return QueryResult{}, false
	}
	it.count++
	bindings := make(map[string]Term, len(it.vars))
	for name, v := range it.vars {
		bindings[name] = Reify(v, sub)
	}
	return QueryResult{Bindings: bindings}, true
}

// Close abandons the query, releasing any goroutine still blocked
// producing further solutions. Safe to call after Next has already
// returned ok=false.
func (it *ResultIter) Close() {
	it.stream.Close()
	it.cancel()
}

// Trace returns the trace snapshot accumulated so far, or nil if this
// query was not run with Trace: true.
func (it *ResultIter) Trace() *TraceSnapshot {
	if it.tracer == nil {
		return nil
	}
	return &TraceSnapshot{
		Log:   it.tracer.Log(0),
		Tree:  it.tracer.Tree(),
		Stats: it.tracer.Stats(),
	}
}
