package logic

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lucidkb/logicore/internal/logx"
)

// maxTracedResults caps the result-count displayed on a trace node, per
// spec.md §5's resource bounds.
const maxTracedResults = 100

// defaultTraceDepthCap is the default limit on trace node depth.
const defaultTraceDepthCap = 50

// TraceNode is one call frame in the trace tree, rooted at a top-level
// goal. Grounded on tabling.go's CallPattern/SubgoalTable bookkeeping
// style for the node-indexing idea, generalized from subgoal tabling to
// a general call trace with no teacher analogue beyond that shape.
type TraceNode struct {
	ID          uuid.UUID
	Predicate   string
	Args        []Term
	ParentID    uuid.UUID // uuid.Nil for a root node
	Depth       int
	Status      string // pending | success | fail
	ResultCount int
}

// TraceEvent is one entry of the append-only trace log.
type TraceEvent struct {
	Kind      string // call | exit | fail | redo
	Predicate string
	Args      []Term
	Depth     int
	Timestamp time.Time
	NodeID    uuid.UUID
}

type traceFrame struct {
	NodeID uuid.UUID
	Depth  int
}

type tracerFrameKey struct{}

// Tracer accumulates a call tree and an append-only event log for one or
// more queries. A single Tracer may be shared across queries; callers
// that want per-query isolation construct a fresh one per Query call.
type Tracer struct {
	mu       sync.Mutex
	nodes    map[uuid.UUID]*TraceNode
	order    []uuid.UUID // insertion order, for a stable Tree() walk
	log      []TraceEvent
	depthCap int
	logger   *zap.Logger
}

// TracerOption configures a Tracer at construction time.
type TracerOption func(*Tracer)

// WithTraceDepthCap overrides the default depth cap of 50. Nodes deeper
// than the cap are not recorded — the call still executes normally, it
// is simply invisible to the trace.
func WithTraceDepthCap(n int) TracerOption {
	return func(t *Tracer) { t.depthCap = n }
}

// WithTracerLogger sets the Tracer's structured logger. No tracer code
// path writes to it.
func WithTracerLogger(logger *zap.Logger) TracerOption {
	return func(t *Tracer) { t.logger = logger }
}

// NewTracer builds an empty Tracer.
func NewTracer(opts ...TracerOption) *Tracer {
	t := &Tracer{
		nodes:    map[uuid.UUID]*TraceNode{},
		depthCap: defaultTraceDepthCap,
		logger:   logx.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// enter opens a trace node for predicate(args...), nested under whatever
// frame ctx carries. It returns a context carrying the new frame (so
// nested calls nest under this node) and the node itself, or a nil node
// if the depth cap was exceeded — callers must treat a nil node as "do
// not instrument further" rather than an error.
func (t *Tracer) enter(ctx context.Context, predicate string, args []Term) (context.Context, *TraceNode) {
	parent, _ := ctx.Value(tracerFrameKey{}).(*traceFrame)
	depth := 0
	parentID := uuid.Nil
	if parent != nil {
		depth = parent.Depth + 1
		parentID = parent.NodeID
	}
	newCtx := context.WithValue(ctx, tracerFrameKey{}, &traceFrame{NodeID: uuid.New(), Depth: depth})
	if t.depthCap > 0 && depth > t.depthCap {
		return newCtx, nil
	}
	node := &TraceNode{
		ID:        newCtx.Value(tracerFrameKey{}).(*traceFrame).NodeID,
		Predicate: predicate,
		Args:      args,
		ParentID:  parentID,
		Depth:     depth,
		Status:    "pending",
	}
	t.mu.Lock()
	t.nodes[node.ID] = node
	t.order = append(t.order, node.ID)
	t.log = append(t.log, TraceEvent{Kind: "call", Predicate: predicate, Args: args, Depth: depth, Timestamp: time.Now(), NodeID: node.ID})
	t.mu.Unlock()
	return newCtx, node
}

// exit records the node's first successful yield.
func (t *Tracer) exit(node *TraceNode) {
	if node == nil {
		return
	}
	t.mu.Lock()
	node.Status = "success"
	if node.ResultCount < maxTracedResults {
		node.ResultCount++
	}
	t.log = append(t.log, TraceEvent{Kind: "exit", Predicate: node.Predicate, Args: node.Args, Depth: node.Depth, Timestamp: time.Now(), NodeID: node.ID})
	t.mu.Unlock()
}

// redo records a later successful yield of an already-succeeded node —
// the best-effort incremental result-count update of spec.md §9 Open
// Question 4 (option b: stamped at EXIT, capped at 100).
func (t *Tracer) redo(node *TraceNode) {
	if node == nil {
		return
	}
	t.mu.Lock()
	if node.ResultCount < maxTracedResults {
		node.ResultCount++
	}
	t.log = append(t.log, TraceEvent{Kind: "redo", Predicate: node.Predicate, Args: node.Args, Depth: node.Depth, Timestamp: time.Now(), NodeID: node.ID})
	t.mu.Unlock()
}

// fail records that a node produced zero solutions.
func (t *Tracer) fail(node *TraceNode) {
	if node == nil {
		return
	}
	t.mu.Lock()
	node.Status = "fail"
	t.log = append(t.log, TraceEvent{Kind: "fail", Predicate: node.Predicate, Args: node.Args, Depth: node.Depth, Timestamp: time.Now(), NodeID: node.ID})
	t.mu.Unlock()
}

// Log returns the most recent limit trace events, oldest first within
// that window. limit <= 0 returns the entire log.
func (t *Tracer) Log(limit int) []TraceEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	if limit <= 0 || limit >= len(t.log) {
		return append([]TraceEvent{}, t.log...)
	}
	return append([]TraceEvent{}, t.log[len(t.log)-limit:]...)
}

// Tree returns the root nodes of the trace tree, in call order. Children
// are reachable from a root through Children, which scans for a matching ParentID —
// kept as a flat lookup rather than building parent/child pointers, since
// trace trees in practice are shallow (depth cap 50) and small.
func (t *Tracer) Tree() []*TraceNode {
	t.mu.Lock()
	defer t.mu.Unlock()
	var roots []*TraceNode
	for _, id := range t.order {
		n := t.nodes[id]
		if n.ParentID == uuid.Nil {
			roots = append(roots, n)
		}
	}
	return roots
}

// Children returns the direct children of the node with id parentID, in
// call order.
func (t *Tracer) Children(parentID uuid.UUID) []*TraceNode {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*TraceNode
	for _, id := range t.order {
		n := t.nodes[id]
		if n.ParentID == parentID {
			out = append(out, n)
		}
	}
	return out
}

// Stats summarizes the trace log by event kind.
func (t *Tracer) Stats() map[string]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := map[string]int64{}
	for _, ev := range t.log {
		out[ev.Kind]++
	}
	return out
}
