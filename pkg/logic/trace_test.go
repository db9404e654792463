package logic

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracer_EnterExitRecordsCallAndExit(t *testing.T) {
	tr := NewTracer()
	ctx, node := tr.enter(context.Background(), "p", []Term{NewInt(1)})
	require.NotNil(t, node)
	_ = ctx
	tr.exit(node)

	assert.Equal(t, "success", node.Status)
	assert.Equal(t, 1, node.ResultCount)

	kinds := make([]string, len(tr.log))
	for i, ev := range tr.log {
		kinds[i] = ev.Kind
	}
	assert.Equal(t, []string{"call", "exit"}, kinds)
}

func TestTracer_Fail(t *testing.T) {
	tr := NewTracer()
	_, node := tr.enter(context.Background(), "p", nil)
	tr.fail(node)
	assert.Equal(t, "fail", node.Status)
}

func TestTracer_RedoIncrementsResultCountUpToCap(t *testing.T) {
	tr := NewTracer()
	_, node := tr.enter(context.Background(), "p", nil)
	tr.exit(node)
	for i := 0; i < maxTracedResults+10; i++ {
		tr.redo(node)
	}
	assert.Equal(t, maxTracedResults, node.ResultCount)
}

func TestTracer_NestedCallsIncreaseDepth(t *testing.T) {
	tr := NewTracer()
	ctx, parent := tr.enter(context.Background(), "outer", nil)
	_, child := tr.enter(ctx, "inner", nil)
	require.NotNil(t, child)
	assert.Equal(t, 0, parent.Depth)
	assert.Equal(t, 1, child.Depth)
	assert.Equal(t, parent.ID, child.ParentID)
}

func TestTracer_DepthCapStopsRecording(t *testing.T) {
	tr := NewTracer(WithTraceDepthCap(1))
	ctx := context.Background()
	var node *TraceNode
	for i := 0; i < 5; i++ {
		ctx, node = tr.enter(ctx, "p", nil)
	}
	assert.Nil(t, node, "a call nested deeper than the depth cap yields a nil node")
}

func TestTracer_TreeReturnsOnlyRoots(t *testing.T) {
	tr := NewTracer()
	ctx, _ := tr.enter(context.Background(), "outer", nil)
	tr.enter(ctx, "inner", nil)

	roots := tr.Tree()
	require.Len(t, roots, 1)
	assert.Equal(t, "outer", roots[0].Predicate)
}

func TestTracer_ChildrenOfRoot(t *testing.T) {
	tr := NewTracer()
	ctx, parent := tr.enter(context.Background(), "outer", nil)
	tr.enter(ctx, "inner", nil)

	children := tr.Children(parent.ID)
	require.Len(t, children, 1)
	assert.Equal(t, "inner", children[0].Predicate)
}

func TestTracer_ChildrenOfUnknownIDIsEmpty(t *testing.T) {
	tr := NewTracer()
	assert.Empty(t, tr.Children(uuid.New()))
}

func TestTracer_LogLimit(t *testing.T) {
	tr := NewTracer()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, node := tr.enter(ctx, "p", nil)
		tr.exit(node)
	}
	assert.Len(t, tr.Log(0), 6)
	assert.Len(t, tr.Log(2), 2)
}

func TestTracer_Stats(t *testing.T) {
	tr := NewTracer()
	_, n1 := tr.enter(context.Background(), "p", nil)
	tr.exit(n1)
	_, n2 := tr.enter(context.Background(), "q", nil)
	tr.fail(n2)

	stats := tr.Stats()
	assert.Equal(t, int64(2), stats["call"])
	assert.Equal(t, int64(1), stats["exit"])
	assert.Equal(t, int64(1), stats["fail"])
}

func TestQuery_TraceDepthCapOverride(t *testing.T) {
	s := NewStore()
	s.AssertFact("p", []Term{NewInt(1)})
	vars := NewVarMap("x")
	it := Query(s, []Term{NewCompound("p", vars["x"])}, vars, QueryOptions{Trace: true, TraceDepthCap: 1})
	defer it.Close()
	_, ok := it.Next()
	require.True(t, ok)
	assert.NotNil(t, it.Trace())
}
