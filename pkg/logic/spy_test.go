package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpyTable_SpyNospyIsSpied(t *testing.T) {
	st := NewSpyTable()
	assert.False(t, st.IsSpied("p"))

	st.Spy("p")
	assert.True(t, st.IsSpied("p"))

	st.Nospy("p")
	assert.False(t, st.IsSpied("p"))
}

func TestSpyTable_NospyAllClearsEveryPoint(t *testing.T) {
	st := NewSpyTable()
	st.Spy("p")
	st.Spy("q")
	st.NospyAll()
	assert.Empty(t, st.Points())
}

func TestSpyTable_PointsListsAllSpied(t *testing.T) {
	st := NewSpyTable()
	st.Spy("p")
	st.Spy("q")
	assert.ElementsMatch(t, []string{"p", "q"}, st.Points())
}

func TestSpyTable_RecordAppendsLogAndStats(t *testing.T) {
	st := NewSpyTable()
	st.Spy("p")
	st.record("call", "p", []Term{NewInt(1)})
	st.record("exit", "p", []Term{NewInt(1)})

	assert.Len(t, st.Log(0), 2)
	stats := st.Stats()
	assert.Equal(t, int64(1), stats["call"])
	assert.Equal(t, int64(1), stats["exit"])
}

func TestSpyTable_LogLimit(t *testing.T) {
	st := NewSpyTable()
	st.record("call", "p", nil)
	st.record("call", "p", nil)
	st.record("call", "p", nil)
	assert.Len(t, st.Log(1), 1)
	assert.Len(t, st.Log(0), 3)
}

func TestSpyTable_ArityIndependentKey(t *testing.T) {
	st := NewSpyTable()
	st.Spy("p")
	assert.True(t, st.IsSpied("p"), "a spy point is keyed by predicate name only, not arity")
}
