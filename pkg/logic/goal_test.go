package logic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEq_SuccessAndFailure(t *testing.T) {
	ctx := context.Background()
	s := Eq(NewInt(1), NewInt(1))(ctx, EmptySubst)
	_, ok := s.Next(ctx)
	assert.True(t, ok)

	s = Eq(NewInt(1), NewInt(2))(ctx, EmptySubst)
	_, ok = s.Next(ctx)
	assert.False(t, ok)
}

func TestStream_CloseStopsProducer(t *testing.T) {
	ctx := context.Background()
	s := generate(func(emit func(*Subst) bool) {
		for i := 0; emit(EmptySubst); i++ {
		}
	})
	first, ok := s.Next(ctx)
	require.True(t, ok)
	assert.Nil(t, first)
	s.Close()
	_, ok = s.Next(ctx)
	assert.False(t, ok)
}

func TestStream_Take(t *testing.T) {
	ctx := context.Background()
	s := generate(func(emit func(*Subst) bool) {
		for i := 0; i < 3; i++ {
			if !emit(EmptySubst) {
				return
			}
		}
	})
	got, more := s.Take(ctx, 2)
	assert.Len(t, got, 2)
	assert.True(t, more)

	rest, more := s.Take(ctx, 5)
	assert.Len(t, rest, 1)
	assert.False(t, more)
}

func TestDrain(t *testing.T) {
	ctx := context.Background()
	s := generate(func(emit func(*Subst) bool) {
		emit(EmptySubst)
		emit(EmptySubst)
	})
	out := drain(ctx, s)
	assert.Len(t, out, 2)
}
