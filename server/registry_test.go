package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIDsStartAtOneAndIncrease(t *testing.T) {
	r := NewRegistry()
	var last uint32
	for i := 0; i < 100; i++ {
		id := r.NextID()
		assert.Greater(t, id, last)
		last = id
	}
	assert.EqualValues(t, 100, last)
}

func TestRegistryOpenAndReplace(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}
	build := func(id uint32) *Session {
		return newTestSession(rec, Notification{ID: id}, 0, false)
	}

	first := r.open(0, build)
	assert.EqualValues(t, 1, first.ID())
	first.start(nil)

	second := r.open(first.ID(), build)
	assert.Equal(t, first.ID(), second.ID())
	got, ok := r.Get(first.ID())
	require.True(t, ok)
	assert.Same(t, second, got)

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("replaced session still running")
	}

	// the superseded session must not drop its successor
	assert.False(t, r.retire(first))
	assert.Equal(t, 1, r.Len())

	// unknown ids get a fresh one
	third := r.open(77, build)
	assert.EqualValues(t, 2, third.ID())

	assert.True(t, r.retire(second))
	assert.True(t, r.retire(third))
	assert.False(t, r.retire(third))
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, rec.signals)
}

func TestRegistryNeverReusesRetiredID(t *testing.T) {
	r := NewRegistry()
	build := func(id uint32) *Session {
		return newTestSession(&recorder{}, Notification{ID: id}, 0, false)
	}

	closing := r.open(0, build)
	require.True(t, r.retire(closing))

	next := r.open(closing.ID(), build)
	assert.NotEqual(t, closing.ID(), next.ID())
}
