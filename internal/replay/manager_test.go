package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(nil)
	s := m.Create(newRecorder(), NewManualClock())

	got, ok := m.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Len(t, m.List(), 1)

	m.Delete(s.ID())
	_, ok = m.Get(s.ID())
	assert.False(t, ok)
	assert.False(t, s.alive(), "delete closes the session")
	assert.Empty(t, m.List())

	m.Delete(s.ID()) // idempotent
}

func TestSessionsGetDistinctIDs(t *testing.T) {
	m := NewManager(nil)
	a := m.Create(nil, nil)
	b := m.Create(nil, nil)
	assert.NotEqual(t, a.ID(), b.ID())
}
