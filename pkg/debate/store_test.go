package debate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreSession(id string) *Session {
	return newSession(id, "test topic", PositionPro, nil)
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore()

	sess := newStoreSession("d1")
	require.NoError(t, store.Create(sess))
	assert.Equal(t, 1, store.Len())

	got, err := store.Get("d1")
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDuplicateCreate(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Create(newStoreSession("d1")))
	assert.ErrorIs(t, store.Create(newStoreSession("d1")), ErrAlreadyActive)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreRemove(t *testing.T) {
	store := NewMemoryStore()

	sess := newStoreSession("d1")
	require.NoError(t, store.Create(sess))

	removed, err := store.Remove("d1")
	require.NoError(t, err)
	assert.Same(t, sess, removed)
	assert.Zero(t, store.Len())

	_, err = store.Remove("d1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSnapshot(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Create(newStoreSession("d1")))

	snap, err := store.Snapshot("d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", snap.DebateID)
	assert.Equal(t, "test topic", snap.Topic)
	assert.Equal(t, PositionPro, snap.HumanPosition)
	assert.Equal(t, PositionCon, snap.AgentPosition)

	_, err = store.Snapshot("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreList(t *testing.T) {
	store := NewMemoryStore()
	assert.Empty(t, store.List())

	require.NoError(t, store.Create(newStoreSession("d1")))
	require.NoError(t, store.Create(newStoreSession("d2")))

	entries := store.List()
	require.Len(t, entries, 2)
	ids := []string{entries[0].DebateID, entries[1].DebateID}
	assert.ElementsMatch(t, []string{"d1", "d2"}, ids)
	for _, e := range entries {
		assert.False(t, e.LastActive.IsZero())
	}
}
