package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSaveLoad(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	sess := New("abc")
	sess.Set("visits", 3)
	require.NoError(t, store.Save(sess))

	assert.True(t, store.Has("abc"))

	loaded, err := store.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.ID)
	assert.Equal(t, 3, loaded.Get("visits", 0))

	// the loaded session is a copy until saved back
	loaded.Set("visits", 4)
	again, err := store.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Get("visits", 0))
}

func TestMemoryStoreMissing(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	assert.False(t, store.Has("nope"))

	_, err := store.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	require.NoError(t, store.Save(New("abc")))
	require.NoError(t, store.Delete("abc"))

	assert.False(t, store.Has("abc"))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)

	require.NoError(t, store.Save(New("abc")))
	assert.True(t, store.Has("abc"))

	time.Sleep(20 * time.Millisecond)

	assert.False(t, store.Has("abc"))
	_, err := store.Load("abc")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, store.PruneExpired())
	assert.Equal(t, 0, store.PruneExpired())
}

func TestMemoryStoreSaveRefreshesDeadline(t *testing.T) {
	store := NewMemoryStore(30 * time.Millisecond)

	require.NoError(t, store.Save(New("abc")))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, store.Save(New("abc")))
	time.Sleep(20 * time.Millisecond)

	assert.True(t, store.Has("abc"))
}
