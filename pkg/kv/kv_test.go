package kv_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docroute/docroute/pkg/kv"
)

func newStore(t *testing.T) *kv.BadgerStore {
	t.Helper()
	store, err := kv.NewBadgerStore(&kv.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSetGet(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Set([]byte("record:1"), []byte("payload")))

	value, err := store.Get([]byte("record:1"))
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), value)
}

func TestGetMissingKey(t *testing.T) {
	store := newStore(t)

	_, err := store.Get([]byte("record:missing"))
	require.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestLastWriterWins(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Set([]byte("record:1"), []byte("first")))
	require.NoError(t, store.Set([]byte("record:1"), []byte("second")))

	value, err := store.Get([]byte("record:1"))
	require.NoError(t, err)
	require.Equal(t, []byte("second"), value)
}

func TestDelete(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Set([]byte("record:1"), []byte("payload")))
	require.NoError(t, store.Delete([]byte("record:1")))

	_, err := store.Get([]byte("record:1"))
	require.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestExists(t *testing.T) {
	store := newStore(t)

	ok, err := store.Exists([]byte("record:1"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set([]byte("record:1"), []byte("payload")))

	ok, err = store.Exists([]byte("record:1"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestScanPrefix(t *testing.T) {
	store := newStore(t)

	for i := range 5 {
		key := fmt.Sprintf("record:%d", i)
		require.NoError(t, store.Set([]byte(key), []byte("v")))
	}
	require.NoError(t, store.Set([]byte("queue:pending"), []byte("v")))

	results, err := store.Scan([]byte("record:"), 0)
	require.NoError(t, err)
	require.Len(t, results, 5)

	limited, err := store.Scan([]byte("record:"), 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestClosedStore(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err := store.Get([]byte("record:1"))
	require.ErrorIs(t, err, kv.ErrClosed)

	err = store.Set([]byte("record:1"), []byte("v"))
	require.ErrorIs(t, err, kv.ErrClosed)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()

	store, err := kv.NewBadgerStore(&kv.Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, store.Set([]byte("record:1"), []byte("payload")))
	require.NoError(t, store.Close())

	reopened, err := kv.NewBadgerStore(&kv.Config{Dir: dir})
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get([]byte("record:1"))
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), value)
}
