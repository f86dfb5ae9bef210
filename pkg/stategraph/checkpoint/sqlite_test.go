package checkpoint_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wjs2063/tripgraph/pkg/stategraph/checkpoint"
)

func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	store1, err := checkpoint.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store1.Append("run-1", "planner", []byte("persistent")))
	require.NoError(t, store1.Close())

	store2, err := checkpoint.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	data, err := store2.Latest("run-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("persistent"), data)

	// Sequence numbering continues across reopen.
	require.NoError(t, store2.Append("run-1", "executor", []byte("next")))
	infos, err := store2.List("run-1")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, 2, infos[1].Sequence)
	assert.False(t, infos[1].Timestamp.IsZero())
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := checkpoint.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Append("run-1", "n", []byte("x")))
	data, err := store.Load("run-1", 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := checkpoint.NewSQLiteStore("/nonexistent/path/db.sqlite")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := checkpoint.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
