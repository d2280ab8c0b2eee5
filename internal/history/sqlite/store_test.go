package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/almagro/internal/history"
	recordsqlite "github.com/artpar/almagro/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSQLiteStore runs the standard store test suite against SQLite.
func TestSQLiteStore(t *testing.T) {
	history.RunStoreTests(t, func() (history.Store, func()) {
		store, err := NewInMemory()
		require.NoError(t, err)
		return store, func() { store.Close() }
	})
}

func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := New(dbPath)
	require.NoError(t, err)

	id, err := store.Add(ctx, history.Entry{
		Timestamp:      time.Now(),
		RequestName:    "ping",
		RequestMethod:  "GET",
		RequestURL:     "http://localhost/ping",
		ResponseStatus: "200",
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := New(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.List(ctx, history.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
}

func TestSQLiteStore_SharedDB(t *testing.T) {
	records, err := recordsqlite.NewInMemory()
	require.NoError(t, err)
	defer records.Close()

	store, err := NewWithDB(records.DB())
	require.NoError(t, err)

	_, err = store.Add(context.Background(), history.Entry{
		Timestamp:      time.Now(),
		RequestName:    "ping",
		RequestMethod:  "GET",
		RequestURL:     "http://localhost/ping",
		ResponseStatus: "200",
	})
	require.NoError(t, err)

	t.Run("close leaves shared connection open", func(t *testing.T) {
		require.NoError(t, store.Close())
		assert.NoError(t, records.DB().Ping())

		var count int
		require.NoError(t, records.DB().QueryRow("SELECT COUNT(*) FROM history").Scan(&count))
		assert.Equal(t, 1, count)
	})
}

func TestBuildListQuery(t *testing.T) {
	t.Run("offset without limit is unbounded", func(t *testing.T) {
		query, args := buildListQuery(history.QueryOptions{Offset: 2})
		assert.Contains(t, query, "LIMIT ?")
		assert.Contains(t, query, "OFFSET ?")
		assert.Equal(t, []interface{}{-1, 2}, args)
	})

	t.Run("no pagination", func(t *testing.T) {
		query, args := buildListQuery(history.QueryOptions{})
		assert.NotContains(t, query, "LIMIT")
		assert.Empty(t, args)
	})
}
