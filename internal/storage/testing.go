package storage

import (
	"context"
	"testing"

	"github.com/artpar/almagro/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreTests runs the standard store test suite against any RecordStore
// implementation.
func RunStoreTests(t *testing.T, newStore func() (RecordStore, func())) {
	t.Run("Create", func(t *testing.T) {
		runCreateTests(t, newStore)
	})
	t.Run("Update", func(t *testing.T) {
		runUpdateTests(t, newStore)
	})
	t.Run("Delete", func(t *testing.T) {
		runDeleteTests(t, newStore)
	})
	t.Run("LoadAll", func(t *testing.T) {
		runLoadAllTests(t, newStore)
	})
	t.Run("Close", func(t *testing.T) {
		runCloseTests(t, newStore)
	})
}

func runCreateTests(t *testing.T, newStore func() (RecordStore, func())) {
	t.Run("assigns identifier", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		id, err := store.Create(context.Background(), core.NewRecord("Request #1"))

		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("never reuses identifiers", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		first, err := store.Create(ctx, core.NewRecord("one"))
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, first))

		second, err := store.Create(ctx, core.NewRecord("one"))
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("does not mutate the given record", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		r := core.NewRecord("r")
		_, err := store.Create(context.Background(), r)
		require.NoError(t, err)
		assert.Empty(t, r.StorageID)
	})
}

func runUpdateTests(t *testing.T, newStore func() (RecordStore, func())) {
	t.Run("overwrites stored record", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		r := core.NewRecord("ping")
		id, err := store.Create(ctx, r)
		require.NoError(t, err)

		r.URL = "http://localhost/ping"
		r.Method = "POST"
		r.Body = "line1\nline2"
		r.LastStatus = "200"
		r.LastResponse = "pong"
		require.NoError(t, store.Update(ctx, id, r))

		all, err := store.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, id, all[0].StorageID)
		assert.Equal(t, "ping", all[0].Name)
		assert.Equal(t, "POST", all[0].Method)
		assert.Equal(t, "http://localhost/ping", all[0].URL)
		assert.Equal(t, "line1\nline2", all[0].Body)
		assert.Equal(t, "200", all[0].LastStatus)
		assert.Equal(t, "pong", all[0].LastResponse)
	})

	t.Run("fails for unknown identifier", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		err := store.Update(context.Background(), "missing", core.NewRecord("x"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("fails for empty identifier", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		err := store.Update(context.Background(), "", core.NewRecord("x"))
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func runDeleteTests(t *testing.T, newStore func() (RecordStore, func())) {
	t.Run("removes record", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		keep, err := store.Create(ctx, core.NewRecord("keep"))
		require.NoError(t, err)
		drop, err := store.Create(ctx, core.NewRecord("drop"))
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, drop))

		all, err := store.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, keep, all[0].StorageID)
	})

	t.Run("fails for unknown identifier", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		err := store.Delete(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func runLoadAllTests(t *testing.T, newStore func() (RecordStore, func())) {
	t.Run("returns empty slice for empty store", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		all, err := store.LoadAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("preserves creation order", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		names := []string{"c", "a", "b", "d"}
		for _, name := range names {
			_, err := store.Create(ctx, core.NewRecord(name))
			require.NoError(t, err)
		}

		all, err := store.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, len(names))
		for i, name := range names {
			assert.Equal(t, name, all[i].Name)
		}
	})
}

func runCloseTests(t *testing.T, newStore func() (RecordStore, func())) {
	t.Run("operations fail after close", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		require.NoError(t, store.Close())

		_, err := store.Create(ctx, core.NewRecord("x"))
		assert.ErrorIs(t, err, ErrStoreClosed)
		_, err = store.LoadAll(ctx)
		assert.ErrorIs(t, err, ErrStoreClosed)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		require.NoError(t, store.Close())
		assert.NoError(t, store.Close())
	})
}
