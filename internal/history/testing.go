package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreTests runs the standard store test suite against any Store implementation.
func RunStoreTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("Add", func(t *testing.T) {
		runAddTests(t, newStore)
	})
	t.Run("List", func(t *testing.T) {
		runListTests(t, newStore)
	})
	t.Run("Clear", func(t *testing.T) {
		runClearTests(t, newStore)
	})
	t.Run("Close", func(t *testing.T) {
		runCloseTests(t, newStore)
	})
}

func sampleEntry(name string, at time.Time) Entry {
	return Entry{
		Timestamp:      at,
		RequestName:    name,
		RequestMethod:  "GET",
		RequestURL:     "http://localhost/" + name,
		ResponseStatus: "200",
		ResponseBody:   "ok",
		ResponseTime:   12,
	}
}

func runAddTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("adds entry and returns ID", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		id, err := store.Add(context.Background(), sampleEntry("ping", time.Now()))

		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("keeps provided ID", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		entry := sampleEntry("ping", time.Now())
		entry.ID = "fixed-id"

		id, err := store.Add(context.Background(), entry)

		require.NoError(t, err)
		assert.Equal(t, "fixed-id", id)
	})

	t.Run("stores every field", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		entry := Entry{
			Timestamp:      time.Now().Truncate(time.Second),
			RequestName:    "create",
			RequestMethod:  "POST",
			RequestURL:     "http://localhost/users",
			RequestBody:    "{\n  \"name\": \"x\"\n}",
			ResponseStatus: "Error",
			ResponseBody:   "connection refused",
			ResponseTime:   3,
			Failed:         true,
		}
		id, err := store.Add(ctx, entry)
		require.NoError(t, err)

		entries, err := store.List(ctx, QueryOptions{})
		require.NoError(t, err)
		require.Len(t, entries, 1)

		got := entries[0]
		assert.Equal(t, id, got.ID)
		assert.True(t, entry.Timestamp.Equal(got.Timestamp))
		assert.Equal(t, entry.RequestName, got.RequestName)
		assert.Equal(t, entry.RequestMethod, got.RequestMethod)
		assert.Equal(t, entry.RequestURL, got.RequestURL)
		assert.Equal(t, entry.RequestBody, got.RequestBody)
		assert.Equal(t, entry.ResponseStatus, got.ResponseStatus)
		assert.Equal(t, entry.ResponseBody, got.ResponseBody)
		assert.Equal(t, entry.ResponseTime, got.ResponseTime)
		assert.True(t, got.Failed)
	})
}

func runListTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("returns newest first", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		base := time.Now().Add(-time.Hour)
		for i, name := range []string{"first", "second", "third"} {
			_, err := store.Add(ctx, sampleEntry(name, base.Add(time.Duration(i)*time.Minute)))
			require.NoError(t, err)
		}

		entries, err := store.List(ctx, QueryOptions{})
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "third", entries[0].RequestName)
		assert.Equal(t, "first", entries[2].RequestName)
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		base := time.Now().Add(-time.Hour)
		for i := 0; i < 5; i++ {
			_, err := store.Add(ctx, sampleEntry("r", base.Add(time.Duration(i)*time.Minute)))
			require.NoError(t, err)
		}

		entries, err := store.List(ctx, QueryOptions{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))
	})

	t.Run("filters by request name", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		_, err := store.Add(ctx, sampleEntry("users", time.Now()))
		require.NoError(t, err)
		_, err = store.Add(ctx, sampleEntry("orders", time.Now()))
		require.NoError(t, err)

		entries, err := store.List(ctx, QueryOptions{RequestName: "orders"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "orders", entries[0].RequestName)
	})

	t.Run("filters by failure", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		ok := sampleEntry("ok", time.Now())
		failed := sampleEntry("failed", time.Now())
		failed.Failed = true
		_, err := store.Add(ctx, ok)
		require.NoError(t, err)
		_, err = store.Add(ctx, failed)
		require.NoError(t, err)

		onlyFailed := true
		entries, err := store.List(ctx, QueryOptions{Failed: &onlyFailed})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "failed", entries[0].RequestName)
	})

	t.Run("rejects negative limit", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		_, err := store.List(context.Background(), QueryOptions{Limit: -1})
		assert.ErrorIs(t, err, ErrInvalidOption)
	})
}

func runClearTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("removes all entries", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		_, err := store.Add(ctx, sampleEntry("a", time.Now()))
		require.NoError(t, err)
		require.NoError(t, store.Clear(ctx))

		entries, err := store.List(ctx, QueryOptions{})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func runCloseTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("operations fail after close", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()
		ctx := context.Background()

		require.NoError(t, store.Close())

		_, err := store.Add(ctx, sampleEntry("a", time.Now()))
		assert.ErrorIs(t, err, ErrStoreClosed)
		_, err = store.List(ctx, QueryOptions{})
		assert.ErrorIs(t, err, ErrStoreClosed)
	})
}
