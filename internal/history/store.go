// Package history records every completed request run.
package history

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrStoreClosed   = errors.New("history store is closed")
	ErrInvalidOption = errors.New("invalid query option")
)

// Store defines the interface for history storage operations.
type Store interface {
	// Add adds a new history entry and returns its ID.
	Add(ctx context.Context, entry Entry) (string, error)

	// List retrieves history entries, newest first.
	List(ctx context.Context, opts QueryOptions) ([]Entry, error)

	// Clear removes all history entries.
	Clear(ctx context.Context) error

	// Close closes the store and releases resources.
	Close() error
}
