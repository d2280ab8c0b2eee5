// Package storage defines persistence of request records.
package storage

import (
	"context"
	"errors"

	"github.com/artpar/almagro/internal/core"
)

// Common errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidID   = errors.New("invalid record ID")
	ErrStoreClosed = errors.New("record store is closed")
)

// RecordStore persists request records keyed by an opaque identifier.
type RecordStore interface {
	// Create saves a record that has no identifier yet and returns the
	// identifier assigned to it. Identifiers are never reused.
	Create(ctx context.Context, r *core.Record) (string, error)

	// Update overwrites the record stored under id.
	Update(ctx context.Context, id string, r *core.Record) error

	// Delete removes the record stored under id.
	Delete(ctx context.Context, id string) error

	// LoadAll returns every stored record in creation order, with
	// StorageID populated.
	LoadAll(ctx context.Context) ([]*core.Record, error)

	// Close releases resources held by the store.
	Close() error
}
