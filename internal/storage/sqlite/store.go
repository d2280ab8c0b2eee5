package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/artpar/almagro/internal/core"
	"github.com/artpar/almagro/internal/storage"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store implements storage.RecordStore using SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// New creates a new SQLite-based record store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// NewInMemory creates a new in-memory SQLite store (useful for testing).
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every pooled connection to ":memory:" would get its own database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// DB returns the underlying connection so other stores (run history) can
// share the database file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// initialize creates the necessary tables and indexes.
func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS requests (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			method TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			last_status TEXT NOT NULL DEFAULT '',
			last_response TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_requests_position ON requests(position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Create inserts a record under a freshly generated identifier.
func (s *Store) Create(ctx context.Context, r *core.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", storage.ErrStoreClosed
	}

	id := uuid.New().String()
	now := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (
			id, position, name, method, url, body, last_status, last_response,
			created_at, updated_at
		) VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM requests), ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id, r.Name, r.Method, r.URL, r.Body, r.LastStatus, r.LastResponse, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert request: %w", err)
	}

	return id, nil
}

// Update overwrites the record stored under id.
func (s *Store) Update(ctx context.Context, id string, r *core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStoreClosed
	}
	if id == "" {
		return storage.ErrInvalidID
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE requests SET
			name = ?, method = ?, url = ?, body = ?, last_status = ?, last_response = ?,
			updated_at = ?
		WHERE id = ?
	`,
		r.Name, r.Method, r.URL, r.Body, r.LastStatus, r.LastResponse, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}

	return requireAffected(result, id)
}

// Delete removes the record stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStoreClosed
	}
	if id == "" {
		return storage.ErrInvalidID
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM requests WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}

	return requireAffected(result, id)
}

// LoadAll returns every stored record ordered by creation.
func (s *Store) LoadAll(ctx context.Context) ([]*core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, method, url, body, last_status, last_response
		FROM requests ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	records := make([]*core.Record, 0)
	for rows.Next() {
		r := &core.Record{}
		if err := rows.Scan(&r.StorageID, &r.Name, &r.Method, &r.URL, &r.Body, &r.LastStatus, &r.LastResponse); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

var _ storage.RecordStore = (*Store)(nil)
