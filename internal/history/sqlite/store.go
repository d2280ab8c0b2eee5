package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/artpar/almagro/internal/history"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store implements history.Store using SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	ownsDB bool
	closed bool
}

// New creates a new SQLite-based history store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, ownsDB: true}
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
	db.SetMaxOpenConns(1)

	store := &Store{db: db, ownsDB: true}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// NewWithDB creates a history store on a connection owned by someone else,
// typically the record store. Close leaves the connection open.
func NewWithDB(db *sql.DB) (*Store, error) {
	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

// initialize creates the necessary tables and indexes.
func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			request_name TEXT NOT NULL,
			request_method TEXT NOT NULL,
			request_url TEXT NOT NULL,
			request_body TEXT,
			response_status TEXT NOT NULL,
			response_body TEXT,
			response_time INTEGER,
			failed INTEGER DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_history_request ON history(request_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Add adds a new history entry and returns its ID.
func (s *Store) Add(ctx context.Context, entry history.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", history.ErrStoreClosed
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (
			id, timestamp, request_name, request_method, request_url, request_body,
			response_status, response_body, response_time, failed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID, entry.Timestamp, entry.RequestName, entry.RequestMethod, entry.RequestURL,
		entry.RequestBody, entry.ResponseStatus, entry.ResponseBody, entry.ResponseTime,
		entry.Failed,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert history entry: %w", err)
	}

	return entry.ID, nil
}

// List retrieves history entries matching the query options, newest first.
func (s *Store) List(ctx context.Context, opts history.QueryOptions) ([]history.Entry, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, history.ErrStoreClosed
	}

	query, args := buildListQuery(opts)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Clear removes all history entries.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return history.ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, "DELETE FROM history")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	return nil
}

// Close closes the store and releases resources.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

// Helper functions

func buildListQuery(opts history.QueryOptions) (string, []interface{}) {
	query := `
		SELECT id, timestamp, request_name, request_method, request_url, request_body,
			response_status, response_body, response_time, failed
		FROM history WHERE 1=1
	`

	var args []interface{}

	if opts.RequestName != "" {
		query += " AND request_name = ?"
		args = append(args, opts.RequestName)
	}

	if opts.Failed != nil {
		query += " AND failed = ?"
		args = append(args, *opts.Failed)
	}

	query += " ORDER BY timestamp DESC, rowid DESC"

	// SQLite only accepts OFFSET after a LIMIT; -1 means unbounded.
	if opts.Limit > 0 || opts.Offset > 0 {
		limit := opts.Limit
		if limit == 0 {
			limit = -1
		}
		query += " LIMIT ?"
		args = append(args, limit)
	}

	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	return query, args
}

func scanEntry(rows *sql.Rows) (history.Entry, error) {
	var entry history.Entry
	var requestBody, responseBody sql.NullString
	var responseTime sql.NullInt64

	err := rows.Scan(
		&entry.ID, &entry.Timestamp, &entry.RequestName, &entry.RequestMethod,
		&entry.RequestURL, &requestBody, &entry.ResponseStatus, &responseBody,
		&responseTime, &entry.Failed,
	)
	if err != nil {
		return history.Entry{}, err
	}

	entry.RequestBody = requestBody.String
	entry.ResponseBody = responseBody.String
	entry.ResponseTime = responseTime.Int64

	return entry, nil
}

var _ history.Store = (*Store)(nil)
