package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/artpar/almagro/internal/core"
	"github.com/artpar/almagro/internal/storage"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the name of the file holding all records.
const DefaultFileName = "requests.yaml"

// RecordStore keeps every record in a single YAML file. Each operation is a
// read-modify-write of the whole file.
type RecordStore struct {
	mu     sync.Mutex
	path   string
	closed bool
}

// NewRecordStore creates a store backed by DefaultFileName inside basePath.
func NewRecordStore(basePath string) (*RecordStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &RecordStore{
		path: filepath.Join(basePath, DefaultFileName),
	}, nil
}

// Path returns the location of the backing file.
func (s *RecordStore) Path() string {
	return s.path
}

// Create appends a record under a freshly generated identifier.
func (s *RecordStore) Create(ctx context.Context, r *core.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", storage.ErrStoreClosed
	}

	data, err := s.load()
	if err != nil {
		return "", err
	}

	now := time.Now()
	entry := toRecordData(r)
	entry.ID = uuid.New().String()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	data.Requests = append(data.Requests, entry)

	if err := s.save(data); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// Update overwrites the record stored under id.
func (s *RecordStore) Update(ctx context.Context, id string, r *core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStoreClosed
	}
	if id == "" {
		return storage.ErrInvalidID
	}

	data, err := s.load()
	if err != nil {
		return err
	}

	i := data.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	entry := toRecordData(r)
	entry.ID = id
	entry.CreatedAt = data.Requests[i].CreatedAt
	entry.UpdatedAt = time.Now()
	data.Requests[i] = entry

	return s.save(data)
}

// Delete removes the record stored under id.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStoreClosed
	}
	if id == "" {
		return storage.ErrInvalidID
	}

	data, err := s.load()
	if err != nil {
		return err
	}

	i := data.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	data.Requests = append(data.Requests[:i], data.Requests[i+1:]...)

	return s.save(data)
}

// LoadAll returns every stored record in file order.
func (s *RecordStore) LoadAll(ctx context.Context) ([]*core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrStoreClosed
	}

	data, err := s.load()
	if err != nil {
		return nil, err
	}

	records := make([]*core.Record, 0, len(data.Requests))
	for _, entry := range data.Requests {
		records = append(records, fromRecordData(entry))
	}
	return records, nil
}

// Close marks the store closed.
func (s *RecordStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// Internal helpers

func (s *RecordStore) load() (*fileData, error) {
	content, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &fileData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}

	var data fileData
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}
	return &data, nil
}

// save writes to a temporary file first so a failed write never leaves a
// truncated records file behind.
func (s *RecordStore) save(data *fileData) error {
	content, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return fmt.Errorf("failed to write records file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace records file: %w", err)
	}
	return nil
}

// Storage format types

type fileData struct {
	Requests []recordData `yaml:"requests"`
}

func (d *fileData) indexOf(id string) int {
	for i, entry := range d.Requests {
		if entry.ID == id {
			return i
		}
	}
	return -1
}

type recordData struct {
	ID           string    `yaml:"id"`
	Name         string    `yaml:"name"`
	Method       string    `yaml:"method"`
	URL          string    `yaml:"url"`
	Body         string    `yaml:"body,omitempty"`
	LastStatus   string    `yaml:"last_status,omitempty"`
	LastResponse string    `yaml:"last_response,omitempty"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// Conversion functions

func toRecordData(r *core.Record) recordData {
	return recordData{
		Name:         r.Name,
		Method:       r.Method,
		URL:          r.URL,
		Body:         r.Body,
		LastStatus:   r.LastStatus,
		LastResponse: r.LastResponse,
	}
}

func fromRecordData(data recordData) *core.Record {
	return &core.Record{
		Name:         data.Name,
		Method:       data.Method,
		URL:          data.URL,
		Body:         data.Body,
		LastStatus:   data.LastStatus,
		LastResponse: data.LastResponse,
		StorageID:    data.ID,
	}
}

var _ storage.RecordStore = (*RecordStore)(nil)
