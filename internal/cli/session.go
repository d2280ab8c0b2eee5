package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/artpar/almagro/internal/app"
	"github.com/artpar/almagro/internal/history"
	historysqlite "github.com/artpar/almagro/internal/history/sqlite"
	httpclient "github.com/artpar/almagro/internal/protocol/http"
	"github.com/artpar/almagro/internal/runner"
	"github.com/artpar/almagro/internal/storage"
	"github.com/artpar/almagro/internal/storage/filesystem"
	recordsqlite "github.com/artpar/almagro/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

// File names inside the data directory.
const (
	databaseFileName = "almagro.db"
	historyFileName  = "history.db"
)

// session holds the resources every command works with.
type session struct {
	cfg     app.Config
	dataDir string
	logger  *slog.Logger
	records storage.RecordStore
	history history.Store
	runner  *runner.Runner
	closers []func() error
}

// openSession loads the configuration and opens the logger, the stores and
// the request runner. The caller must Close the session.
func openSession(cmd *cobra.Command, opts *rootOptions) (*session, error) {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &session{cfg: cfg, dataDir: dataDir}

	if err := s.openLogger(); err != nil {
		return nil, err
	}
	if err := s.openStores(); err != nil {
		s.Close()
		return nil, err
	}

	clientOpts := []httpclient.Option{httpclient.WithTimeout(cfg.Timeout)}
	if !cfg.FollowRedirects {
		clientOpts = append(clientOpts, httpclient.WithNoRedirects())
	}
	s.runner = runner.NewRunner(httpclient.NewClient(clientOpts...),
		runner.WithHistory(s.history),
		runner.WithLogger(s.logger),
		runner.WithTimeout(cfg.Timeout),
	)

	return s, nil
}

func (s *session) openLogger() error {
	path, err := s.cfg.LogPath(s.dataDir)
	if err != nil {
		return err
	}
	level, err := app.ParseLevel(s.cfg.LogLevel)
	if err != nil {
		return err
	}

	handler, closeLog, err := openFileLogHandler(path, level)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	s.logger = slog.New(handler)
	s.closers = append(s.closers, func() error {
		closeLog()
		return nil
	})
	return nil
}

func (s *session) openStores() error {
	switch s.cfg.Store {
	case app.StoreFile:
		records, err := filesystem.NewRecordStore(s.dataDir)
		if err != nil {
			return err
		}
		s.records = records
		s.closers = append(s.closers, records.Close)

		hist, err := historysqlite.New(filepath.Join(s.dataDir, historyFileName))
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		s.history = hist
		s.closers = append(s.closers, hist.Close)

	default:
		records, err := recordsqlite.New(filepath.Join(s.dataDir, databaseFileName))
		if err != nil {
			return fmt.Errorf("failed to open record store: %w", err)
		}
		s.records = records
		s.closers = append(s.closers, records.Close)

		hist, err := historysqlite.NewWithDB(records.DB())
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		s.history = hist
		s.closers = append(s.closers, hist.Close)
	}

	s.logger.Debug("stores opened", "store", s.cfg.Store, "data_dir", s.dataDir)
	return nil
}

// Close releases everything in reverse order of acquisition.
func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// openFileLogHandler creates a JSON slog handler writing to path. The
// terminal belongs to the UI, so log output never goes to stderr.
func openFileLogHandler(path string, level slog.Level) (slog.Handler, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return handler, func() { file.Close() }, nil
}
