package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/almagro/internal/app"
	"github.com/artpar/almagro/internal/core"
	"github.com/artpar/almagro/internal/storage/filesystem"
	recordsqlite "github.com/artpar/almagro/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand("test")
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// seedSQLite stores records in the default database inside dir.
func seedSQLite(t *testing.T, dir string, records ...*core.Record) {
	t.Helper()
	store, err := recordsqlite.New(filepath.Join(dir, databaseFileName))
	require.NoError(t, err)
	defer store.Close()

	for _, r := range records {
		_, err := store.Create(context.Background(), r)
		require.NoError(t, err)
	}
}

func loadSQLite(t *testing.T, dir string) []*core.Record {
	t.Helper()
	store, err := recordsqlite.New(filepath.Join(dir, databaseFileName))
	require.NoError(t, err)
	defer store.Close()

	records, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	return records
}

func seedFile(t *testing.T, dir string, records ...*core.Record) {
	t.Helper()
	store, err := filesystem.NewRecordStore(dir)
	require.NoError(t, err)
	defer store.Close()

	for _, r := range records {
		_, err := store.Create(context.Background(), r)
		require.NoError(t, err)
	}
}

func TestNewRootCommand(t *testing.T) {
	t.Run("creates root command", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		assert.Equal(t, "almagro", cmd.Use)
		assert.Equal(t, "1.0.0", cmd.Version)
	})

	t.Run("has persistent flags", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		for _, name := range []string{"config", "data-dir", "store", "timeout", "no-redirects", "log-file", "log-level"} {
			assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
		}
		assert.Equal(t, "d", cmd.PersistentFlags().Lookup("data-dir").Shorthand)
	})

	t.Run("has subcommands", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		for _, name := range []string{"list", "send", "history", "import", "export"} {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		}
	})
}

func TestLoadConfig(t *testing.T) {
	parse := func(t *testing.T, args ...string) (app.Config, error) {
		t.Helper()
		opts := &rootOptions{}
		cmd := newRootCommand("test", opts)
		require.NoError(t, cmd.ParseFlags(args))
		return opts.loadConfig(cmd)
	}

	t.Run("defaults with data dir", func(t *testing.T) {
		dir := t.TempDir()

		cfg, err := parse(t, "--data-dir", dir)

		require.NoError(t, err)
		assert.Equal(t, dir, cfg.DataDir)
		assert.Equal(t, app.StoreSQLite, cfg.Store)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.True(t, cfg.FollowRedirects)
	})

	t.Run("reads config file from data dir", func(t *testing.T) {
		dir := t.TempDir()
		content := "store: file\ntimeout: 5s\nlog_level: debug\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, app.ConfigFileName), []byte(content), 0644))

		cfg, err := parse(t, "--data-dir", dir)

		require.NoError(t, err)
		assert.Equal(t, app.StoreFile, cfg.Store)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("flags override config file", func(t *testing.T) {
		dir := t.TempDir()
		content := "store: file\ntimeout: 5s\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, app.ConfigFileName), []byte(content), 0644))

		cfg, err := parse(t, "--data-dir", dir, "--store", "sqlite", "--timeout", "2s", "--no-redirects")

		require.NoError(t, err)
		assert.Equal(t, app.StoreSQLite, cfg.Store)
		assert.Equal(t, 2*time.Second, cfg.Timeout)
		assert.False(t, cfg.FollowRedirects)
	})

	t.Run("explicit config path", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("data_dir: "+dir+"\n"), 0644))

		cfg, err := parse(t, "--config", path)

		require.NoError(t, err)
		assert.Equal(t, dir, cfg.DataDir)
	})

	t.Run("rejects unknown store", func(t *testing.T) {
		_, err := parse(t, "--data-dir", t.TempDir(), "--store", "redis")
		assert.ErrorContains(t, err, "unknown store")
	})

	t.Run("rejects malformed config file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, app.ConfigFileName), []byte("store: [\n"), 0644))

		_, err := parse(t, "--data-dir", dir)
		assert.Error(t, err)
	})
}

func TestOpenSession(t *testing.T) {
	t.Run("sqlite store shares the database with history", func(t *testing.T) {
		dir := t.TempDir()
		opts := &rootOptions{}
		cmd := newRootCommand("test", opts)
		require.NoError(t, cmd.ParseFlags([]string{"--data-dir", dir}))

		s, err := openSession(cmd, opts)
		require.NoError(t, err)

		assert.FileExists(t, filepath.Join(dir, databaseFileName))
		assert.NoFileExists(t, filepath.Join(dir, historyFileName))
		assert.FileExists(t, filepath.Join(dir, "almagro.log"))
		assert.NoError(t, s.Close())
	})

	t.Run("file store keeps history in its own database", func(t *testing.T) {
		dir := t.TempDir()
		opts := &rootOptions{}
		cmd := newRootCommand("test", opts)
		require.NoError(t, cmd.ParseFlags([]string{"--data-dir", dir, "--store", "file"}))

		s, err := openSession(cmd, opts)
		require.NoError(t, err)

		assert.FileExists(t, filepath.Join(dir, historyFileName))
		assert.NoFileExists(t, filepath.Join(dir, databaseFileName))
		assert.NoError(t, s.Close())
	})

	t.Run("creates the data directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "data")
		opts := &rootOptions{}
		cmd := newRootCommand("test", opts)
		require.NoError(t, cmd.ParseFlags([]string{"--data-dir", dir, "--log-file", filepath.Join(dir, "logs", "run.log")}))

		s, err := openSession(cmd, opts)
		require.NoError(t, err)
		defer s.Close()

		assert.DirExists(t, dir)
		assert.FileExists(t, filepath.Join(dir, "logs", "run.log"))
	})
}
