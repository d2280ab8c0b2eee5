package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCommand(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		out, err := execute(t, "list", "--data-dir", t.TempDir())

		require.NoError(t, err)
		assert.Contains(t, out, "No stored requests.")
	})

	t.Run("lists records in insertion order", func(t *testing.T) {
		dir := t.TempDir()
		seedSQLite(t, dir,
			newRecord("users", "GET", "http://localhost/users", ""),
			newRecord("create", "POST", "http://localhost/users", "{}"),
		)

		out, err := execute(t, "list", "--data-dir", dir)

		require.NoError(t, err)
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "POST")
		assert.Contains(t, out, "http://localhost/users")
		assert.Less(t, strings.Index(out, "users"), strings.Index(out, "create"))
	})

	t.Run("file store", func(t *testing.T) {
		dir := t.TempDir()
		seedFile(t, dir, newRecord("from-yaml", "DELETE", "http://localhost/x", ""))

		out, err := execute(t, "list", "--data-dir", dir, "--store", "file")

		require.NoError(t, err)
		assert.Contains(t, out, "from-yaml")
		assert.Contains(t, out, "DELETE")
	})

	t.Run("rejects arguments", func(t *testing.T) {
		_, err := execute(t, "list", "extra", "--data-dir", t.TempDir())
		assert.Error(t, err)
	})
}
