package importer

import (
	"testing"

	"github.com/artpar/almagro/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurl_SimpleGET(t *testing.T) {
	parsed, err := ParseCurl(`curl https://api.example.com/users`)
	require.NoError(t, err)

	r := parsed.Record
	assert.Equal(t, "GET", r.Method)
	assert.Equal(t, "https://api.example.com/users", r.URL)
	assert.Equal(t, "users", r.Name)
	assert.Empty(t, r.Body)
	assert.False(t, r.Persisted())
}

func TestParseCurl_Method(t *testing.T) {
	t.Run("explicit method", func(t *testing.T) {
		parsed, err := ParseCurl(`curl -X DELETE https://api.example.com/users/1`)
		require.NoError(t, err)
		assert.Equal(t, "DELETE", parsed.Record.Method)
	})

	t.Run("lower case method is canonicalized", func(t *testing.T) {
		parsed, err := ParseCurl(`curl --request patch https://api.example.com/users/1`)
		require.NoError(t, err)
		assert.Equal(t, "PATCH", parsed.Record.Method)
	})

	t.Run("data implies POST", func(t *testing.T) {
		parsed, err := ParseCurl(`curl https://api.example.com/users -d '{"name":"John"}'`)
		require.NoError(t, err)
		assert.Equal(t, "POST", parsed.Record.Method)
		assert.Equal(t, `{"name":"John"}`, parsed.Record.Body)
	})

	t.Run("explicit method wins over data", func(t *testing.T) {
		parsed, err := ParseCurl(`curl -d 'x=1' -X PUT https://api.example.com/items`)
		require.NoError(t, err)
		assert.Equal(t, "PUT", parsed.Record.Method)
	})

	t.Run("head flag", func(t *testing.T) {
		parsed, err := ParseCurl(`curl -I https://example.com`)
		require.NoError(t, err)
		assert.Equal(t, "HEAD", parsed.Record.Method)
	})

	t.Run("unknown method is rejected", func(t *testing.T) {
		_, err := ParseCurl(`curl -X FETCH https://example.com`)
		assert.ErrorIs(t, err, core.ErrInvalidMethod)
	})
}

func TestParseCurl_Body(t *testing.T) {
	t.Run("urlencoded parts are joined", func(t *testing.T) {
		parsed, err := ParseCurl(`curl --data-urlencode a=1 --data-urlencode 'b=2 3' https://example.com/form`)
		require.NoError(t, err)
		assert.Equal(t, "a=1&b=2 3", parsed.Record.Body)
	})

	t.Run("json flag", func(t *testing.T) {
		parsed, err := ParseCurl(`curl --json '{"ok":true}' https://example.com/api`)
		require.NoError(t, err)
		assert.Equal(t, "POST", parsed.Record.Method)
		assert.Equal(t, `{"ok":true}`, parsed.Record.Body)
	})

	t.Run("escaped quotes inside double quotes", func(t *testing.T) {
		parsed, err := ParseCurl(`curl -d "{\"a\":1}" https://example.com`)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, parsed.Record.Body)
	})
}

func TestParseCurl_Headers(t *testing.T) {
	parsed, err := ParseCurl(`curl -H 'Accept: application/json' -u admin:secret https://example.com/me`)
	require.NoError(t, err)

	assert.Equal(t, []string{"-H Accept: application/json", "-u admin:secret"}, parsed.Ignored)
	assert.Equal(t, "https://example.com/me", parsed.Record.URL)
}

func TestParseCurl_LineContinuations(t *testing.T) {
	cmd := "curl \\\n  -X POST \\\n  -d 'a=1' \\\n  https://example.com/submit"

	parsed, err := ParseCurl(cmd)
	require.NoError(t, err)

	assert.Equal(t, "POST", parsed.Record.Method)
	assert.Equal(t, "https://example.com/submit", parsed.Record.URL)
	assert.Equal(t, "submit", parsed.Record.Name)
}

func TestParseCurl_SkipsOptions(t *testing.T) {
	parsed, err := ParseCurl(`curl -sSL --compressed -o out.json --max-time 10 https://example.com/data`)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/data", parsed.Record.URL)
}

func TestParseCurl_Errors(t *testing.T) {
	t.Run("not curl", func(t *testing.T) {
		_, err := ParseCurl(`wget https://example.com`)
		assert.ErrorIs(t, err, ErrNotCurl)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseCurl("   ")
		assert.ErrorIs(t, err, ErrNotCurl)
	})

	t.Run("no url", func(t *testing.T) {
		_, err := ParseCurl(`curl -X GET`)
		assert.ErrorIs(t, err, ErrMissingURL)
	})

	t.Run("unterminated quote", func(t *testing.T) {
		_, err := ParseCurl(`curl -d 'oops https://example.com`)
		assert.ErrorIs(t, err, ErrParseError)
	})
}

func TestNameFromURL(t *testing.T) {
	tests := map[string]string{
		"https://api.example.com/users":        "users",
		"https://api.example.com/users/":       "users",
		"https://api.example.com/users?page=2": "users",
		"https://api.example.com":              "api.example.com",
		"http://localhost:8080/":               "localhost",
		"example.com/a/b#frag":                 "b",
	}

	for url, want := range tests {
		t.Run(url, func(t *testing.T) {
			assert.Equal(t, want, NameFromURL(url))
		})
	}
}
