package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/artpar/almagro/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("creates client with defaults", func(t *testing.T) {
		client := NewClient()
		assert.Equal(t, DefaultTimeout, client.Config().Timeout)
		assert.True(t, client.Config().FollowRedirect)
	})

	t.Run("creates client with custom timeout", func(t *testing.T) {
		client := NewClient(WithTimeout(5 * time.Second))
		assert.Equal(t, 5*time.Second, client.Config().Timeout)
	})

	t.Run("creates client without redirects", func(t *testing.T) {
		client := NewClient(WithNoRedirects())
		assert.False(t, client.Config().FollowRedirect)
	})
}

func TestClient_Run(t *testing.T) {
	t.Run("sends GET and returns status text and body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "GET", r.Method)
			assert.Equal(t, "/ping", r.URL.Path)
			w.Write([]byte("pong"))
		}))
		defer server.Close()

		res, err := NewClient().Run(context.Background(), "GET", server.URL+"/ping", "")

		require.NoError(t, err)
		assert.Equal(t, "200", res.Status)
		assert.Equal(t, "pong", res.Body)
	})

	t.Run("sends body verbatim", func(t *testing.T) {
		var received string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			b, _ := io.ReadAll(r.Body)
			received = string(b)
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		res, err := NewClient().Run(context.Background(), "POST", server.URL, "{\n\"a\": 1\n}")

		require.NoError(t, err)
		assert.Equal(t, "201", res.Status)
		assert.Equal(t, "{\n\"a\": 1\n}", received)
	})

	t.Run("accepts lower-case method", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "PATCH", r.Method)
		}))
		defer server.Close()

		res, err := NewClient().Run(context.Background(), "patch", server.URL, "")

		require.NoError(t, err)
		assert.Equal(t, "200", res.Status)
	})

	t.Run("error statuses are results", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "missing", http.StatusNotFound)
		}))
		defer server.Close()

		res, err := NewClient().Run(context.Background(), "GET", server.URL, "")

		require.NoError(t, err)
		assert.Equal(t, "404", res.Status)
		assert.Equal(t, "missing\n", res.Body)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		_, err := NewClient().Run(context.Background(), "FETCH", "http://localhost", "")
		assert.ErrorIs(t, err, core.ErrInvalidMethod)
	})

	t.Run("fails on malformed URL", func(t *testing.T) {
		_, err := NewClient().Run(context.Background(), "GET", "://nope", "")
		assert.Error(t, err)
	})

	t.Run("fails on empty URL", func(t *testing.T) {
		_, err := NewClient().Run(context.Background(), "GET", "", "")
		assert.Error(t, err)
	})

	t.Run("fails when unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := NewClient().Run(context.Background(), "GET", url, "")
		assert.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewClient().Run(ctx, "GET", server.URL, "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_Redirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		w.Write([]byte("moved here"))
	}))
	defer server.Close()

	t.Run("follows by default", func(t *testing.T) {
		res, err := NewClient().Run(context.Background(), "GET", server.URL+"/old", "")
		require.NoError(t, err)
		assert.Equal(t, "200", res.Status)
		assert.Equal(t, "moved here", res.Body)
	})

	t.Run("stops when disabled", func(t *testing.T) {
		res, err := NewClient(WithNoRedirects()).Run(context.Background(), "GET", server.URL+"/old", "")
		require.NoError(t, err)
		assert.Equal(t, "302", res.Status)
	})
}

func TestClient_Cookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			return
		}
		c, err := r.Cookie("session")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(c.Value))
	}))
	defer server.Close()

	t.Run("jar keeps cookies between runs", func(t *testing.T) {
		client := NewClient()
		ctx := context.Background()

		_, err := client.Run(ctx, "POST", server.URL+"/login", "")
		require.NoError(t, err)

		res, err := client.Run(ctx, "GET", server.URL+"/me", "")
		require.NoError(t, err)
		assert.Equal(t, "200", res.Status)
		assert.Equal(t, "abc", res.Body)
	})

	t.Run("nil jar disables cookies", func(t *testing.T) {
		client := NewClient(WithCookieJar(nil))
		ctx := context.Background()

		_, err := client.Run(ctx, "POST", server.URL+"/login", "")
		require.NoError(t, err)

		res, err := client.Run(ctx, "GET", server.URL+"/me", "")
		require.NoError(t, err)
		assert.Equal(t, "401", res.Status)
	})
}

func TestClient_UserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.UserAgent()))
	}))
	defer server.Close()

	res, err := NewClient(WithUserAgent("almagro/test")).Run(context.Background(), "GET", server.URL, "")

	require.NoError(t, err)
	assert.Equal(t, "almagro/test", res.Body)
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := NewClient(WithTimeout(50*time.Millisecond)).Run(context.Background(), "GET", server.URL, "")
	assert.Error(t, err)
}
