package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/holonoms/ghtree/internal/hierarchy"
	"github.com/holonoms/ghtree/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repoJSON = `{"full_name":"o/r","description":"A repo","default_branch":"master"}`

const treeJSON = `{
	"sha": "abc",
	"truncated": false,
	"tree": [
		{"path": "src", "type": "tree"},
		{"path": "src/a.go", "type": "blob", "size": 100},
		{"path": "vendor/lib", "type": "commit"},
		{"path": "README.md", "type": "blob", "size": 24},
		{"path": "odd", "type": "symlink"}
	]
}`

func newServer(t *testing.T, routes map[string]http.HandlerFunc) (*Client, *[]string) {
	t.Helper()

	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		if h, ok := routes[r.URL.Path]; ok {
			h(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	t.Cleanup(srv.Close)

	return New(WithBaseURL(srv.URL), WithToken("secret")), &calls
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestFetch(t *testing.T) {
	t.Run("requested branch", func(t *testing.T) {
		var auth string
		c, _ := newServer(t, map[string]http.HandlerFunc{
			"/repos/o/r": respond(http.StatusOK, repoJSON),
			"/repos/o/r/commits/dev": func(w http.ResponseWriter, r *http.Request) {
				auth = r.Header.Get("Authorization")
				_, _ = w.Write([]byte(`{"sha":"abc"}`))
			},
			"/repos/o/r/git/trees/abc": func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "1", r.URL.Query().Get("recursive"))
				_, _ = w.Write([]byte(treeJSON))
			},
		})

		snap, err := c.Fetch(context.Background(), source.Ref{Owner: "o", Name: "r", Branch: "dev"})
		require.NoError(t, err)

		assert.Equal(t, "token secret", auth)
		assert.Equal(t, "dev", snap.Ref.Branch)
		assert.False(t, snap.BranchSwitched())
		assert.Equal(t, "A repo", snap.Description)
		assert.Equal(t, DefaultWebURL, snap.LinkBase)
		assert.Equal(t, int64(124), snap.Size)
		assert.Equal(t, []hierarchy.Entry{
			{Path: "src", Kind: hierarchy.Container},
			{Path: "src/a.go", Kind: hierarchy.Leaf},
			{Path: "vendor/lib", Kind: hierarchy.Leaf},
			{Path: "README.md", Kind: hierarchy.Leaf},
		}, snap.Entries)
	})

	t.Run("no branch uses default", func(t *testing.T) {
		c, calls := newServer(t, map[string]http.HandlerFunc{
			"/repos/o/r":                respond(http.StatusOK, repoJSON),
			"/repos/o/r/commits/master": respond(http.StatusOK, `{"sha":"abc"}`),
			"/repos/o/r/git/trees/abc":  respond(http.StatusOK, treeJSON),
		})

		snap, err := c.Fetch(context.Background(), source.Ref{Owner: "o", Name: "r"})
		require.NoError(t, err)
		assert.Equal(t, "master", snap.Ref.Branch)
		assert.False(t, snap.BranchSwitched())
		assert.Len(t, *calls, 3)
	})

	t.Run("falls back to default branch", func(t *testing.T) {
		c, calls := newServer(t, map[string]http.HandlerFunc{
			"/repos/o/r":                respond(http.StatusOK, repoJSON),
			"/repos/o/r/commits/main":   respond(http.StatusUnprocessableEntity, `{"message":"No commit found"}`),
			"/repos/o/r/commits/master": respond(http.StatusOK, `{"sha":"abc"}`),
			"/repos/o/r/git/trees/abc":  respond(http.StatusOK, treeJSON),
		})

		snap, err := c.Fetch(context.Background(), source.Ref{Owner: "o", Name: "r", Branch: "main"})
		require.NoError(t, err)
		assert.Equal(t, "master", snap.Ref.Branch)
		assert.Equal(t, "main", snap.Requested)
		assert.True(t, snap.BranchSwitched())
		assert.Equal(t, []string{
			"/repos/o/r",
			"/repos/o/r/commits/main",
			"/repos/o/r/commits/master",
			"/repos/o/r/git/trees/abc",
		}, *calls)
	})

	t.Run("missing default branch", func(t *testing.T) {
		c, _ := newServer(t, map[string]http.HandlerFunc{
			"/repos/o/r": respond(http.StatusOK, repoJSON),
		})

		_, err := c.Fetch(context.Background(), source.Ref{Owner: "o", Name: "r", Branch: "gone"})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), `branch "master" not found`)
	})

	t.Run("missing repository", func(t *testing.T) {
		c, calls := newServer(t, nil)

		_, err := c.Fetch(context.Background(), source.Ref{Owner: "o", Name: "r"})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "or is private")
		assert.Len(t, *calls, 1)
	})

	t.Run("empty repository", func(t *testing.T) {
		c, _ := newServer(t, map[string]http.HandlerFunc{
			"/repos/o/r":                respond(http.StatusOK, repoJSON),
			"/repos/o/r/commits/master": respond(http.StatusConflict, `{"message":"Git Repository is empty."}`),
		})

		snap, err := c.Fetch(context.Background(), source.Ref{Owner: "o", Name: "r"})
		require.NoError(t, err)
		assert.Empty(t, snap.Entries)
		assert.False(t, snap.FetchedAt.IsZero())
	})

	t.Run("truncated", func(t *testing.T) {
		c, _ := newServer(t, map[string]http.HandlerFunc{
			"/repos/o/r":                respond(http.StatusOK, repoJSON),
			"/repos/o/r/commits/master": respond(http.StatusOK, `{"sha":"abc"}`),
			"/repos/o/r/git/trees/abc":  respond(http.StatusOK, `{"sha":"abc","truncated":true,"tree":[{"path":"a","type":"blob"}]}`),
		})

		snap, err := c.Fetch(context.Background(), source.Ref{Owner: "o", Name: "r"})
		require.NoError(t, err)
		assert.True(t, snap.Truncated)
		assert.Len(t, snap.Entries, 1)
	})

	t.Run("unauthorized", func(t *testing.T) {
		c, _ := newServer(t, map[string]http.HandlerFunc{
			"/repos/o/r": respond(http.StatusUnauthorized, `{"message":"Bad credentials"}`),
		})

		_, err := c.Fetch(context.Background(), source.Ref{Owner: "o", Name: "r"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("server error", func(t *testing.T) {
		c, _ := newServer(t, map[string]http.HandlerFunc{
			"/repos/o/r": respond(http.StatusBadGateway, `{"message":"upstream"}`),
		})

		_, err := c.Fetch(context.Background(), source.Ref{Owner: "o", Name: "r"})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Equal(t, "GitHub API error (502): upstream", apiErr.Error())
	})

	t.Run("cancelled context", func(t *testing.T) {
		c, _ := newServer(t, map[string]http.HandlerFunc{
			"/repos/o/r": respond(http.StatusOK, repoJSON),
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Fetch(ctx, source.Ref{Owner: "o", Name: "r"})
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestRateLimit(t *testing.T) {
	reset := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	c, _ := newServer(t, map[string]http.HandlerFunc{
		"/repos/o/r": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
			w.WriteHeader(http.StatusForbidden)
		},
	})

	_, err := c.Fetch(context.Background(), source.Ref{Owner: "o", Name: "r"})

	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.True(t, rl.Reset.Equal(reset))
	assert.Equal(t, 10*time.Minute, rl.Wait(reset.Add(-10*time.Minute)))
	assert.Zero(t, rl.Wait(reset.Add(time.Second)))
	assert.Contains(t, rl.Error(), "rate limit exceeded")
}

func TestForbiddenWithoutRateLimit(t *testing.T) {
	c, _ := newServer(t, map[string]http.HandlerFunc{
		"/repos/o/r": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "42")
			w.WriteHeader(http.StatusForbidden)
		},
	})

	_, err := c.Fetch(context.Background(), source.Ref{Owner: "o", Name: "r"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestClientOptions(t *testing.T) {
	assert.False(t, New().Authenticated())
	assert.True(t, New(WithToken(" t ")).Authenticated())

	c := New(WithBaseURL("https://ghe.example.com/api/v3/"), WithWebURL("https://ghe.example.com/"))
	assert.Equal(t, "https://ghe.example.com/api/v3", c.baseURL)
	assert.Equal(t, "https://ghe.example.com", c.webURL)
}
