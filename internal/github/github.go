// Package github retrieves repository listings from the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/holonoms/ghtree/internal/hierarchy"
	"github.com/holonoms/ghtree/internal/source"
)

const (
	// DefaultBaseURL is the public GitHub API root.
	DefaultBaseURL = "https://api.github.com"
	// DefaultWebURL is the web root leaves link to.
	DefaultWebURL = "https://github.com"
)

var (
	// ErrNotFound is returned when the repository or branch does not exist,
	// or is private and no token with access was given.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the token is rejected.
	ErrUnauthorized = errors.New("bad credentials")
)

// RateLimitError is returned when the API quota is exhausted.
type RateLimitError struct {
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return "GitHub API rate limit exceeded"
	}
	return fmt.Sprintf("GitHub API rate limit exceeded, try again after %s", e.Reset.Local().Format(time.Kitchen))
}

// Wait returns how long until the quota resets, measured from now.
func (e *RateLimitError) Wait(now time.Time) time.Duration {
	if e.Reset.IsZero() || e.Reset.Before(now) {
		return 0
	}
	return e.Reset.Sub(now)
}

// APIError is any other non-success response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("GitHub API error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("GitHub API error (%d): %s", e.StatusCode, e.Message)
}

// Client talks to the GitHub REST API. It implements source.Source.
type Client struct {
	httpClient *http.Client
	baseURL    string
	webURL     string
	token      string
	log        *slog.Logger
}

var _ source.Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithToken authenticates requests with a personal access token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithWebURL sets the web root used for leaf links.
func WithWebURL(u string) Option {
	return func(c *Client) {
		c.webURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger requests are traced to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a GitHub API client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		webURL:     DefaultWebURL,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticated reports whether requests carry a token.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// MARK: Interface

// Repository describes a repository.
type Repository struct {
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
}

// Repository fetches the metadata of a repository.
func (c *Client) Repository(ctx context.Context, ref source.Ref) (*Repository, error) {
	var repo Repository
	if err := c.get(ctx, "/repos/"+ref.Repo(), &repo); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("repository %q %w or is private", ref.Repo(), err)
		}
		return nil, err
	}
	return &repo, nil
}

// Fetch retrieves the full listing of ref. When the requested branch does not
// exist the default branch is used instead, once. A repository without
// commits yields an empty snapshot.
func (c *Client) Fetch(ctx context.Context, ref source.Ref) (*source.Snapshot, error) {
	repo, err := c.Repository(ctx, ref)
	if err != nil {
		return nil, err
	}

	requested := ref.Branch
	branch := requested
	if branch == "" {
		branch = repo.DefaultBranch
	}

	snap := &source.Snapshot{
		Ref:         source.Ref{Owner: ref.Owner, Name: ref.Name, Branch: branch},
		Requested:   requested,
		Description: repo.Description,
		LinkBase:    c.webURL,
	}

	sha, err := c.commitSHA(ctx, ref, branch)
	if isMissingRef(err) && repo.DefaultBranch != "" && repo.DefaultBranch != branch {
		c.log.Debug("branch not found, retrying default branch", "branch", branch, "default", repo.DefaultBranch)
		branch = repo.DefaultBranch
		snap.Ref.Branch = branch
		sha, err = c.commitSHA(ctx, ref, branch)
	}
	if err != nil {
		if isMissingRef(err) {
			return nil, fmt.Errorf("branch %q %w in %s", branch, ErrNotFound, ref.Repo())
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			c.log.Debug("repository is empty", "repo", ref.Repo())
			snap.FetchedAt = time.Now()
			return snap, nil
		}
		return nil, err
	}

	t, err := c.tree(ctx, ref, sha)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			c.log.Debug("repository is empty", "repo", ref.Repo())
			snap.FetchedAt = time.Now()
			return snap, nil
		}
		return nil, err
	}

	snap.Truncated = t.Truncated
	for _, e := range t.Tree {
		kind, err := hierarchy.ParseKind(e.Type)
		if err != nil {
			c.log.Debug("skipping entry", "path", e.Path, "type", e.Type)
			continue
		}
		snap.Entries = append(snap.Entries, hierarchy.Entry{Path: e.Path, Kind: kind})
		snap.Size += e.Size
	}
	snap.FetchedAt = time.Now()

	return snap, nil
}

// MARK: Internal helper functions

type commit struct {
	SHA string `json:"sha"`
}

type treeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int64  `json:"size"`
}

type tree struct {
	SHA       string      `json:"sha"`
	Tree      []treeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

func (c *Client) commitSHA(ctx context.Context, ref source.Ref, branch string) (string, error) {
	var cm commit
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/commits/%s", ref.Repo(), url.PathEscape(branch)), &cm); err != nil {
		return "", err
	}
	return cm.SHA, nil
}

func (c *Client) tree(ctx context.Context, ref source.Ref, sha string) (*tree, error) {
	var t tree
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/git/trees/%s?recursive=1", ref.Repo(), url.PathEscape(sha)), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// isMissingRef reports whether err means the ref could not be resolved.
func isMissingRef(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity
}

// get performs a GET request against the API and decodes the JSON response
// into v.
func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "ghtree")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	c.log.Debug("request", "method", req.Method, "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.Debug("response", "url", req.URL.String(), "status", resp.StatusCode,
		"remaining", resp.Header.Get("X-RateLimit-Remaining"))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(resp, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func responseError(resp *http.Response, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden, http.StatusTooManyRequests:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.StatusCode == http.StatusTooManyRequests {
			rl := &RateLimitError{}
			if secs, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
				rl.Reset = time.Unix(secs, 0)
			}
			return rl
		}
	}

	return &APIError{StatusCode: resp.StatusCode, Message: payload.Message}
}
