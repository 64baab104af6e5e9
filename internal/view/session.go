package view

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/holonoms/ghtree/internal/filetree"
	"github.com/holonoms/ghtree/internal/hierarchy"
	"github.com/holonoms/ghtree/internal/source"
	"golang.org/x/text/language"
)

// ErrNoTree is returned when re-sorting before anything was loaded.
var ErrNoTree = errors.New("no repository loaded")

// Session owns the tree of the last loaded snapshot so that it can be
// re-sorted and re-rendered without fetching it again. It is safe for
// concurrent use; the last requested policy wins.
type Session struct {
	mu sync.Mutex

	log    *slog.Logger
	sorter *hierarchy.Sorter
	opts   filetree.Options
	policy hierarchy.SortPolicy

	snap    *source.Snapshot
	tree    *hierarchy.Tree
	current *Result
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger diagnostics are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithPolicy sets the initial sort policy.
func WithPolicy(p hierarchy.SortPolicy) Option {
	return func(s *Session) {
		s.policy = p
	}
}

// WithRenderOptions sets the style and icons used for rendering. Links are
// derived from the loaded snapshot unless opts.Links is set.
func WithRenderOptions(opts filetree.Options) Option {
	return func(s *Session) {
		s.opts = opts
	}
}

// WithLanguage sets the collation language used to compare names.
func WithLanguage(tag language.Tag) Option {
	return func(s *Session) {
		s.sorter = hierarchy.NewSorter(tag)
	}
}

// NewSession creates an empty session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		policy: hierarchy.DefaultSortPolicy,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sorter == nil {
		s.sorter = hierarchy.NewSorter(language.Und)
	}
	if s.opts.Style == "" {
		s.opts.Style = filetree.Classic
	}
	s.policy = normalizePolicy(s.policy)
	return s
}

// Load replaces the session state with snap and renders it under the
// current policy. A nil snapshot renders the empty state.
func (s *Session) Load(snap *source.Snapshot) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []hierarchy.Entry
	if snap != nil {
		entries = snap.Entries
		if snap.Truncated {
			s.log.Info("listing was truncated by the source", "repo", snap.Ref.String(), "entries", len(entries))
		}
		if snap.BranchSwitched() {
			s.log.Info("branch not found, using default branch", "requested", snap.Requested, "branch", snap.Ref.Branch)
		}
	}

	s.snap = snap
	s.tree = hierarchy.Build(entries)
	for _, d := range s.tree.Diagnostics {
		s.log.Warn("tree diagnostic", "path", d.Path, "parent", d.Parent, "message", d.Message)
	}
	s.log.Debug("tree built", "nodes", s.tree.Len(), "diagnostics", len(s.tree.Diagnostics))

	s.current = resort(s.sorter, s.tree, s.policy, s.renderer())
	return s.current
}

// Resort re-orders the loaded tree under policy and renders it again. An
// empty policy selects the default; aliases are accepted and unknown
// policies are rejected.
func (s *Session) Resort(policy hierarchy.SortPolicy) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tree == nil {
		return nil, ErrNoTree
	}
	if policy == "" {
		policy = hierarchy.DefaultSortPolicy
	}
	policy, err := hierarchy.ParseSortPolicy(string(policy))
	if err != nil {
		return nil, err
	}
	s.policy = policy
	s.current = resort(s.sorter, s.tree, policy, s.renderer())
	s.log.Debug("tree re-sorted", "policy", policy)
	return s.current, nil
}

// SetStyle changes the rendering style and icons. When a tree is loaded it
// is rendered again under the current policy.
func (s *Session) SetStyle(style filetree.Style, icons bool) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if style == "" {
		style = filetree.Classic
	}
	s.opts.Style = style
	s.opts.Icons = icons
	if s.tree == nil {
		return nil
	}
	s.current = resort(s.sorter, s.tree, s.policy, s.renderer())
	return s.current
}

// Current returns the latest result, or nil when nothing is loaded.
func (s *Session) Current() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Snapshot returns the loaded snapshot, or nil.
func (s *Session) Snapshot() *source.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Policy returns the current sort policy.
func (s *Session) Policy() hierarchy.SortPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// RenderOptions returns the current style and icon settings.
func (s *Session) RenderOptions() filetree.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// Clear discards the loaded tree. The policy and render options are kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = nil
	s.tree = nil
	s.current = nil
}

func (s *Session) renderer() *filetree.Renderer {
	opts := s.opts
	if opts.Links == nil && s.snap != nil && s.snap.LinkBase != "" {
		opts.Links = filetree.WebLinks(s.snap.LinkBase, s.snap.Ref.Repo(), s.snap.Ref.BranchOrDefault())
	}
	return filetree.New(opts)
}
