package gitlocal

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/holonoms/ghtree/internal/hierarchy"
	"github.com/holonoms/ghtree/internal/source"
)

// Worktree lists the files of a directory, honouring the .gitignore files
// found in it. The .git directory is always skipped.
type Worktree struct {
	fs   billy.Filesystem
	name string
}

var _ source.Source = (*Worktree)(nil)

// OpenWorktree lists the directory at root.
func OpenWorktree(root string) *Worktree {
	name := filepath.Base(root)
	if abs, err := filepath.Abs(root); err == nil {
		name = filepath.Base(abs)
	}
	return NewWorktree(osfs.New(root), name)
}

// NewWorktree lists fs, naming the listing name.
func NewWorktree(fs billy.Filesystem, name string) *Worktree {
	return &Worktree{fs: fs, name: name}
}

// Fetch walks the directory. The ref is ignored.
func (w *Worktree) Fetch(ctx context.Context, _ source.Ref) (*source.Snapshot, error) {
	patterns, err := gitignore.ReadPatterns(w.fs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read gitignore patterns: %w", err)
	}
	matcher := gitignore.NewMatcher(patterns)

	snap := &source.Snapshot{Ref: source.Ref{Name: w.name}}

	stack := []string{""}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		infos, err := w.fs.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", dir, err)
		}

		for _, info := range infos {
			rel := path.Join(dir, info.Name())
			if info.IsDir() && info.Name() == ".git" {
				continue
			}
			if matcher.Match(strings.Split(rel, "/"), info.IsDir()) {
				continue
			}

			kind := hierarchy.Leaf
			if info.IsDir() {
				kind = hierarchy.Container
				stack = append(stack, rel)
			} else {
				snap.Size += info.Size()
			}
			snap.Entries = append(snap.Entries, hierarchy.Entry{Path: rel, Kind: kind})
		}
	}

	snap.FetchedAt = time.Now()
	return snap, nil
}
