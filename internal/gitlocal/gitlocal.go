// Package gitlocal lists repositories that are available on disk, either the
// committed tree of a branch or the files of a working directory.
package gitlocal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/holonoms/ghtree/internal/hierarchy"
	"github.com/holonoms/ghtree/internal/source"
)

// Repository lists the committed tree of a local git repository. It
// implements source.Source; the owner and name of the requested Ref are
// ignored in favour of the repository's origin.
type Repository struct {
	repo *git.Repository
	name string
}

var _ source.Source = (*Repository)(nil)

// Open opens the git repository containing path.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", path, err)
	}

	name := filepath.Base(path)
	if abs, err := filepath.Abs(path); err == nil {
		name = filepath.Base(abs)
	}
	return New(repo, name), nil
}

// New wraps an already opened repository. name is used when the repository
// has no GitHub origin.
func New(repo *git.Repository, name string) *Repository {
	return &Repository{repo: repo, name: name}
}

// Fetch lists the tree of the branch named by ref. When the branch does not
// exist the HEAD commit is listed instead. A repository without commits
// yields an empty snapshot.
func (r *Repository) Fetch(ctx context.Context, ref source.Ref) (*source.Snapshot, error) {
	snap := &source.Snapshot{
		Ref:       r.ref(),
		Requested: ref.Branch,
	}
	if snap.Ref.Owner != "" {
		snap.LinkBase = "https://github.com"
	}

	hash, branch, err := r.resolve(ref.Branch)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			snap.Ref.Branch = ref.Branch
			snap.FetchedAt = time.Now()
			return snap, nil
		}
		return nil, err
	}
	snap.Ref.Branch = branch

	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", hash, err)
	}

	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name, entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to walk tree: %w", err)
		}

		kind := hierarchy.Leaf
		switch entry.Mode {
		case filemode.Dir:
			kind = hierarchy.Container
		case filemode.Regular, filemode.Executable, filemode.Deprecated:
			if f, err := tree.TreeEntryFile(&entry); err == nil {
				snap.Size += f.Size
			}
		}
		snap.Entries = append(snap.Entries, hierarchy.Entry{Path: name, Kind: kind})
	}

	snap.FetchedAt = time.Now()
	return snap, nil
}

// resolve finds the commit for branch, falling back to HEAD.
func (r *Repository) resolve(branch string) (plumbing.Hash, string, error) {
	if branch != "" {
		for _, name := range []plumbing.ReferenceName{
			plumbing.NewBranchReferenceName(branch),
			plumbing.NewRemoteReferenceName("origin", branch),
			plumbing.NewTagReferenceName(branch),
		} {
			if ref, err := r.repo.Reference(name, true); err == nil {
				return ref.Hash(), branch, nil
			}
		}
		if hash, err := r.repo.ResolveRevision(plumbing.Revision(branch)); err == nil {
			return *hash, branch, nil
		}
	}

	head, err := r.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, "", err
	}
	name := head.Name().Short()
	if !head.Name().IsBranch() {
		name = head.Hash().String()[:7]
	}
	return head.Hash(), name, nil
}

// ref derives the repository identity from the origin remote.
func (r *Repository) ref() source.Ref {
	remote, err := r.repo.Remote("origin")
	if err == nil && len(remote.Config().URLs) > 0 {
		if ref, ok := parseRemote(remote.Config().URLs[0]); ok {
			return ref
		}
	}
	return source.Ref{Name: r.name}
}

// parseRemote extracts owner and name from GitHub remote URLs in either the
// https or the scp-like ssh form.
func parseRemote(u string) (source.Ref, bool) {
	u = strings.TrimSpace(u)
	for _, prefix := range []string{"git@github.com:", "ssh://git@github.com/", "https://github.com/", "http://github.com/", "git://github.com/"} {
		if rest, ok := strings.CutPrefix(u, prefix); ok {
			ref, err := source.ParseRef(strings.TrimSuffix(rest, ".git"))
			if err != nil {
				return source.Ref{}, false
			}
			return source.Ref{Owner: ref.Owner, Name: ref.Name}, true
		}
	}
	return source.Ref{}, false
}
