// Package source defines how repository listings are acquired. A Source
// resolves a repository reference into a Snapshot of flat entries; the
// GitHub and local git implementations live in their own packages.
package source

import (
	"context"
	"time"

	"github.com/holonoms/ghtree/internal/hierarchy"
)

// Source retrieves the full listing of a repository at a branch. A failed
// fetch returns an error and no partial data.
type Source interface {
	Fetch(ctx context.Context, ref Ref) (*Snapshot, error)
}

// Snapshot is one retrieved listing.
type Snapshot struct {
	// Ref names the repository and the branch the listing was taken from.
	Ref Ref
	// Requested is the branch asked for, which may differ from Ref.Branch
	// when the source fell back to the default branch.
	Requested string

	Entries     []hierarchy.Entry
	Truncated   bool
	Description string
	// Size is the total byte size of the leaves, when the source knows it.
	Size int64

	// LinkBase is the web root leaves link to (for example
	// https://github.com); empty when entries have no web location.
	LinkBase string

	FetchedAt time.Time
}

// BranchSwitched reports whether the source fell back to another branch.
func (s *Snapshot) BranchSwitched() bool {
	return s.Requested != "" && s.Requested != s.Ref.Branch
}

// Counts returns the number of containers and leaves in the snapshot.
func (s *Snapshot) Counts() (containers, leaves int) {
	for _, e := range s.Entries {
		if e.Kind == hierarchy.Container {
			containers++
		} else {
			leaves++
		}
	}
	return containers, leaves
}
