// Package hierarchy turns a flat list of repository paths into an ordered
// tree. It indexes entries by parent path, builds the node tree, sorts
// sibling sets under a selectable policy and flattens the result back into
// the visible order used by the renderers.
package hierarchy

import (
	"fmt"
	"strings"
)

// Separator splits repository paths into segments.
const Separator = "/"

// Kind distinguishes container entries (directory-like) from leaf entries
// (file-like).
type Kind int

const (
	Leaf Kind = iota
	Container
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if k == Container {
		return "container"
	}
	return "leaf"
}

// ParseKind accepts the canonical kind names as well as the object types
// returned by git tree listings ("tree", "blob", "commit").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "container", "tree", "dir", "directory":
		return Container, nil
	case "leaf", "blob", "file":
		return Leaf, nil
	case "commit":
		// Submodules have no listable children in a recursive tree.
		return Leaf, nil
	default:
		return Leaf, fmt.Errorf("unknown entry kind: %q", s)
	}
}

// Entry is a single repository item as returned by a source.
type Entry struct {
	Path string
	Kind Kind
}

// Name returns the last segment of the entry path.
func (e Entry) Name() string {
	if i := strings.LastIndex(e.Path, Separator); i >= 0 {
		return e.Path[i+1:]
	}
	return e.Path
}

// Depth is the number of separators in the entry path.
func (e Entry) Depth() int {
	return strings.Count(e.Path, Separator)
}

// IsContainer reports whether the entry may own nested entries.
func (e Entry) IsContainer() bool {
	return e.Kind == Container
}

// parentPath returns the substring before the last separator, or "" for
// top-level paths.
func parentPath(path string) string {
	if i := strings.LastIndex(path, Separator); i >= 0 {
		return path[:i]
	}
	return ""
}
