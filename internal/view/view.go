// Package view runs the ordering and rendering pipeline and keeps the state
// needed to re-sort a listing without fetching it again.
package view

import (
	"github.com/holonoms/ghtree/internal/filetree"
	"github.com/holonoms/ghtree/internal/hierarchy"
	"golang.org/x/text/language"
)

// Result is one pass of the pipeline.
type Result struct {
	Tree   *hierarchy.Tree
	Policy hierarchy.SortPolicy
	Items  []hierarchy.Item
	Output *filetree.Output
}

// PlainText is the copy/export form of the result.
func (r *Result) PlainText() string {
	return r.Output.PlainText
}

// Lines is the decorated form of the result.
func (r *Result) Lines() []filetree.RenderedLine {
	return r.Output.Lines
}

// Diagnostics are the non-fatal problems found while building the tree.
func (r *Result) Diagnostics() []hierarchy.Diagnostic {
	return r.Tree.Diagnostics
}

// Build indexes and builds the tree for entries, then orders and renders it
// under policy.
func Build(entries []hierarchy.Entry, policy hierarchy.SortPolicy, r *filetree.Renderer) *Result {
	return Resort(hierarchy.Build(entries), policy, r)
}

// Resort orders an already built tree under policy and renders it again.
// The tree is reordered in place.
func Resort(tree *hierarchy.Tree, policy hierarchy.SortPolicy, r *filetree.Renderer) *Result {
	return resort(hierarchy.NewSorter(language.Und), tree, policy, r)
}

func resort(s *hierarchy.Sorter, tree *hierarchy.Tree, policy hierarchy.SortPolicy, r *filetree.Renderer) *Result {
	policy = normalizePolicy(policy)
	if r == nil {
		r = filetree.New(filetree.Options{})
	}

	s.Sort(tree.Root, policy)
	items := hierarchy.Flatten(tree)

	return &Result{
		Tree:   tree,
		Policy: policy,
		Items:  items,
		Output: r.Render(items),
	}
}

// normalizePolicy resolves aliases and maps empty or unknown policies to
// the default, so Result.Policy always names the order that was applied.
func normalizePolicy(p hierarchy.SortPolicy) hierarchy.SortPolicy {
	parsed, err := hierarchy.ParseSortPolicy(string(p))
	if err != nil {
		return hierarchy.DefaultSortPolicy
	}
	return parsed
}
