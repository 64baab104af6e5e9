package hierarchy

// Index maps every path to its parent path and groups child paths by parent
// in input order. It is built in one pass over the entries.
type Index struct {
	parents  map[string]string
	children map[string][]string
}

// NewIndex indexes the given entries. Duplicate paths are indexed once, at
// their first occurrence.
func NewIndex(entries []Entry) *Index {
	ix := &Index{
		parents:  make(map[string]string, len(entries)),
		children: make(map[string][]string),
	}

	for _, e := range entries {
		if _, seen := ix.parents[e.Path]; seen {
			continue
		}
		parent := parentPath(e.Path)
		ix.parents[e.Path] = parent
		ix.children[parent] = append(ix.children[parent], e.Path)
	}

	return ix
}

// Parent returns the parent path of path and whether path was indexed.
func (ix *Index) Parent(path string) (string, bool) {
	parent, ok := ix.parents[path]
	return parent, ok
}

// Has reports whether path was present in the input.
func (ix *Index) Has(path string) bool {
	_, ok := ix.parents[path]
	return ok
}

// Children returns the paths whose parent is parent, in input order.
func (ix *Index) Children(parent string) []string {
	return ix.children[parent]
}

// Len returns the number of distinct indexed paths.
func (ix *Index) Len() int {
	return len(ix.parents)
}
