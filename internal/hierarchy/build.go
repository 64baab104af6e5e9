package hierarchy

import "fmt"

// Node is one element of the built tree. The synthetic root has an empty
// name and a nil Entry.
type Node struct {
	Name     string
	Kind     Kind
	Children []*Node
	Entry    *Entry

	// Orphan is set when the entry's parent path was not present in the
	// input and the node was attached to the root instead.
	Orphan bool

	// seq is the position of the entry in the input, the final tie-break
	// when sorting.
	seq int
}

// Path returns the full path of the node, "" for the root.
func (n *Node) Path() string {
	if n.Entry == nil {
		return ""
	}
	return n.Entry.Path
}

// IsRoot reports whether n is the synthetic root.
func (n *Node) IsRoot() bool {
	return n.Entry == nil
}

// Diagnostic describes a non-fatal problem found while building the tree.
type Diagnostic struct {
	Path    string
	Parent  string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Path, d.Message)
}

// Tree is the result of Build: the synthetic root plus build diagnostics.
type Tree struct {
	Root        *Node
	Diagnostics []Diagnostic
	size        int
}

// Len returns the number of entry nodes in the tree (the root excluded).
func (t *Tree) Len() int {
	return t.size
}

// Build constructs the node tree for entries. The input does not need to be
// sorted or grouped by depth. Entries whose parent path is absent (or names
// a leaf) are attached to the root and reported as diagnostics; duplicate
// and empty paths are skipped and reported. Build never fails.
func Build(entries []Entry) *Tree {
	t := &Tree{
		Root: &Node{Kind: Container, seq: -1},
	}

	nodes := make(map[string]*Node, len(entries))
	order := make([]*Node, 0, len(entries))
	for i := range entries {
		e := entries[i]
		if e.Path == "" {
			t.Diagnostics = append(t.Diagnostics, Diagnostic{
				Message: fmt.Sprintf("entry %d has an empty path, skipped", i),
			})
			continue
		}
		if _, dup := nodes[e.Path]; dup {
			t.Diagnostics = append(t.Diagnostics, Diagnostic{
				Path:    e.Path,
				Parent:  parentPath(e.Path),
				Message: "duplicate path, keeping first occurrence",
			})
			continue
		}
		n := &Node{
			Name:  e.Name(),
			Kind:  e.Kind,
			Entry: &e,
			seq:   i,
		}
		nodes[e.Path] = n
		order = append(order, n)
	}

	ix := NewIndex(entries)

	attached := make(map[*Node]bool, len(order))
	adopt := func(start *Node) {
		// Walk down through the parent index; every container reached
		// adopts the children grouped under its path.
		stack := []*Node{start}
		for len(stack) > 0 {
			parent := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for _, p := range ix.Children(parent.Path()) {
				child, ok := nodes[p]
				if !ok || attached[child] {
					continue
				}
				parent.Children = append(parent.Children, child)
				attached[child] = true
				if child.Kind == Container {
					stack = append(stack, child)
				}
			}
		}
	}
	adopt(t.Root)

	// Orphan roots are nodes without a usable parent. Everything else not
	// yet reached sits below one of them and is attached by adopt.
	for _, n := range order {
		if attached[n] {
			continue
		}
		parent, _ := ix.Parent(n.Path())
		pn, ok := nodes[parent]
		if ok && pn.Kind == Container {
			continue
		}
		msg := fmt.Sprintf("parent %q not found, attached to root", parent)
		if ok {
			msg = fmt.Sprintf("parent %q is not a container, attached to root", parent)
		}
		n.Orphan = true
		t.Root.Children = append(t.Root.Children, n)
		attached[n] = true
		t.Diagnostics = append(t.Diagnostics, Diagnostic{
			Path:    n.Path(),
			Parent:  parent,
			Message: msg,
		})
		if n.Kind == Container {
			adopt(n)
		}
	}

	t.size = len(order)
	return t
}
