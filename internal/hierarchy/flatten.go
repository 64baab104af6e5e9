package hierarchy

// Item is one entry in visible order, annotated with what the renderers need
// to draw it.
type Item struct {
	Entry Entry
	Name  string

	// Depth is the number of separators in the entry path.
	Depth int
	// Level is the nesting level in the built tree. It differs from Depth
	// only for orphans and their descendants.
	Level int
	// Last is set when the entry is the final child of its parent.
	Last bool
	// Lineage holds the Last flag of every ancestor, outermost first.
	Lineage []bool
	Orphan  bool
}

// Flatten walks the tree depth-first in pre-order, skipping the root, and
// returns exactly one Item per entry node. A container is emitted directly
// before its children.
func Flatten(t *Tree) []Item {
	if t == nil || t.Root == nil {
		return nil
	}

	type frame struct {
		node    *Node
		last    bool
		lineage []bool
	}

	items := make([]Item, 0, t.Len())
	stack := make([]frame, 0, len(t.Root.Children))
	push := func(children []*Node, lineage []bool) {
		// Reverse order so the first child is popped first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				node:    children[i],
				last:    i == len(children)-1,
				lineage: lineage,
			})
		}
	}
	push(t.Root.Children, nil)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := f.node
		items = append(items, Item{
			Entry:   *n.Entry,
			Name:    n.Name,
			Depth:   n.Entry.Depth(),
			Level:   len(f.lineage),
			Last:    f.last,
			Lineage: f.lineage,
			Orphan:  n.Orphan,
		})

		if len(n.Children) > 0 {
			lineage := make([]bool, len(f.lineage)+1)
			copy(lineage, f.lineage)
			lineage[len(f.lineage)] = f.last
			push(n.Children, lineage)
		}
	}

	return items
}
