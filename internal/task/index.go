package task

import (
	"fmt"
)

// Index maps ids to positions and parents to children for one collection
// snapshot. It is built once per operation and never updated in place.
type Index struct {
	tasks    []Task
	pos      map[string]int
	children map[string][]string
}

// NewIndex builds an Index over tasks. Ids must be unique.
func NewIndex(tasks []Task) (*Index, error) {
	idx := &Index{
		tasks:    tasks,
		pos:      make(map[string]int, len(tasks)),
		children: make(map[string][]string),
	}
	for i, t := range tasks {
		if _, dup := idx.pos[t.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
		idx.pos[t.ID] = i
	}
	for _, t := range tasks {
		if t.ParentID != "" {
			idx.children[t.ParentID] = append(idx.children[t.ParentID], t.ID)
		}
	}
	return idx, nil
}

// Len returns the number of rows in the snapshot.
func (x *Index) Len() int {
	return len(x.tasks)
}

// Has reports whether id is present.
func (x *Index) Has(id string) bool {
	_, ok := x.pos[id]
	return ok
}

// Position returns the display position of id.
func (x *Index) Position(id string) (int, bool) {
	i, ok := x.pos[id]
	return i, ok
}

// Get returns the task with the given id.
func (x *Index) Get(id string) (Task, error) {
	i, ok := x.pos[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	return x.tasks[i], nil
}

// Children returns the direct child ids of id in display order.
func (x *Index) Children(id string) []string {
	return x.children[id]
}

// Ancestors returns the parent chain of id, nearest first. A dangling parent
// reference or a loop in the chain is reported as an error.
func (x *Index) Ancestors(id string) ([]string, error) {
	t, err := x.Get(id)
	if err != nil {
		return nil, err
	}
	var out []string
	visited := map[string]bool{id: true}
	for cur := t.ParentID; cur != ""; {
		if visited[cur] {
			return nil, fmt.Errorf("%w: %s", ErrParentCycle, cur)
		}
		visited[cur] = true
		parent, err := x.Get(cur)
		if err != nil {
			return nil, fmt.Errorf("%w: %s (parent of %s)", ErrUnknownParent, cur, id)
		}
		out = append(out, cur)
		cur = parent.ParentID
	}
	return out, nil
}

// IsAncestor reports whether ancestor appears in the parent chain of id.
func (x *Index) IsAncestor(ancestor, id string) (bool, error) {
	chain, err := x.Ancestors(id)
	if err != nil {
		return false, err
	}
	for _, a := range chain {
		if a == ancestor {
			return true, nil
		}
	}
	return false, nil
}

// IsAncestorOrDescendant reports whether a and b are related by ancestry in
// either direction.
func (x *Index) IsAncestorOrDescendant(a, b string) (bool, error) {
	up, err := x.IsAncestor(a, b)
	if err != nil || up {
		return up, err
	}
	return x.IsAncestor(b, a)
}

// Descendants returns every descendant of id in display order.
func (x *Index) Descendants(id string) []string {
	set := make(map[string]bool)
	var walk func(string)
	walk = func(p string) {
		for _, c := range x.children[p] {
			if set[c] {
				continue
			}
			set[c] = true
			walk(c)
		}
	}
	walk(id)
	delete(set, id)

	out := make([]string, 0, len(set))
	for _, t := range x.tasks {
		if set[t.ID] {
			out = append(out, t.ID)
		}
	}
	return out
}

// Block returns id followed by its descendants, in display order. This is
// the set of rows that travels together when id is moved.
func (x *Index) Block(id string) []string {
	return append([]string{id}, x.Descendants(id)...)
}

// BlockEnd returns the display position of the last row of id's block.
func (x *Index) BlockEnd(id string) int {
	end := x.pos[id]
	for _, d := range x.Descendants(id) {
		if p := x.pos[d]; p > end {
			end = p
		}
	}
	return end
}

// CheckTree verifies that every parent reference resolves to a non-empty
// task and that the parent graph has no loops.
func (x *Index) CheckTree() error {
	for _, t := range x.tasks {
		if t.ParentID == "" {
			continue
		}
		p, err := x.Get(t.ParentID)
		if err != nil {
			return fmt.Errorf("%w: %s (parent of %s)", ErrUnknownParent, t.ParentID, t.ID)
		}
		if p.IsEmpty() {
			return fmt.Errorf("%w: %s is an empty row (parent of %s)", ErrUnknownParent, t.ParentID, t.ID)
		}
		if _, err := x.Ancestors(t.ID); err != nil {
			return err
		}
	}
	return nil
}
