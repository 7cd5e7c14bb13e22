package task

// CollapseAll hides the children of every parent row.
func CollapseAll(tasks []Task) []Task {
	return setCollapsed(tasks, func(int) bool { return true })
}

// ExpandAll shows the children of every parent row.
func ExpandAll(tasks []Task) []Task {
	return setCollapsed(tasks, func(int) bool { return false })
}

// ExpandFirstLevel shows top-level parents and hides everything deeper.
func ExpandFirstLevel(tasks []Task) []Task {
	return setCollapsed(tasks, func(depth int) bool { return depth > 0 })
}

func setCollapsed(tasks []Task, hide func(depth int) bool) []Task {
	out := Clone(tasks)
	idx, err := NewIndex(out)
	if err != nil {
		return out
	}
	for i := range out {
		if len(idx.Children(out[i].ID)) == 0 {
			continue
		}
		chain, err := idx.Ancestors(out[i].ID)
		if err != nil {
			continue
		}
		out[i].HideChildren = hide(len(chain))
	}
	return out
}
