// Package hierarchy keeps parent intervals consistent with their children.
package hierarchy

import (
	"fmt"
	"time"

	"github.com/metalagman/timeline/internal/task"
)

// Propagate grows every parent so that it contains its direct children and
// walks the growth up the tree. Bounds never shrink. The input is not
// modified.
func Propagate(tasks []task.Task) ([]task.Task, error) {
	out := task.Clone(tasks)
	idx, err := task.NewIndex(out)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, t := range out {
		if t.ParentID == "" || seen[t.ParentID] {
			continue
		}
		seen[t.ParentID] = true
		if err := grow(out, idx, t.ParentID, make(map[string]bool)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// grow fits parentID around its children and recurses while the parent
// changes. visited guards against a corrupted, cyclic parent graph.
func grow(tasks []task.Task, idx *task.Index, parentID string, visited map[string]bool) error {
	for parentID != "" {
		if visited[parentID] {
			return fmt.Errorf("%w: %s", task.ErrParentCycle, parentID)
		}
		visited[parentID] = true

		pos, ok := idx.Position(parentID)
		if !ok {
			return fmt.Errorf("%w: %s", task.ErrUnknownParent, parentID)
		}
		parent := &tasks[pos]
		if parent.IsEmpty() {
			return nil
		}

		start, end, ok := childSpan(tasks, idx, parentID)
		if !ok {
			return nil
		}
		if !start.Before(parent.Start) && !end.After(parent.End) {
			return nil
		}
		if start.Before(parent.Start) {
			parent.Start = start
		}
		if end.After(parent.End) {
			parent.End = end
		}
		parentID = parent.ParentID
	}
	return nil
}

// childSpan returns the union interval of the non-empty direct children of id.
func childSpan(tasks []task.Task, idx *task.Index, id string) (start, end time.Time, ok bool) {
	for _, cid := range idx.Children(id) {
		pos, _ := idx.Position(cid)
		c := tasks[pos]
		if c.IsEmpty() {
			continue
		}
		if !ok || c.Start.Before(start) {
			start = c.Start
		}
		if !ok || c.End.After(end) {
			end = c.End
		}
		ok = true
	}
	return start, end, ok
}

// Cascade maps every descendant of id from the interval [oldStart, oldEnd]
// onto id's current interval, keeping each descendant at the same relative
// position and proportion. A degenerate old interval shifts descendants by the
// start delta instead.
func Cascade(tasks []task.Task, id string, oldStart, oldEnd time.Time) ([]task.Task, error) {
	out := task.Clone(tasks)
	idx, err := task.NewIndex(out)
	if err != nil {
		return nil, err
	}
	pos, ok := idx.Position(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", task.ErrUnknownTask, id)
	}
	if _, err := idx.Ancestors(id); err != nil {
		return nil, err
	}
	project := out[pos]

	oldSpan := oldEnd.Sub(oldStart)
	newSpan := project.End.Sub(project.Start)
	remap := func(t time.Time) time.Time {
		if oldSpan <= 0 || oldSpan == newSpan {
			return t.Add(project.Start.Sub(oldStart))
		}
		ratio := float64(t.Sub(oldStart)) / float64(oldSpan)
		return project.Start.Add(time.Duration(ratio * float64(newSpan)))
	}

	for _, did := range idx.Descendants(id) {
		dpos, _ := idx.Position(did)
		d := &out[dpos]
		if d.IsEmpty() {
			continue
		}
		d.Start, d.End = remap(d.Start), remap(d.End)
	}
	return out, nil
}
