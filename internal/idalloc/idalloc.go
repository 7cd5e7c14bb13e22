// Package idalloc derives hierarchical task identifiers such as "2.3".
package idalloc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/metalagman/timeline/internal/task"
)

// ErrIDInUse is returned when a rename target already names another task.
var ErrIDInUse = errors.New("id already in use")

// NextChildID returns the id for a new child of parentID: the parent id, a
// dot, and one more than the largest trailing number among its direct
// children. Ids already present anywhere in tasks are skipped.
func NextChildID(tasks []task.Task, parentID string) string {
	n := 0
	for _, t := range tasks {
		if t.ParentID != parentID {
			continue
		}
		if v, ok := trailingNumber(t.ID); ok && v > n {
			n = v
		}
	}
	return firstFree(tasks, n+1, func(i int) string {
		return parentID + "." + strconv.Itoa(i)
	})
}

// NextTopLevelID returns one more than the largest numeric top-level id.
// Ids already present anywhere in tasks are skipped.
func NextTopLevelID(tasks []task.Task) string {
	n := 0
	for _, t := range tasks {
		if t.ParentID != "" {
			continue
		}
		if v, err := strconv.Atoi(t.ID); err == nil && v > n {
			n = v
		}
	}
	return firstFree(tasks, n+1, strconv.Itoa)
}

func firstFree(tasks []task.Task, from int, format func(int) string) string {
	used := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		used[t.ID] = true
	}
	for i := from; ; i++ {
		if id := format(i); !used[id] {
			return id
		}
	}
}

func trailingNumber(id string) (int, bool) {
	seg := id
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		seg = id[i+1:]
	}
	v, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Rename returns a copy of tasks where oldID is replaced by newID on the
// task itself, on the ParentID of its children and on every dependency that
// names it as a source. All references change in the same pass.
func Rename(tasks []task.Task, oldID, newID string) ([]task.Task, error) {
	if oldID == newID {
		return task.Clone(tasks), nil
	}
	found := false
	for _, t := range tasks {
		switch t.ID {
		case newID:
			return nil, fmt.Errorf("%w: %s", ErrIDInUse, newID)
		case oldID:
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", task.ErrUnknownTask, oldID)
	}

	out := task.Clone(tasks)
	for i := range out {
		t := &out[i]
		if t.ID == oldID {
			t.ID = newID
		}
		if t.ParentID == oldID {
			t.ParentID = newID
		}
		for j := range t.Dependencies {
			if t.Dependencies[j].SourceID == oldID {
				t.Dependencies[j].SourceID = newID
			}
		}
	}
	return out, nil
}
