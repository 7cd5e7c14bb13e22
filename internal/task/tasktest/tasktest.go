// Package tasktest provides task collections for tests.
package tasktest

import (
	"time"

	"github.com/metalagman/timeline/internal/task"
)

// Day returns midnight UTC of the given date. UTC keeps daylight saving
// transitions out of test arithmetic.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// New returns a plain task spanning [start, end].
func New(id string, start, end time.Time) task.Task {
	return task.Task{ID: id, Name: "Task " + id, Kind: task.KindTask, Start: start, End: end}
}

// Child returns a plain task with a parent.
func Child(id, parentID string, start, end time.Time) task.Task {
	t := New(id, start, end)
	t.ParentID = parentID
	return t
}

// Project returns a project row spanning [start, end].
func Project(id string, start, end time.Time) task.Task {
	t := New(id, start, end)
	t.Kind = task.KindProject
	return t
}

// Empty returns a placeholder row.
func Empty(id string) task.Task {
	return task.Task{ID: id, Kind: task.KindEmpty}
}

// EndToStart is the usual finish-to-start dependency on sourceID.
func EndToStart(sourceID string) task.Dependency {
	return task.Dependency{SourceID: sourceID, SourceTarget: task.EndOfTask, OwnTarget: task.StartOfTask}
}

// Find returns the task with id, or false.
func Find(tasks []task.Task, id string) (task.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// IDs returns the ids of tasks in display order.
func IDs(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

// Plan returns a small three-phase plan with nested tasks and dependencies,
// all of which satisfy the collection consistency rules.
func Plan() []task.Task {
	planning := Project("1", Day(2024, time.January, 1), Day(2024, time.January, 15))
	requirements := Child("1.1", "1", Day(2024, time.January, 1), Day(2024, time.January, 5))
	research := Child("1.2", "1", Day(2024, time.January, 6), Day(2024, time.January, 15))
	research.Dependencies = []task.Dependency{EndToStart("1.1")}

	design := Project("2", Day(2024, time.January, 16), Day(2024, time.January, 30))
	design.Dependencies = []task.Dependency{EndToStart("1")}
	ux := Child("2.1", "2", Day(2024, time.January, 16), Day(2024, time.January, 25))
	db := Child("2.2", "2", Day(2024, time.January, 20), Day(2024, time.January, 30))
	db.Dependencies = []task.Dependency{EndToStart("2.1")}

	testing := New("3", Day(2024, time.February, 1), Day(2024, time.February, 10))
	testing.Dependencies = []task.Dependency{EndToStart("2")}

	release := New("4", Day(2024, time.February, 12), Day(2024, time.February, 12))
	release.Kind = task.KindMilestone
	release.Dependencies = []task.Dependency{EndToStart("3")}

	return []task.Task{planning, requirements, research, design, ux, db, testing, release}
}
