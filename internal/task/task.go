// Package task defines the timeline task model and collection helpers.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind identifies what a row in the collection represents.
type Kind string

const (
	// KindTask is a plain schedulable task.
	KindTask Kind = "task"
	// KindProject groups child tasks; its bounds contain theirs.
	KindProject Kind = "project"
	// KindMilestone is a task with a degenerate interval.
	KindMilestone Kind = "milestone"
	// KindEmpty is a placeholder row without schedule data.
	KindEmpty Kind = "empty"
)

// AllKinds returns the supported kinds.
func AllKinds() []Kind {
	return []Kind{KindTask, KindProject, KindMilestone, KindEmpty}
}

// ParseKind converts a string to a Kind. An empty string means KindTask.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if k == "" {
		return KindTask, nil
	}
	for _, candidate := range AllKinds() {
		if candidate == k {
			return candidate, nil
		}
	}
	return KindTask, fmt.Errorf("task: unknown kind %q", raw)
}

// Extremity names the endpoint of a task a dependency is anchored to.
type Extremity string

const (
	StartOfTask Extremity = "startOfTask"
	EndOfTask   Extremity = "endOfTask"
)

// Valid reports whether e is a known extremity.
func (e Extremity) Valid() bool {
	return e == StartOfTask || e == EndOfTask
}

// Contract errors. Callers can't recover from these by retrying the gesture.
var (
	ErrUnknownTask   = errors.New("unknown task")
	ErrUnknownParent = errors.New("unknown parent")
	ErrParentCycle   = errors.New("parent cycle")
	ErrDuplicateID   = errors.New("duplicate task id")
)

// Dependency is an edge from SourceID to the task that owns it.
type Dependency struct {
	SourceID     string    `json:"source_id"     yaml:"source_id"     mapstructure:"source_id"`
	SourceTarget Extremity `json:"source_target" yaml:"source_target" mapstructure:"source_target"`
	OwnTarget    Extremity `json:"own_target"    yaml:"own_target"    mapstructure:"own_target"`
}

// Task is one row of the timeline.
type Task struct {
	ID                 string       `json:"id"                             yaml:"id"                             mapstructure:"id"`
	Name               string       `json:"name"                           yaml:"name"                           mapstructure:"name"`
	Kind               Kind         `json:"kind"                           yaml:"kind"                           mapstructure:"kind"`
	Start              time.Time    `json:"start"                          yaml:"start"                          mapstructure:"start"`
	End                time.Time    `json:"end"                            yaml:"end"                            mapstructure:"end"`
	Progress           float64      `json:"progress"                       yaml:"progress"                       mapstructure:"progress"`
	ParentID           string       `json:"parent_id,omitempty"            yaml:"parent_id,omitempty"            mapstructure:"parent_id"`
	Dependencies       []Dependency `json:"dependencies,omitempty"         yaml:"dependencies,omitempty"         mapstructure:"dependencies"`
	HideChildren       bool         `json:"hide_children,omitempty"        yaml:"hide_children,omitempty"        mapstructure:"hide_children"`
	IsDisabled         bool         `json:"is_disabled,omitempty"          yaml:"is_disabled,omitempty"          mapstructure:"is_disabled"`
	IsRelationDisabled bool         `json:"is_relation_disabled,omitempty" yaml:"is_relation_disabled,omitempty" mapstructure:"is_relation_disabled"`
}

// IsEmpty reports whether t is a placeholder row.
func (t Task) IsEmpty() bool {
	return t.Kind == KindEmpty
}

// HasDependency reports whether t already carries dep.
func (t Task) HasDependency(dep Dependency) bool {
	for _, d := range t.Dependencies {
		if d == dep {
			return true
		}
	}
	return false
}

// Clone returns a copy of t that shares no dependency storage with it.
func (t Task) Clone() Task {
	if t.Dependencies != nil {
		t.Dependencies = append(make([]Dependency, 0, len(t.Dependencies)), t.Dependencies...)
	}
	return t
}

// Clone returns a deep copy of tasks. Dependency slices are not shared.
func Clone(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
