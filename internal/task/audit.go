package task

import (
	"errors"
	"fmt"
	"sort"
)

// Audit rule names.
const (
	RuleDuplicateID   = "duplicate_id"
	RuleUnknownParent = "unknown_parent"
	RuleEmptyParent   = "empty_parent"
	RuleParentCycle   = "parent_cycle"
	RuleInterval      = "interval"
	RuleProgress      = "progress"
	RuleContainment   = "containment"
	RuleAncestorEdge  = "ancestor_edge"
	RuleDuplicateEdge = "duplicate_edge"
	RuleUnknownSource = "unknown_source"
)

// Issue is one consistency violation found by Audit.
type Issue struct {
	Rule    string `json:"rule"              yaml:"rule"`
	TaskID  string `json:"task_id,omitempty" yaml:"task_id,omitempty"`
	Message string `json:"message"           yaml:"message"`

	// RelatedTaskIDs lists the other tasks involved, such as the parent or the
	// dependency source.
	RelatedTaskIDs []string `json:"related_task_ids,omitempty" yaml:"related_task_ids,omitempty"`
}

func (i Issue) String() string {
	if i.TaskID == "" {
		return fmt.Sprintf("%s: %s", i.Rule, i.Message)
	}
	return fmt.Sprintf("%s (task %s): %s", i.Rule, i.TaskID, i.Message)
}

// Audit checks tasks against every collection consistency rule and returns the
// violations found, in display order. A nil result means the collection is
// consistent.
func Audit(tasks []Task) []Issue {
	var issues []Issue

	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			issues = append(issues, Issue{Rule: RuleDuplicateID, TaskID: t.ID, Message: "id is used by more than one row"})
		}
		seen[t.ID] = true
	}
	if len(issues) > 0 {
		// Nothing below is meaningful without unique ids.
		return issues
	}

	idx, _ := NewIndex(tasks)
	cyclic := make(map[string]bool)

	for _, t := range tasks {
		if !t.IsEmpty() {
			if t.End.Before(t.Start) {
				issues = append(issues, Issue{Rule: RuleInterval, TaskID: t.ID, Message: "end is before start"})
			}
			if t.Progress < 0 || t.Progress > 100 {
				issues = append(issues, Issue{Rule: RuleProgress, TaskID: t.ID, Message: fmt.Sprintf("progress %.2f is outside [0,100]", t.Progress)})
			}
		}

		if t.ParentID != "" {
			p, err := idx.Get(t.ParentID)
			switch {
			case err != nil:
				issues = append(issues, Issue{Rule: RuleUnknownParent, TaskID: t.ID, Message: "parent does not exist", RelatedTaskIDs: []string{t.ParentID}})
			case p.IsEmpty():
				issues = append(issues, Issue{Rule: RuleEmptyParent, TaskID: t.ID, Message: "parent is an empty row", RelatedTaskIDs: []string{t.ParentID}})
			}
			if _, err := idx.Ancestors(t.ID); errors.Is(err, ErrParentCycle) {
				cyclic[t.ID] = true
				issues = append(issues, Issue{Rule: RuleParentCycle, TaskID: t.ID, Message: "parent chain loops", RelatedTaskIDs: []string{t.ParentID}})
			}
		}
	}

	for _, t := range tasks {
		if t.IsEmpty() {
			continue
		}
		if kids := idx.Children(t.ID); len(kids) > 0 {
			var outside []string
			for _, id := range kids {
				c, _ := idx.Get(id)
				if c.IsEmpty() {
					continue
				}
				if c.Start.Before(t.Start) || c.End.After(t.End) {
					outside = append(outside, id)
				}
			}
			if len(outside) > 0 {
				issues = append(issues, Issue{Rule: RuleContainment, TaskID: t.ID, Message: "children extend beyond the parent interval", RelatedTaskIDs: outside})
			}
		}

		dups := make(map[Dependency]bool, len(t.Dependencies))
		for _, dep := range t.Dependencies {
			if dups[dep] {
				issues = append(issues, Issue{Rule: RuleDuplicateEdge, TaskID: t.ID, Message: fmt.Sprintf("dependency on %s is listed twice", dep.SourceID), RelatedTaskIDs: []string{dep.SourceID}})
				continue
			}
			dups[dep] = true

			if !idx.Has(dep.SourceID) {
				issues = append(issues, Issue{Rule: RuleUnknownSource, TaskID: t.ID, Message: "dependency source does not exist", RelatedTaskIDs: []string{dep.SourceID}})
				continue
			}
			if cyclic[t.ID] || cyclic[dep.SourceID] {
				continue
			}
			related, err := idx.IsAncestorOrDescendant(dep.SourceID, t.ID)
			if err == nil && related {
				issues = append(issues, Issue{Rule: RuleAncestorEdge, TaskID: t.ID, Message: "dependency connects a task to its ancestor or descendant", RelatedTaskIDs: []string{dep.SourceID}})
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		pi, _ := idx.Position(issues[i].TaskID)
		pj, _ := idx.Position(issues[j].TaskID)
		return pi < pj
	})
	return issues
}
