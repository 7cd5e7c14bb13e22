package reducer

import (
	"fmt"
	"time"

	"github.com/metalagman/timeline/internal/task"
)

// Kind is the wire tag of an intent.
type Kind string

const (
	KindDateChange     Kind = "date_change"
	KindProgressChange Kind = "progress_change"
	KindMoveBefore     Kind = "move_task_before"
	KindMoveAfter      Kind = "move_task_after"
	KindMoveInside     Kind = "move_task_inside"
	KindRelationChange Kind = "relation_change"
	KindDeleteRelation Kind = "delete_relation"
	KindDeleteTask     Kind = "delete_task"
	KindIndent         Kind = "indent"
	KindOutdent        Kind = "outdent"
)

// AllKinds returns every intent kind.
func AllKinds() []Kind {
	return []Kind{
		KindDateChange, KindProgressChange,
		KindMoveBefore, KindMoveAfter, KindMoveInside,
		KindRelationChange, KindDeleteRelation, KindDeleteTask,
		KindIndent, KindOutdent,
	}
}

// Intent is a user gesture to apply to a collection. The set of intents is
// closed: only the types in this package implement it.
type Intent interface {
	Kind() Kind
	intent()
}

// NewIntent returns a zero payload for kind, ready to be decoded into.
func NewIntent(kind Kind) (Intent, error) {
	switch kind {
	case KindDateChange:
		return &DateChange{}, nil
	case KindProgressChange:
		return &ProgressChange{}, nil
	case KindMoveBefore:
		return &MoveTaskBefore{}, nil
	case KindMoveAfter:
		return &MoveTaskAfter{}, nil
	case KindMoveInside:
		return &MoveTaskInside{}, nil
	case KindRelationChange:
		return &RelationChange{}, nil
	case KindDeleteRelation:
		return &DeleteRelation{}, nil
	case KindDeleteTask:
		return &DeleteTask{}, nil
	case KindIndent:
		return &Indent{}, nil
	case KindOutdent:
		return &Outdent{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, kind)
	}
}

// DateChange sets the interval of one task.
type DateChange struct {
	TaskID string    `json:"task_id" mapstructure:"task_id"`
	Start  time.Time `json:"start"   mapstructure:"start"`
	End    time.Time `json:"end"     mapstructure:"end"`
	// Cascade overrides the reducer default for moving a project's
	// descendants along with it.
	Cascade *bool `json:"cascade,omitempty" mapstructure:"cascade"`
}

// ProgressChange sets the progress of one task.
type ProgressChange struct {
	TaskID   string  `json:"task_id"  mapstructure:"task_id"`
	Progress float64 `json:"progress" mapstructure:"progress"`
}

// MoveTaskBefore places a task right before TargetID, as its sibling.
type MoveTaskBefore struct {
	TaskID   string `json:"task_id"   mapstructure:"task_id"`
	TargetID string `json:"target_id" mapstructure:"target_id"`
}

// MoveTaskAfter places a task right after TargetID and its subtree, as its
// sibling.
type MoveTaskAfter struct {
	TaskID   string `json:"task_id"   mapstructure:"task_id"`
	TargetID string `json:"target_id" mapstructure:"target_id"`
}

// MoveTaskInside makes a task the last child of ParentID.
type MoveTaskInside struct {
	TaskID   string `json:"task_id"   mapstructure:"task_id"`
	ParentID string `json:"parent_id" mapstructure:"parent_id"`
}

// Endpoint is one end of a relation gesture.
type Endpoint struct {
	TaskID string         `json:"task_id" mapstructure:"task_id"`
	Target task.Extremity `json:"target"  mapstructure:"target"`
}

// RelationChange adds a dependency of To on From.
type RelationChange struct {
	From Endpoint `json:"from" mapstructure:"from"`
	To   Endpoint `json:"to"   mapstructure:"to"`
	// Related is the caller's ancestry answer. The reducer also derives it
	// from the collection and rejects when either says so.
	Related bool `json:"related,omitempty" mapstructure:"related"`
}

// DeleteRelation removes a dependency from the task that owns it.
type DeleteRelation struct {
	TaskID     string          `json:"task_id"    mapstructure:"task_id"`
	Dependency task.Dependency `json:"dependency" mapstructure:"dependency"`
}

// ChildPolicy decides what happens to the children of a deleted task.
type ChildPolicy string

const (
	// PromoteChildren reattaches children to the deleted task's parent.
	PromoteChildren ChildPolicy = "promote"
	// DeleteSubtree removes every descendant as well.
	DeleteSubtree ChildPolicy = "delete_subtree"
)

// ParseChildPolicy converts a string to a ChildPolicy.
func ParseChildPolicy(raw string) (ChildPolicy, error) {
	switch p := ChildPolicy(raw); p {
	case PromoteChildren, DeleteSubtree:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChildPolicy, raw)
	}
}

// DeleteTask removes a task.
type DeleteTask struct {
	TaskID string `json:"task_id" mapstructure:"task_id"`
	// Children overrides the reducer default when set.
	Children ChildPolicy `json:"children,omitempty" mapstructure:"children"`
}

// Indent makes a task the last child of its previous sibling.
type Indent struct {
	TaskID string `json:"task_id" mapstructure:"task_id"`
}

// Outdent moves a task up to its parent's level, right after the parent.
type Outdent struct {
	TaskID string `json:"task_id" mapstructure:"task_id"`
}

func (DateChange) Kind() Kind     { return KindDateChange }
func (ProgressChange) Kind() Kind { return KindProgressChange }
func (MoveTaskBefore) Kind() Kind { return KindMoveBefore }
func (MoveTaskAfter) Kind() Kind  { return KindMoveAfter }
func (MoveTaskInside) Kind() Kind { return KindMoveInside }
func (RelationChange) Kind() Kind { return KindRelationChange }
func (DeleteRelation) Kind() Kind { return KindDeleteRelation }
func (DeleteTask) Kind() Kind     { return KindDeleteTask }
func (Indent) Kind() Kind         { return KindIndent }
func (Outdent) Kind() Kind        { return KindOutdent }

func (DateChange) intent()     {}
func (ProgressChange) intent() {}
func (MoveTaskBefore) intent() {}
func (MoveTaskAfter) intent()  {}
func (MoveTaskInside) intent() {}
func (RelationChange) intent() {}
func (DeleteRelation) intent() {}
func (DeleteTask) intent()     {}
func (Indent) intent()         {}
func (Outdent) intent()        {}
