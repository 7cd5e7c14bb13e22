// Package reducer applies user intents to a task collection and returns the
// next collection. Every call works on a fresh copy of its input.
package reducer

import (
	"errors"
	"fmt"
	"math"

	"github.com/metalagman/timeline/internal/hierarchy"
	"github.com/metalagman/timeline/internal/idalloc"
	"github.com/metalagman/timeline/internal/relation"
	"github.com/metalagman/timeline/internal/task"
	"github.com/rs/zerolog"
)

var (
	// ErrNilIntent is returned when Reduce is called without an intent.
	ErrNilIntent = errors.New("nil intent")
	// ErrUnknownIntent is returned for an intent kind the reducer does not know.
	ErrUnknownIntent = errors.New("unknown intent")
	// ErrInvalidInterval is returned when a date change ends before it starts.
	ErrInvalidInterval = errors.New("end before start")
	// ErrInvalidProgress is returned for a progress value that is not a number.
	ErrInvalidProgress = errors.New("invalid progress")
	// ErrInvalidExtremity is returned for a relation endpoint that is neither
	// the start nor the end of a task.
	ErrInvalidExtremity = errors.New("invalid extremity")
	// ErrUnknownChildPolicy is returned for an unsupported delete policy.
	ErrUnknownChildPolicy = errors.New("unknown child policy")
)

// Rejection reasons reported for intents that leave the collection unchanged.
const (
	RejectTaskDisabled      = "task_disabled"
	RejectEmptyRow          = "empty_row"
	RejectInvalidMove       = "invalid_move"
	RejectUnknownRelation   = "unknown_relation"
	RejectNoPreviousSibling = "no_previous_sibling"
	RejectAlreadyTopLevel   = "already_top_level"
)

// Result is the outcome of one Reduce call.
type Result struct {
	Tasks  []task.Task
	Intent Intent
	// Changed is false when the intent was rejected.
	Changed bool
	// Rejection names why the intent was turned into a no-op.
	Rejection string
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithLogger sets the logger used for decision tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Reducer) { r.log = l }
}

// WithCascade sets whether date changes on a project move its descendants
// when the intent does not say.
func WithCascade(on bool) Option {
	return func(r *Reducer) { r.cascade = on }
}

// WithChildPolicy sets the policy used by delete_task when the intent does
// not carry one.
func WithChildPolicy(p ChildPolicy) Option {
	return func(r *Reducer) { r.childPolicy = p }
}

// WithCycleCheck makes relation changes that close a dependency cycle
// rejections.
func WithCycleCheck(on bool) Option {
	return func(r *Reducer) { r.rejectCycles = on }
}

// Reducer applies intents. It holds configuration only and is safe for
// concurrent use.
type Reducer struct {
	log          zerolog.Logger
	cascade      bool
	childPolicy  ChildPolicy
	rejectCycles bool
}

// New returns a Reducer. By default it does not cascade, promotes the
// children of deleted tasks and accepts dependency cycles.
func New(opts ...Option) *Reducer {
	r := &Reducer{
		log:         zerolog.Nop(),
		childPolicy: PromoteChildren,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reduce applies intent to tasks with the default Reducer.
func Reduce(tasks []task.Task, intent Intent) (Result, error) {
	return New().Reduce(tasks, intent)
}

// Reduce applies intent to tasks and returns the next collection. Illegal
// but recoverable gestures produce an unchanged copy and a Rejection.
// Malformed input produces an error.
func (r *Reducer) Reduce(tasks []task.Task, intent Intent) (Result, error) {
	if intent == nil {
		return Result{}, ErrNilIntent
	}
	idx, err := task.NewIndex(tasks)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", intent.Kind(), err)
	}
	if err := idx.CheckTree(); err != nil {
		return Result{}, fmt.Errorf("%s: %w", intent.Kind(), err)
	}

	var (
		next   []task.Task
		reject string
	)
	switch in := intent.(type) {
	case DateChange:
		next, reject, err = r.dateChange(tasks, idx, in)
	case *DateChange:
		next, reject, err = r.dateChange(tasks, idx, *in)
	case ProgressChange:
		next, reject, err = r.progressChange(tasks, idx, in)
	case *ProgressChange:
		next, reject, err = r.progressChange(tasks, idx, *in)
	case MoveTaskBefore:
		next, reject, err = r.move(tasks, idx, in.TaskID, in.TargetID, placeBefore)
	case *MoveTaskBefore:
		next, reject, err = r.move(tasks, idx, in.TaskID, in.TargetID, placeBefore)
	case MoveTaskAfter:
		next, reject, err = r.move(tasks, idx, in.TaskID, in.TargetID, placeAfter)
	case *MoveTaskAfter:
		next, reject, err = r.move(tasks, idx, in.TaskID, in.TargetID, placeAfter)
	case MoveTaskInside:
		next, reject, err = r.move(tasks, idx, in.TaskID, in.ParentID, placeInside)
	case *MoveTaskInside:
		next, reject, err = r.move(tasks, idx, in.TaskID, in.ParentID, placeInside)
	case RelationChange:
		next, reject, err = r.relationChange(tasks, idx, in)
	case *RelationChange:
		next, reject, err = r.relationChange(tasks, idx, *in)
	case DeleteRelation:
		next, reject, err = r.deleteRelation(tasks, idx, in)
	case *DeleteRelation:
		next, reject, err = r.deleteRelation(tasks, idx, *in)
	case DeleteTask:
		next, reject, err = r.deleteTask(tasks, idx, in)
	case *DeleteTask:
		next, reject, err = r.deleteTask(tasks, idx, *in)
	case Indent:
		next, reject, err = r.indent(tasks, idx, in.TaskID)
	case *Indent:
		next, reject, err = r.indent(tasks, idx, in.TaskID)
	case Outdent:
		next, reject, err = r.outdent(tasks, idx, in.TaskID)
	case *Outdent:
		next, reject, err = r.outdent(tasks, idx, in.TaskID)
	default:
		return Result{}, fmt.Errorf("%w: %T", ErrUnknownIntent, intent)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", intent.Kind(), err)
	}

	if reject != "" {
		r.log.Debug().
			Str("intent", string(intent.Kind())).
			Str("reason", reject).
			Msg("intent rejected")
		return Result{Tasks: task.Clone(tasks), Intent: intent, Rejection: reject}, nil
	}
	r.log.Debug().
		Str("intent", string(intent.Kind())).
		Int("tasks", len(next)).
		Msg("intent applied")
	return Result{Tasks: next, Intent: intent, Changed: true}, nil
}

// target loads id and checks that it accepts mutations.
func target(idx *task.Index, id string) (task.Task, string, error) {
	t, err := idx.Get(id)
	if err != nil {
		return task.Task{}, "", err
	}
	if t.IsDisabled {
		return t, RejectTaskDisabled, nil
	}
	return t, "", nil
}

func (r *Reducer) dateChange(tasks []task.Task, idx *task.Index, in DateChange) ([]task.Task, string, error) {
	t, reject, err := target(idx, in.TaskID)
	if err != nil || reject != "" {
		return nil, reject, err
	}
	if t.IsEmpty() {
		return nil, RejectEmptyRow, nil
	}
	if in.End.Before(in.Start) {
		return nil, "", fmt.Errorf("%w: %s", ErrInvalidInterval, in.TaskID)
	}

	out := task.Clone(tasks)
	pos, _ := idx.Position(in.TaskID)
	out[pos].Start, out[pos].End = in.Start, in.End

	cascade := r.cascade
	if in.Cascade != nil {
		cascade = *in.Cascade
	}
	if cascade && t.Kind == task.KindProject && len(idx.Children(t.ID)) > 0 {
		out, err = hierarchy.Cascade(out, t.ID, t.Start, t.End)
		if err != nil {
			return nil, "", err
		}
		r.log.Debug().Str("task_id", t.ID).Msg("cascaded date change to descendants")
	}
	return r.propagate(out)
}

func (r *Reducer) progressChange(tasks []task.Task, idx *task.Index, in ProgressChange) ([]task.Task, string, error) {
	t, reject, err := target(idx, in.TaskID)
	if err != nil || reject != "" {
		return nil, reject, err
	}
	if t.IsEmpty() {
		return nil, RejectEmptyRow, nil
	}
	if math.IsNaN(in.Progress) {
		return nil, "", fmt.Errorf("%w: %s", ErrInvalidProgress, in.TaskID)
	}

	out := task.Clone(tasks)
	pos, _ := idx.Position(in.TaskID)
	out[pos].Progress = math.Min(100, math.Max(0, in.Progress))
	return out, "", nil
}

type placement int

const (
	placeBefore placement = iota
	placeAfter
	placeInside
)

func (r *Reducer) move(tasks []task.Task, idx *task.Index, id, targetID string, where placement) ([]task.Task, string, error) {
	_, reject, err := target(idx, id)
	if err != nil || reject != "" {
		return nil, reject, err
	}
	dest, err := idx.Get(targetID)
	if err != nil {
		return nil, "", err
	}
	if id == targetID {
		return nil, RejectInvalidMove, nil
	}
	inside, err := idx.IsAncestor(id, targetID)
	if err != nil {
		return nil, "", err
	}
	if inside {
		return nil, RejectInvalidMove, nil
	}

	parentID := dest.ParentID
	if where == placeInside {
		if dest.IsEmpty() {
			return nil, RejectEmptyRow, nil
		}
		parentID = dest.ID
	}

	moving := make(map[string]bool)
	for _, b := range idx.Block(id) {
		moving[b] = true
	}
	destBlock := make(map[string]bool)
	for _, b := range idx.Block(targetID) {
		destBlock[b] = true
	}

	// Rows that stay put, in order, and the insertion point among them.
	rest := make([]task.Task, 0, len(tasks))
	block := make([]task.Task, 0, len(moving))
	at := -1
	for _, t := range tasks {
		if moving[t.ID] {
			b := t.Clone()
			// Descendants may precede the moved task in display order.
			if b.ID == id {
				b.ParentID = parentID
			}
			block = append(block, b)
			continue
		}
		switch {
		case where == placeBefore && t.ID == targetID:
			at = len(rest)
		case where != placeBefore && destBlock[t.ID]:
			at = len(rest) + 1
		}
		rest = append(rest, t.Clone())
	}

	out := make([]task.Task, 0, len(tasks))
	out = append(out, rest[:at]...)
	out = append(out, block...)
	out = append(out, rest[at:]...)
	return r.propagate(out)
}

func (r *Reducer) relationChange(tasks []task.Task, idx *task.Index, in RelationChange) ([]task.Task, string, error) {
	from, err := idx.Get(in.From.TaskID)
	if err != nil {
		return nil, "", err
	}
	to, reject, err := target(idx, in.To.TaskID)
	if err != nil || reject != "" {
		return nil, reject, err
	}
	if !in.From.Target.Valid() || !in.To.Target.Valid() {
		return nil, "", fmt.Errorf("%w: %q -> %q", ErrInvalidExtremity, in.From.Target, in.To.Target)
	}
	if from.IsEmpty() || to.IsEmpty() {
		return nil, RejectEmptyRow, nil
	}

	related := in.Related
	if !related {
		related, err = idx.IsAncestorOrDescendant(from.ID, to.ID)
		if err != nil {
			return nil, "", err
		}
	}
	if v := relation.Check(from, to, in.From.Target, in.To.Target, related); v != relation.Allowed {
		return nil, v.String(), nil
	}
	if r.rejectCycles {
		if path := relation.WouldCycle(tasks, from.ID, to.ID); path != nil {
			r.log.Debug().Strs("cycle", path).Msg("relation would close a dependency cycle")
			return nil, relation.RejectedCycle.String(), nil
		}
	}

	out := task.Clone(tasks)
	pos, _ := idx.Position(to.ID)
	out[pos].Dependencies = append(out[pos].Dependencies,
		relation.Edge(from.ID, in.From.Target, in.To.Target))
	return out, "", nil
}

func (r *Reducer) deleteRelation(tasks []task.Task, idx *task.Index, in DeleteRelation) ([]task.Task, string, error) {
	owner, reject, err := target(idx, in.TaskID)
	if err != nil || reject != "" {
		return nil, reject, err
	}
	if !owner.HasDependency(in.Dependency) {
		return nil, RejectUnknownRelation, nil
	}

	out := task.Clone(tasks)
	pos, _ := idx.Position(owner.ID)
	deps := out[pos].Dependencies[:0]
	for _, d := range out[pos].Dependencies {
		if d != in.Dependency {
			deps = append(deps, d)
		}
	}
	out[pos].Dependencies = deps
	return out, "", nil
}

func (r *Reducer) deleteTask(tasks []task.Task, idx *task.Index, in DeleteTask) ([]task.Task, string, error) {
	t, reject, err := target(idx, in.TaskID)
	if err != nil || reject != "" {
		return nil, reject, err
	}
	policy := in.Children
	if policy == "" {
		policy = r.childPolicy
	}
	if _, err := ParseChildPolicy(string(policy)); err != nil {
		return nil, "", err
	}

	removed := map[string]bool{t.ID: true}
	if policy == DeleteSubtree {
		for _, d := range idx.Descendants(t.ID) {
			removed[d] = true
		}
	}

	out := make([]task.Task, 0, len(tasks))
	for _, row := range tasks {
		if removed[row.ID] {
			continue
		}
		row = row.Clone()
		if row.ParentID == t.ID {
			row.ParentID = t.ParentID
		}
		if len(row.Dependencies) > 0 {
			deps := make([]task.Dependency, 0, len(row.Dependencies))
			for _, d := range row.Dependencies {
				if !removed[d.SourceID] {
					deps = append(deps, d)
				}
			}
			row.Dependencies = deps
		}
		out = append(out, row)
	}
	r.log.Debug().Str("task_id", t.ID).Int("removed", len(removed)).Msg("deleted task")
	return r.propagate(out)
}

func (r *Reducer) indent(tasks []task.Task, idx *task.Index, id string) ([]task.Task, string, error) {
	t, reject, err := target(idx, id)
	if err != nil || reject != "" {
		return nil, reject, err
	}
	if t.IsEmpty() {
		return nil, RejectEmptyRow, nil
	}

	pos, _ := idx.Position(id)
	parentID := ""
	for i := pos - 1; i >= 0; i-- {
		if tasks[i].ParentID == t.ParentID && !tasks[i].IsEmpty() {
			parentID = tasks[i].ID
			break
		}
	}
	if parentID == "" {
		return nil, RejectNoPreviousSibling, nil
	}

	newID := idalloc.NextChildID(tasks, parentID)
	out, err := idalloc.Rename(tasks, id, newID)
	if err != nil {
		return nil, "", err
	}
	out[pos].ParentID = parentID
	r.log.Debug().Str("from", id).Str("to", newID).Msg("renamed task")
	return r.propagate(out)
}

func (r *Reducer) outdent(tasks []task.Task, idx *task.Index, id string) ([]task.Task, string, error) {
	t, reject, err := target(idx, id)
	if err != nil || reject != "" {
		return nil, reject, err
	}
	if t.IsEmpty() {
		return nil, RejectEmptyRow, nil
	}
	if t.ParentID == "" {
		return nil, RejectAlreadyTopLevel, nil
	}
	parent, err := idx.Get(t.ParentID)
	if err != nil {
		return nil, "", err
	}

	var newID string
	if parent.ParentID == "" {
		newID = idalloc.NextTopLevelID(tasks)
	} else {
		newID = idalloc.NextChildID(tasks, parent.ParentID)
	}

	moved, reject, err := r.move(tasks, idx, id, parent.ID, placeAfter)
	if err != nil || reject != "" {
		return nil, reject, err
	}
	out, err := idalloc.Rename(moved, id, newID)
	if err != nil {
		return nil, "", err
	}
	r.log.Debug().Str("from", id).Str("to", newID).Msg("renamed task")
	return r.propagate(out)
}

func (r *Reducer) propagate(tasks []task.Task) ([]task.Task, string, error) {
	out, err := hierarchy.Propagate(tasks)
	if err != nil {
		return nil, "", err
	}
	return out, "", nil
}
