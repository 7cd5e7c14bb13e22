package relation

import (
	"testing"
	"time"

	"github.com/metalagman/timeline/internal/task"
	"github.com/metalagman/timeline/internal/task/tasktest"
	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	day := tasktest.Day(2024, time.May, 1)
	a := tasktest.New("a", day, day)
	b := tasktest.New("b", day, day)

	disabled := b
	disabled.IsRelationDisabled = true

	linked := b
	linked.Dependencies = []task.Dependency{Edge("a", task.EndOfTask, task.StartOfTask)}

	tests := []struct {
		name       string
		from, to   task.Task
		fromTarget task.Extremity
		toTarget   task.Extremity
		related    bool
		want       Verdict
	}{
		{name: "allowed", from: a, to: b, fromTarget: task.EndOfTask, toTarget: task.StartOfTask, want: Allowed},
		{name: "self", from: a, to: a, fromTarget: task.EndOfTask, toTarget: task.StartOfTask, want: RejectedSelf},
		{name: "ancestry", from: a, to: b, fromTarget: task.EndOfTask, toTarget: task.StartOfTask, related: true, want: RejectedAncestry},
		{name: "disabled target", from: a, to: disabled, fromTarget: task.EndOfTask, toTarget: task.StartOfTask, want: RejectedDisabled},
		{name: "duplicate", from: a, to: linked, fromTarget: task.EndOfTask, toTarget: task.StartOfTask, want: RejectedDuplicate},
		{name: "same pair other endpoints", from: a, to: linked, fromTarget: task.StartOfTask, toTarget: task.StartOfTask, want: Allowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Check(tt.from, tt.to, tt.fromTarget, tt.toTarget, tt.related)
			assert.Equal(t, tt.want, got, got.String())
			assert.Equal(t, tt.want == Allowed, CanLink(tt.from, tt.to, tt.fromTarget, tt.toTarget, tt.related))
		})
	}
}

func TestVerdictString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "allowed", Allowed.String())
	assert.Equal(t, "dependency_cycle", RejectedCycle.String())
	assert.Equal(t, "unknown", Verdict(42).String())
}

func TestWouldCycle(t *testing.T) {
	t.Parallel()

	// Plan: 1.1 -> 1.2, 1 -> 2, 2.1 -> 2.2, 2 -> 3, 3 -> 4.
	tasks := tasktest.Plan()

	assert.Nil(t, WouldCycle(tasks, "1.1", "4"))
	assert.Equal(t, []string{"2", "3", "4", "2"}, WouldCycle(tasks, "4", "2"))
	assert.Equal(t, []string{"x", "x"}, WouldCycle(tasks, "x", "x"))
}

func TestDetectCycle(t *testing.T) {
	t.Parallel()

	tasks := tasktest.Plan()
	assert.Nil(t, DetectCycle(tasks))

	tasks[3].Dependencies = append(tasks[3].Dependencies, tasktest.EndToStart("4"))
	cycle := DetectCycle(tasks)
	assert.Equal(t, []string{"2", "3", "4", "2"}, cycle)
}
