package hierarchy

import (
	"testing"
	"time"

	"github.com/metalagman/timeline/internal/task"
	"github.com/metalagman/timeline/internal/task/tasktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = tasktest.Day

func nested() []task.Task {
	return []task.Task{
		tasktest.Project("1", day(2024, time.March, 1), day(2024, time.March, 10)),
		tasktest.Child("1.1", "1", day(2024, time.March, 2), day(2024, time.March, 5)),
		tasktest.Child("1.1.1", "1.1", day(2024, time.March, 2), day(2024, time.March, 4)),
		tasktest.Child("1.2", "1", day(2024, time.March, 6), day(2024, time.March, 9)),
		tasktest.New("2", day(2024, time.April, 1), day(2024, time.April, 2)),
	}
}

func TestPropagateGrowsAncestors(t *testing.T) {
	t.Parallel()

	tasks := nested()
	tasks[2].End = day(2024, time.March, 20)
	tasks[2].Start = day(2024, time.February, 25)

	got, err := Propagate(tasks)
	require.NoError(t, err)

	parent, _ := tasktest.Find(got, "1.1")
	assert.True(t, day(2024, time.February, 25).Equal(parent.Start))
	assert.True(t, day(2024, time.March, 20).Equal(parent.End))

	root, _ := tasktest.Find(got, "1")
	assert.True(t, day(2024, time.February, 25).Equal(root.Start))
	assert.True(t, day(2024, time.March, 20).Equal(root.End))

	// Input untouched.
	assert.True(t, day(2024, time.March, 2).Equal(tasks[1].Start))
	assert.Empty(t, task.Audit(got))
}

func TestPropagateNeverShrinks(t *testing.T) {
	t.Parallel()

	tasks := nested()
	tasks[0].Start = day(2024, time.January, 1)
	tasks[0].End = day(2024, time.December, 31)

	got, err := Propagate(tasks)
	require.NoError(t, err)
	assert.Equal(t, tasks, got)
}

func TestPropagateIsIdempotent(t *testing.T) {
	t.Parallel()

	tasks := nested()
	tasks[3].End = day(2024, time.May, 1)

	once, err := Propagate(tasks)
	require.NoError(t, err)
	twice, err := Propagate(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestPropagateSkipsEmptyRows(t *testing.T) {
	t.Parallel()

	tasks := nested()
	spacer := tasktest.Empty("spacer")
	spacer.ParentID = "1"
	tasks = append(tasks, spacer)

	got, err := Propagate(tasks)
	require.NoError(t, err)
	root, _ := tasktest.Find(got, "1")
	assert.True(t, day(2024, time.March, 1).Equal(root.Start))
	assert.True(t, day(2024, time.March, 10).Equal(root.End))
}

func TestPropagateLeavesEmptyParentsAlone(t *testing.T) {
	t.Parallel()

	tasks := []task.Task{
		tasktest.Empty("e"),
		tasktest.Child("a", "e", day(2024, time.March, 1), day(2024, time.March, 2)),
	}
	got, err := Propagate(tasks)
	require.NoError(t, err)
	assert.Equal(t, tasks, got)
}

func TestPropagateFailsOnCorruptTree(t *testing.T) {
	t.Parallel()

	cyclic := []task.Task{
		tasktest.Child("a", "b", day(2024, time.March, 1), day(2024, time.March, 2)),
		tasktest.Child("b", "a", day(2024, time.March, 3), day(2024, time.March, 4)),
	}
	_, err := Propagate(cyclic)
	require.ErrorIs(t, err, task.ErrParentCycle)

	dangling := []task.Task{tasktest.Child("a", "ghost", day(2024, time.March, 1), day(2024, time.March, 2))}
	_, err = Propagate(dangling)
	require.ErrorIs(t, err, task.ErrUnknownParent)

	dup := []task.Task{tasktest.New("a", day(2024, time.March, 1), day(2024, time.March, 2)), tasktest.New("a", day(2024, time.March, 1), day(2024, time.March, 2))}
	_, err = Propagate(dup)
	require.ErrorIs(t, err, task.ErrDuplicateID)
}

func TestCascadeShiftsDescendants(t *testing.T) {
	t.Parallel()

	tasks := nested()
	oldStart, oldEnd := tasks[0].Start, tasks[0].End
	tasks[0].Start = tasks[0].Start.AddDate(0, 0, 7)
	tasks[0].End = tasks[0].End.AddDate(0, 0, 7)

	got, err := Cascade(tasks, "1", oldStart, oldEnd)
	require.NoError(t, err)

	leaf, _ := tasktest.Find(got, "1.1.1")
	assert.True(t, day(2024, time.March, 9).Equal(leaf.Start), "start %s", leaf.Start)
	assert.True(t, day(2024, time.March, 11).Equal(leaf.End), "end %s", leaf.End)

	other, _ := tasktest.Find(got, "2")
	assert.True(t, day(2024, time.April, 1).Equal(other.Start))
}

func TestCascadeScalesDescendants(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		tasktest.Project("p", start, start.Add(10*time.Hour)),
		tasktest.Child("c", "p", start.Add(2*time.Hour), start.Add(4*time.Hour)),
	}
	oldStart, oldEnd := tasks[0].Start, tasks[0].End
	tasks[0].End = start.Add(20 * time.Hour)

	got, err := Cascade(tasks, "p", oldStart, oldEnd)
	require.NoError(t, err)
	assert.True(t, start.Add(4*time.Hour).Equal(got[1].Start), "start %s", got[1].Start)
	assert.True(t, start.Add(8*time.Hour).Equal(got[1].End), "end %s", got[1].End)
}

func TestCascadeUnknownTask(t *testing.T) {
	t.Parallel()

	_, err := Cascade(nested(), "nope", time.Time{}, time.Time{})
	require.ErrorIs(t, err, task.ErrUnknownTask)
}
