package document

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/metalagman/timeline/internal/reducer"
	"github.com/metalagman/timeline/internal/task"
	"github.com/metalagman/timeline/internal/task/tasktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planYAML = `tasks:
  - id: "1"
    name: Planning
    kind: project
    start: 2024-01-01T00:00:00Z
    end: 2024-01-15T00:00:00Z
  - id: "1.1"
    name: Requirements
    start: 2024-01-01T00:00:00Z
    end: 2024-01-05T00:00:00Z
    progress: 40
    parent_id: "1"
  - id: "2"
    name: Release
    kind: milestone
    start: 2024-01-20T00:00:00Z
    end: 2024-01-20T00:00:00Z
    dependencies:
      - source_id: "1"
        source_target: endOfTask
        own_target: startOfTask
  - id: gap
    kind: empty
`

func TestDecodeTasksYAML(t *testing.T) {
	t.Parallel()

	tasks, err := DecodeTasks([]byte(planYAML))
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	assert.Equal(t, task.KindProject, tasks[0].Kind)
	assert.Equal(t, task.KindTask, tasks[1].Kind, "kind defaults to task")
	assert.Equal(t, "1", tasks[1].ParentID)
	assert.InDelta(t, 40, tasks[1].Progress, 0)
	assert.True(t, tasks[0].Start.Equal(tasktest.Day(2024, time.January, 1)))
	assert.Equal(t, []task.Dependency{tasktest.EndToStart("1")}, tasks[2].Dependencies)
	assert.True(t, tasks[3].IsEmpty())
}

func TestDecodeTasksJSONList(t *testing.T) {
	t.Parallel()

	data := `[{"id":"a","name":"A","kind":"task","start":"2024-03-01T00:00:00Z","end":"2024-03-02T00:00:00Z"}]`
	tasks, err := DecodeTasks([]byte(data))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].End.Equal(tasktest.Day(2024, time.March, 2)))
}

func TestDecodeTasksEmpty(t *testing.T) {
	t.Parallel()

	tasks, err := DecodeTasks(nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = DecodeTasks([]byte("tasks: []\n"))
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDecodeTasksErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "scalar", data: "hello"},
		{name: "missing id", data: "- name: nameless\n"},
		{name: "unknown kind", data: "- id: a\n  kind: epic\n"},
		{name: "unknown field", data: "- id: a\n  colour: red\n"},
		{name: "bad extremity", data: "- id: a\n  dependencies:\n    - source_id: b\n      source_target: middle\n      own_target: startOfTask\n"},
		{name: "malformed", data: "tasks: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeTasks([]byte(tt.data))
			require.Error(t, err)
		})
	}

	_, err := DecodeTasks([]byte("- id: a\n  kind: epic\n"))
	require.ErrorIs(t, err, ErrInvalidDocument)
}

func TestEncodeTasksRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodeTasks(&buf, tasktest.Plan()))
	assert.Contains(t, buf.String(), "tasks:\n")

	got, err := DecodeTasks(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, tasktest.IDs(tasktest.Plan()), tasktest.IDs(got))
	assert.Equal(t, tasktest.Plan()[7].Dependencies, got[7].Dependencies)
	assert.True(t, got[0].End.Equal(tasktest.Plan()[0].End))
}

func TestEncodeTasksNil(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodeTasks(&buf, nil))
	assert.Equal(t, "tasks: []\n", buf.String())
}

func TestDecodeIntent(t *testing.T) {
	t.Parallel()

	on := true
	tests := []struct {
		name string
		data string
		want reducer.Intent
	}{
		{
			name: "date change",
			data: "type: date_change\npayload:\n  task_id: \"3\"\n  start: 2024-02-02T00:00:00Z\n  end: 2024-02-09T00:00:00Z\n  cascade: true\n",
			want: reducer.DateChange{
				TaskID:  "3",
				Start:   tasktest.Day(2024, time.February, 2),
				End:     tasktest.Day(2024, time.February, 9),
				Cascade: &on,
			},
		},
		{
			name: "progress from an integer",
			data: `{"type":"progress_change","payload":{"task_id":"1.1","progress":75}}`,
			want: reducer.ProgressChange{TaskID: "1.1", Progress: 75},
		},
		{
			name: "relation change",
			data: "type: relation_change\npayload:\n  from: {task_id: \"1\", target: endOfTask}\n  to: {task_id: \"2\", target: startOfTask}\n",
			want: reducer.RelationChange{
				From: reducer.Endpoint{TaskID: "1", Target: task.EndOfTask},
				To:   reducer.Endpoint{TaskID: "2", Target: task.StartOfTask},
			},
		},
		{
			name: "delete relation",
			data: "type: delete_relation\npayload:\n  task_id: \"4\"\n  dependency: {source_id: \"3\", source_target: endOfTask, own_target: startOfTask}\n",
			want: reducer.DeleteRelation{TaskID: "4", Dependency: tasktest.EndToStart("3")},
		},
		{
			name: "delete task",
			data: "type: delete_task\npayload: {task_id: \"2\", children: delete_subtree}\n",
			want: reducer.DeleteTask{TaskID: "2", Children: reducer.DeleteSubtree},
		},
		{
			name: "move inside",
			data: "type: move_task_inside\npayload: {task_id: \"3\", parent_id: \"2\"}\n",
			want: reducer.MoveTaskInside{TaskID: "3", ParentID: "2"},
		},
		{
			name: "indent",
			data: "type: indent\npayload: {task_id: \"3\"}\n",
			want: reducer.Indent{TaskID: "3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeIntent([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeIntentErrors(t *testing.T) {
	t.Parallel()

	_, err := DecodeIntent([]byte("payload: {task_id: a}\n"))
	require.ErrorIs(t, err, ErrInvalidDocument)

	_, err = DecodeIntent([]byte("type: explode\npayload: {}\n"))
	require.ErrorIs(t, err, reducer.ErrUnknownIntent)

	_, err = DecodeIntent([]byte("type: indent\npayload: {task_id: a, depth: 2}\n"))
	require.ErrorIs(t, err, ErrInvalidDocument)

	_, err = DecodeIntent([]byte("type: date_change\npayload: {task_id: a, start: yesterday}\n"))
	require.ErrorIs(t, err, ErrInvalidDocument)
}

func TestWrapMarshalsTypeTag(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Wrap(reducer.Outdent{TaskID: "2.2"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"outdent","payload":{"task_id":"2.2"}}`, string(data))
}
