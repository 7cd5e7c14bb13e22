package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/metalagman/timeline/internal/planner"
	"github.com/metalagman/timeline/internal/reducer"
	"github.com/metalagman/timeline/internal/task"
	"github.com/metalagman/timeline/internal/task/tasktest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) http.Handler {
	t.Helper()
	opts.Logger = zerolog.Nop()
	if opts.Planner == nil {
		opts.Planner = &planner.Planner{
			Now: func() time.Time { return time.Date(2024, time.June, 1, 15, 30, 0, 0, time.UTC) },
		}
	}
	s, err := NewServer(opts)
	require.NoError(t, err)
	return s.Routes()
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Options{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRange(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Options{})
	tasks := []task.Task{
		tasktest.New("a", tasktest.Day(2024, time.January, 10), tasktest.Day(2024, time.January, 20)),
	}
	rec := post(t, h, "/v1/range", map[string]any{"tasks": tasks, "view_mode": "Day", "pre_steps": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		WindowStart time.Time `json:"window_start"`
		DataStart   time.Time `json:"data_start"`
		Steps       int       `json:"steps"`
		ViewMode    string    `json:"view_mode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.WindowStart.Equal(tasktest.Day(2024, time.January, 10)))
	assert.True(t, got.DataStart.Equal(tasktest.Day(2024, time.January, 10)))
	assert.Equal(t, 40, got.Steps)
	assert.Equal(t, "Day", got.ViewMode)
}

func TestRangeDefaultsAndColumns(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Options{Mode: planner.Month, PreSteps: 0})
	rec := post(t, h, "/v1/range", `{"columns": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Steps    int         `json:"steps"`
		ViewMode string      `json:"view_mode"`
		Columns  []time.Time `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, planner.FallbackSteps, got.Steps)
	assert.Equal(t, "Month", got.ViewMode)
	assert.Len(t, got.Columns, planner.FallbackSteps)
}

func TestRangeErrors(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Options{})

	rec := post(t, h, "/v1/range", `{"view_mode": "Fortnight"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = post(t, h, "/v1/range", `{"pre_steps": -1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = post(t, h, "/v1/range", `{"tasks": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/v1/range", `{"zoom": 2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestReduce(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Options{})
	rec := post(t, h, "/v1/reduce", map[string]any{
		"tasks": tasktest.Plan(),
		"intent": map[string]any{
			"type":    "indent",
			"payload": map[string]any{"task_id": "3"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Tasks  []task.Task `json:"tasks"`
		Intent struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		} `json:"intent"`
		Changed   bool   `json:"changed"`
		Rejection string `json:"rejection"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Changed)
	assert.Empty(t, got.Rejection)
	assert.Equal(t, "indent", got.Intent.Type)
	assert.Equal(t, "3", got.Intent.Payload["task_id"])
	assert.Equal(t, []string{"1", "1.1", "1.2", "2", "2.1", "2.2", "2.3", "4"}, tasktest.IDs(got.Tasks))
}

func TestReduceRejection(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Options{})
	rec := post(t, h, "/v1/reduce", map[string]any{
		"tasks":  tasktest.Plan(),
		"intent": map[string]any{"type": "outdent", "payload": map[string]any{"task_id": "1"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"changed":false`)
	assert.Contains(t, rec.Body.String(), reducer.RejectAlreadyTopLevel)
}

func TestReduceCyclePolicy(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Options{Reducer: reducer.New(reducer.WithCycleCheck(true))})
	rec := post(t, h, "/v1/reduce", map[string]any{
		"tasks": tasktest.Plan(),
		"intent": map[string]any{"type": "relation_change", "payload": map[string]any{
			"from": map[string]any{"task_id": "4", "target": "endOfTask"},
			"to":   map[string]any{"task_id": "2", "target": "startOfTask"},
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "dependency_cycle")
}

func TestReduceErrors(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Options{})
	tests := []struct {
		name   string
		intent map[string]any
		want   int
	}{
		{
			name:   "unknown task",
			intent: map[string]any{"type": "indent", "payload": map[string]any{"task_id": "nope"}},
			want:   http.StatusUnprocessableEntity,
		},
		{
			name:   "unknown intent",
			intent: map[string]any{"type": "explode", "payload": map[string]any{}},
			want:   http.StatusUnprocessableEntity,
		},
		{
			name: "invalid interval",
			intent: map[string]any{"type": "date_change", "payload": map[string]any{
				"task_id": "3", "start": "2024-02-10T00:00:00Z", "end": "2024-02-01T00:00:00Z",
			}},
			want: http.StatusUnprocessableEntity,
		},
		{
			name:   "unknown payload field",
			intent: map[string]any{"type": "indent", "payload": map[string]any{"task_id": "3", "depth": 2}},
			want:   http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := post(t, h, "/v1/reduce", map[string]any{"tasks": tasktest.Plan(), "intent": tt.intent})
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestAudit(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, Options{})

	rec := post(t, h, "/v1/audit", map[string]any{"tasks": tasktest.Plan()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"issues":[]}`, rec.Body.String())

	broken := tasktest.Plan()
	broken[1].End = tasktest.Day(2024, time.March, 1)
	broken[3].Dependencies = append(broken[3].Dependencies, tasktest.EndToStart("4"))
	rec = post(t, h, "/v1/audit", map[string]any{"tasks": broken})
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Issues []task.Issue `json:"issues"`
		Cycle  []string     `json:"dependency_cycle"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotEmpty(t, got.Issues)
	assert.Equal(t, task.RuleContainment, got.Issues[0].Rule)
	assert.Equal(t, []string{"2", "3", "4", "2"}, got.Cycle)
}

func TestNewServerValidatesOptions(t *testing.T) {
	t.Parallel()

	_, err := NewServer(Options{Mode: "Fortnight"})
	require.ErrorIs(t, err, planner.ErrUnknownViewMode)

	_, err = NewServer(Options{PreSteps: -1})
	require.ErrorIs(t, err, planner.ErrNegativePreSteps)
}

func TestMCPMount(t *testing.T) {
	t.Parallel()

	called := false
	h := newTestServer(t, Options{MCP: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	})})
	rec := post(t, h, "/mcp", `{}`)
	assert.True(t, called)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
