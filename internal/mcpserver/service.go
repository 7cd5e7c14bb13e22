// Package mcpserver exposes the timeline engine as Model Context Protocol
// tools.
package mcpserver

import (
	"bytes"
	"time"

	"github.com/metalagman/timeline/internal/document"
	"github.com/metalagman/timeline/internal/planner"
	"github.com/metalagman/timeline/internal/reducer"
	"github.com/metalagman/timeline/internal/relation"
	"github.com/metalagman/timeline/internal/task"
)

// Service runs engine operations on documents passed in as text. It keeps no
// state between calls.
type Service struct {
	Planner  *planner.Planner
	Reducer  *reducer.Reducer
	Mode     planner.ViewMode
	PreSteps int
}

// RangeInput holds the compute_range arguments.
type RangeInput struct {
	Tasks    string `json:"tasks"               jsonschema:"task collection as a YAML or JSON document"`
	ViewMode string `json:"view_mode,omitempty" jsonschema:"view mode such as Day, Week or Month"`
	PreSteps *int   `json:"pre_steps,omitempty" jsonschema:"number of padding columns before the first task"`
	Columns  bool   `json:"columns,omitempty"   jsonschema:"also return the start of every column"`
}

// RangeOutput is the compute_range result. Times are RFC 3339.
type RangeOutput struct {
	ViewMode    string   `json:"view_mode"`
	WindowStart string   `json:"window_start"`
	DataStart   string   `json:"data_start"`
	Steps       int      `json:"steps"`
	Columns     []string `json:"columns,omitempty"`
}

// ReduceInput holds the reduce arguments.
type ReduceInput struct {
	Tasks  string `json:"tasks"  jsonschema:"task collection as a YAML or JSON document"`
	Intent string `json:"intent" jsonschema:"intent document with type and payload keys"`
}

// ReduceOutput is the reduce result.
type ReduceOutput struct {
	Tasks     string `json:"tasks"`
	Changed   bool   `json:"changed"`
	Rejection string `json:"rejection,omitempty"`
}

// AuditInput holds the audit arguments.
type AuditInput struct {
	Tasks string `json:"tasks" jsonschema:"task collection as a YAML or JSON document"`
}

// AuditOutput is the audit result.
type AuditOutput struct {
	Issues []task.Issue `json:"issues"`
	Cycle  []string     `json:"dependency_cycle,omitempty"`
}

// ComputeRange computes the visible window of a collection.
func (s *Service) ComputeRange(in RangeInput) (RangeOutput, error) {
	tasks, err := document.DecodeTasks([]byte(in.Tasks))
	if err != nil {
		return RangeOutput{}, err
	}
	mode := s.Mode
	if mode == "" {
		mode = planner.Day
	}
	if in.ViewMode != "" {
		if mode, err = planner.ParseViewMode(in.ViewMode); err != nil {
			return RangeOutput{}, err
		}
	}
	preSteps := s.PreSteps
	if in.PreSteps != nil {
		preSteps = *in.PreSteps
	}

	rng, err := s.Planner.ComputeRange(tasks, mode, preSteps)
	if err != nil {
		return RangeOutput{}, err
	}
	out := RangeOutput{
		ViewMode:    string(mode),
		WindowStart: rng.WindowStart.Format(time.RFC3339),
		DataStart:   rng.DataStart.Format(time.RFC3339),
		Steps:       rng.Steps,
	}
	if in.Columns {
		for _, c := range rng.Columns(mode) {
			out.Columns = append(out.Columns, c.Format(time.RFC3339))
		}
	}
	return out, nil
}

// Reduce applies one intent and returns the next collection as YAML.
func (s *Service) Reduce(in ReduceInput) (ReduceOutput, error) {
	tasks, err := document.DecodeTasks([]byte(in.Tasks))
	if err != nil {
		return ReduceOutput{}, err
	}
	intent, err := document.DecodeIntent([]byte(in.Intent))
	if err != nil {
		return ReduceOutput{}, err
	}
	res, err := s.Reducer.Reduce(tasks, intent)
	if err != nil {
		return ReduceOutput{}, err
	}
	var buf bytes.Buffer
	if err := document.EncodeTasks(&buf, res.Tasks); err != nil {
		return ReduceOutput{}, err
	}
	return ReduceOutput{Tasks: buf.String(), Changed: res.Changed, Rejection: res.Rejection}, nil
}

// Audit lists the consistency violations of a collection.
func (s *Service) Audit(in AuditInput) (AuditOutput, error) {
	tasks, err := document.DecodeTasks([]byte(in.Tasks))
	if err != nil {
		return AuditOutput{}, err
	}
	issues := task.Audit(tasks)
	if issues == nil {
		issues = []task.Issue{}
	}
	return AuditOutput{Issues: issues, Cycle: relation.DetectCycle(tasks)}, nil
}
