// Package planner computes the visible window and grid size of the timeline.
package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/metalagman/timeline/internal/calendar"
	"github.com/metalagman/timeline/internal/task"
)

var (
	ErrUnknownViewMode  = errors.New("unknown view mode")
	ErrNegativePreSteps = errors.New("pre-steps count must not be negative")
)

// FallbackSteps is the grid width used when there is nothing to show.
const FallbackSteps = 2

// Range is the visible window of the timeline.
type Range struct {
	// WindowStart is the padded, snapped start of the first grid column.
	WindowStart time.Time `json:"window_start" yaml:"window_start"`
	// DataStart is the earliest task start, unpadded.
	DataStart time.Time `json:"data_start" yaml:"data_start"`
	// Steps is the number of grid columns.
	Steps int `json:"steps" yaml:"steps"`
}

// Columns returns the start of every grid column of r.
func (r Range) Columns(mode ViewMode) []time.Time {
	if r.Steps <= 0 {
		return nil
	}
	out := make([]time.Time, r.Steps)
	for i := range out {
		out[i] = StepDate(r.WindowStart, mode, i)
	}
	return out
}

// Planner computes ranges. The zero value uses time.Now and Sunday weeks.
type Planner struct {
	// Now is the clock used for empty collections.
	Now func() time.Time
	// WeekStart is the first day of a Week-mode column.
	WeekStart time.Weekday
}

// New returns a planner with the given week start.
func New(weekStart time.Weekday) *Planner {
	return &Planner{Now: time.Now, WeekStart: weekStart}
}

func (p *Planner) now() time.Time {
	if p == nil || p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Planner) weekStart() time.Weekday {
	if p == nil {
		return time.Sunday
	}
	return p.WeekStart
}

// ComputeRange returns the window that shows every non-empty task of tasks in
// mode, padded by preSteps columns before the first task.
func (p *Planner) ComputeRange(tasks []task.Task, mode ViewMode, preSteps int) (Range, error) {
	if !mode.Valid() {
		return Range{}, fmt.Errorf("%w: %q", ErrUnknownViewMode, mode)
	}
	if preSteps < 0 {
		return Range{}, fmt.Errorf("%w: %d", ErrNegativePreSteps, preSteps)
	}

	var minStart, maxEnd time.Time
	found := false
	for _, t := range tasks {
		if t.IsEmpty() {
			continue
		}
		if !found || t.Start.Before(minStart) {
			minStart = t.Start
		}
		if !found || t.End.After(maxEnd) {
			maxEnd = t.End
		}
		found = true
	}
	if !found {
		now := p.now()
		return Range{WindowStart: now, DataStart: now, Steps: FallbackSteps}, nil
	}

	var start, end time.Time
	switch mode {
	case Year:
		start = calendar.StartOfDate(calendar.AddToDate(minStart, -preSteps, calendar.Year), calendar.Year)
		end = calendar.StartOfDate(calendar.AddToDate(maxEnd, 1, calendar.Year), calendar.Year)
	case QuarterYear:
		start = calendar.StartOfQuarter(calendar.AddToDate(minStart, -preSteps*3, calendar.Month))
		end = calendar.StartOfQuarter(calendar.AddToDate(maxEnd, 3, calendar.Month))
	case Month:
		start = calendar.StartOfDate(calendar.AddToDate(minStart, -preSteps, calendar.Month), calendar.Month)
		end = calendar.StartOfDate(calendar.AddToDate(maxEnd, 1, calendar.Year), calendar.Year)
	case Week:
		start = calendar.AddToDate(calendar.StartOfWeek(minStart, p.weekStart()), -preSteps*7, calendar.Day)
		// One and a half months: a month, then half of a 30-day month.
		end = calendar.AddToDate(calendar.AddToDate(calendar.StartOfDate(maxEnd, calendar.Day), 1, calendar.Month), 15, calendar.Day)
	case TwoDays:
		start = calendar.AddToDate(calendar.StartOfDate(minStart, calendar.Day), -preSteps, calendar.Day)
		end = calendar.AddToDate(calendar.StartOfDate(maxEnd, calendar.Day), 19, calendar.Day)
	case Day:
		start = calendar.AddToDate(calendar.StartOfDate(minStart, calendar.Day), -preSteps, calendar.Day)
		end = calendar.AddToDate(calendar.StartOfDate(maxEnd, calendar.Day), 30, calendar.Day)
	case QuarterDay:
		start = calendar.AddToDate(calendar.StartOfDate(minStart, calendar.Day), -preSteps*6, calendar.Hour)
		end = calendar.AddToDate(calendar.StartOfDate(maxEnd, calendar.Day), 66, calendar.Hour)
	case HalfDay:
		start = calendar.AddToDate(calendar.StartOfDate(minStart, calendar.Day), -preSteps*12, calendar.Hour)
		end = calendar.AddToDate(calendar.StartOfDate(maxEnd, calendar.Day), 108, calendar.Hour)
	case Hour:
		start = calendar.AddToDate(calendar.StartOfDate(minStart, calendar.Hour), -preSteps, calendar.Hour)
		end = calendar.AddToDate(calendar.StartOfDate(maxEnd, calendar.Day), 1, calendar.Day)
	}

	return Range{
		WindowStart: start,
		DataStart:   minStart,
		Steps:       DatesDiff(end, start, mode),
	}, nil
}

// ComputeRange is a convenience wrapper around a zero Planner.
func ComputeRange(tasks []task.Task, mode ViewMode, preSteps int) (Range, error) {
	return (&Planner{}).ComputeRange(tasks, mode, preSteps)
}
