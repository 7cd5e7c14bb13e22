package planner

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/metalagman/timeline/internal/calendar"
)

// ViewMode is the calendar granularity of the timeline grid.
type ViewMode string

const (
	Hour        ViewMode = "Hour"
	QuarterDay  ViewMode = "Quarter Day"
	HalfDay     ViewMode = "Half Day"
	Day         ViewMode = "Day"
	TwoDays     ViewMode = "TwoDays"
	Week        ViewMode = "Week"
	Month       ViewMode = "Month"
	QuarterYear ViewMode = "QuarterYear"
	Year        ViewMode = "Year"
)

// AllViewModes returns every view mode from finest to coarsest.
func AllViewModes() []ViewMode {
	return []ViewMode{Hour, QuarterDay, HalfDay, Day, TwoDays, Week, Month, QuarterYear, Year}
}

// Valid reports whether m is a known view mode.
func (m ViewMode) Valid() bool {
	for _, candidate := range AllViewModes() {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseViewMode converts a string to a ViewMode. Matching ignores case,
// spaces, dashes and underscores, so "quarter_day" and "QuarterDay" both work.
func ParseViewMode(raw string) (ViewMode, error) {
	key := normalizeMode(raw)
	for _, candidate := range AllViewModes() {
		if normalizeMode(string(candidate)) == key {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownViewMode, raw)
}

func normalizeMode(raw string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(raw)))
}

// step is the width of one grid column.
type step struct {
	quantity int
	scale    calendar.Scale
}

var steps = map[ViewMode]step{
	Hour:        {1, calendar.Hour},
	QuarterDay:  {6, calendar.Hour},
	HalfDay:     {12, calendar.Hour},
	Day:         {1, calendar.Day},
	TwoDays:     {2, calendar.Day},
	Week:        {7, calendar.Day},
	Month:       {1, calendar.Month},
	QuarterYear: {3, calendar.Month},
	Year:        {1, calendar.Year},
}

// StepDate returns the start of the i-th grid column of a window starting at
// windowStart.
func StepDate(windowStart time.Time, mode ViewMode, i int) time.Time {
	s, ok := steps[mode]
	if !ok {
		return windowStart
	}
	return calendar.AddToDate(windowStart, s.quantity*i, s.scale)
}

// DatesDiff returns how many whole grid units of mode fit between start and
// end. The result is negative when end is before start.
func DatesDiff(end, start time.Time, mode ViewMode) int {
	switch mode {
	case Hour:
		return int(end.Sub(start).Hours())
	case QuarterDay:
		return int(math.Round(end.Sub(start).Hours() / 6))
	case HalfDay:
		return int(math.Round(end.Sub(start).Hours() / 12))
	case Day:
		return daysDiff(end, start)
	case TwoDays:
		return int(math.Round(float64(daysDiff(end, start)) / 2))
	case Week:
		return daysDiff(end, start) / 7
	case Month:
		return monthsDiff(end, start)
	case QuarterYear:
		return monthsDiff(end, start) / 3
	case Year:
		return monthsDiff(end, start) / 12
	default:
		return 0
	}
}

// daysDiff counts full calendar days, so a DST shift inside the range does
// not lose or gain a column.
func daysDiff(end, start time.Time) int {
	ey, em, ed := end.Date()
	sy, sm, sd := start.Date()
	n := int(time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC).Sub(time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)).Hours() / 24)
	switch {
	case n > 0 && calendar.AddToDate(start, n, calendar.Day).After(end):
		n--
	case n < 0 && calendar.AddToDate(start, n, calendar.Day).Before(end):
		n++
	}
	return n
}

func monthsDiff(end, start time.Time) int {
	ey, em, _ := end.Date()
	sy, sm, _ := start.Date()
	n := (ey-sy)*12 + int(em-sm)
	switch {
	case n > 0 && calendar.AddToDate(start, n, calendar.Month).After(end):
		n--
	case n < 0 && calendar.AddToDate(start, n, calendar.Month).Before(end):
		n++
	}
	return n
}
