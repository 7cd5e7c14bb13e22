// Package calendar provides scale-aware date arithmetic in local calendar terms.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Scale is a calendar unit used for addition and truncation.
type Scale string

const (
	Year        Scale = "year"
	Month       Scale = "month"
	Day         Scale = "day"
	Hour        Scale = "hour"
	Minute      Scale = "minute"
	Second      Scale = "second"
	Millisecond Scale = "millisecond"
)

// scaleRank orders scales from finest to coarsest.
var scaleRank = map[Scale]int{
	Millisecond: 0,
	Second:      1,
	Minute:      2,
	Hour:        3,
	Day:         4,
	Month:       5,
	Year:        6,
}

// ParseScale converts a string to a Scale.
func ParseScale(raw string) (Scale, error) {
	s := Scale(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := scaleRank[s]; !ok {
		return "", fmt.Errorf("calendar: unknown scale %q", raw)
	}
	return s, nil
}

// AddToDate returns t with quantity units of scale added. Every field is
// rebuilt through time.Date in t's location, so overflow rolls over the same
// way the calendar does (January 31 plus one month lands in March).
func AddToDate(t time.Time, quantity int, scale Scale) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	ns := t.Nanosecond()

	switch scale {
	case Year:
		y += quantity
	case Month:
		mo += time.Month(quantity)
	case Day:
		d += quantity
	case Hour:
		h += quantity
	case Minute:
		mi += quantity
	case Second:
		s += quantity
	case Millisecond:
		ns += quantity * int(time.Millisecond)
	}
	return time.Date(y, mo, d, h, mi, s, ns, t.Location())
}

// StartOfDate zeroes every field finer than scale. With scale Day the
// day-of-month is kept and the clock is reset to midnight; with scale Year
// the result is January 1.
func StartOfDate(t time.Time, scale Scale) time.Time {
	rank, ok := scaleRank[scale]
	if !ok {
		return t
	}
	reset := func(s Scale) bool { return scaleRank[s] <= rank }

	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	ms := t.Nanosecond() / int(time.Millisecond)

	if reset(Year) {
		mo = time.January
	}
	if reset(Month) {
		d = 1
	}
	if reset(Day) {
		h = 0
	}
	if reset(Hour) {
		mi = 0
	}
	if reset(Minute) {
		s = 0
	}
	if reset(Second) {
		ms = 0
	}
	return time.Date(y, mo, d, h, mi, s, ms*int(time.Millisecond), t.Location())
}

// StartOfWeek returns midnight of the first day of t's week.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := StartOfDate(t, Day)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return AddToDate(day, -offset, Day)
}

// StartOfQuarter returns midnight of the first day of t's quarter.
func StartOfQuarter(t time.Time) time.Time {
	y, mo, _ := t.Date()
	first := time.Month((int(mo)-1)/3*3 + 1)
	return time.Date(y, first, 1, 0, 0, 0, 0, t.Location())
}

// DaysInMonth reports the number of days in month of year.
func DaysInMonth(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ISOWeek returns the ISO-8601 week number of t as two digits.
func ISOWeek(t time.Time) string {
	_, week := t.ISOWeek()
	return fmt.Sprintf("%02d", week)
}
