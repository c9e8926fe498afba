// Package dates implements the calendar arithmetic the chart is built on:
// parsing, differences and additions in a unit, truncation to the start of
// a unit, token based formatting and duration strings such as "5d" or "2w".
package dates

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Unit is a calendar granularity.
type Unit int

const (
	Millisecond Unit = iota
	Second
	Minute
	Hour
	Day
	Week
	Month
	Year
)

var unitNames = [...]string{"millisecond", "second", "minute", "hour", "day", "week", "month", "year"}

var unitAbbrev = [...]string{"ms", "s", "min", "h", "d", "w", "m", "y"}

// day equivalents used by ConvertScales
var unitDays = [...]float64{
	1.0 / 86400000,
	1.0 / 86400,
	1.0 / 1440,
	1.0 / 24,
	1,
	7,
	30,
	365,
}

func (u Unit) valid() bool { return u >= Millisecond && u <= Year }

func (u Unit) String() string {
	if !u.valid() {
		return fmt.Sprintf("Unit(%d)", int(u))
	}
	return unitNames[u]
}

// Abbrev returns the duration-string suffix for u ("d", "min", ...).
func (u Unit) Abbrev() string {
	if !u.valid() {
		return "?"
	}
	return unitAbbrev[u]
}

// Days returns how many days one u is worth (a month is 30 days, a year 365).
func (u Unit) Days() float64 {
	if !u.valid() {
		return 0
	}
	return unitDays[u]
}

// fixed returns the exact length of units up to a week.
func (u Unit) fixed() time.Duration {
	switch u {
	case Millisecond:
		return time.Millisecond
	case Second:
		return time.Second
	case Minute:
		return time.Minute
	case Hour:
		return time.Hour
	case Day:
		return 24 * time.Hour
	case Week:
		return 7 * 24 * time.Hour
	}
	return 0
}

// ParseUnit accepts full names, plurals and the duration-string suffixes.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ms", "millisecond", "milliseconds":
		return Millisecond, nil
	case "s", "sec", "second", "seconds":
		return Second, nil
	case "min", "minute", "minutes":
		return Minute, nil
	case "h", "hour", "hours":
		return Hour, nil
	case "d", "day", "days":
		return Day, nil
	case "w", "week", "weeks":
		return Week, nil
	case "m", "month", "months":
		return Month, nil
	case "y", "year", "years":
		return Year, nil
	}
	return 0, fmt.Errorf("unknown unit %q", s)
}

var layouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// Parse reads a date in one of the accepted layouts. Dates without a zone
// are interpreted in loc (UTC when nil); RFC 3339 input keeps its instant and
// is converted to loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("unable to parse date %q", s)
}

// wall drops the zone offset so that differences follow the wall clock
// across daylight saving transitions.
func wall(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// monthsBetween counts whole months elapsed from b to a.
func monthsBetween(a, b time.Time) int {
	months := (a.Year()-b.Year())*12 + int(a.Month()) - int(b.Month())
	switch {
	case months > 0 && a.Day() < b.Day():
		months--
	case months < 0 && a.Day() > b.Day():
		months++
	}
	return months
}

// Diff returns a - b expressed in unit. Week and smaller units give the
// exact fractional value; months and years count whole units elapsed, so a
// date maps onto the column of the month or year it falls in.
func Diff(a, b time.Time, unit Unit) float64 {
	switch unit {
	case Month:
		return float64(monthsBetween(a, b))
	case Year:
		return float64(monthsBetween(a, b) / 12)
	}
	return float64(wall(a).Sub(wall(b))) / float64(unit.fixed())
}

func roundDuration(ns float64) time.Duration {
	return time.Duration(math.Round(ns/float64(time.Millisecond))) * time.Millisecond
}

// Add returns t moved by qty units. Whole days, months and years follow the
// calendar; a fractional remainder is carried into the next smaller unit.
func Add(t time.Time, qty float64, unit Unit) time.Time {
	qty = math.Round(qty*1e9) / 1e9
	switch unit {
	case Year:
		whole := math.Trunc(qty)
		t = t.AddDate(int(whole), 0, 0)
		if frac := qty - whole; frac != 0 {
			return Add(t, frac*12, Month)
		}
		return t
	case Month:
		whole := math.Trunc(qty)
		t = t.AddDate(0, int(whole), 0)
		if frac := qty - whole; frac != 0 {
			return Add(t, frac*float64(DaysInMonth(t)), Day)
		}
		return t
	case Week:
		return Add(t, qty*7, Day)
	case Day:
		whole := math.Trunc(qty)
		t = t.AddDate(0, 0, int(whole))
		if frac := qty - whole; frac != 0 {
			return t.Add(roundDuration(frac * float64(24*time.Hour)))
		}
		return t
	}
	return t.Add(roundDuration(qty * float64(unit.fixed())))
}

// StartOf truncates t to the beginning of its unit. Weeks start on Monday.
func StartOf(t time.Time, unit Unit) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch unit {
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Week:
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case Day:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case Hour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case Minute:
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
	case Second:
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc)
	}
	ms := t.Nanosecond() / int(time.Millisecond) * int(time.Millisecond)
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), ms, loc)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// Canonical is the text form dates are stored and committed in: the day
// alone at midnight, otherwise the day and the time to the second. Parse
// reads it back.
func Canonical(t time.Time) string {
	if IsMidnight(t) {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// IsMidnight reports whether t has no time-of-day component.
func IsMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
