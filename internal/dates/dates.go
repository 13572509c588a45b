// Package dates provides calendar-date values with no time-of-day or
// timezone component. A Date is the canonical string "YYYY-MM-DD", so the
// natural string ordering is also the chronological ordering.
package dates

import (
	"iter"
	"strings"
	"time"
)

// Layout is the canonical date format.
const Layout = "2006-01-02"

// Date is a calendar date in "YYYY-MM-DD" form. The zero value ("") is the
// invalid sentinel: operations on it return the sentinel instead of failing.
type Date string

// None is returned by operations that received unusable input.
const None Date = ""

// Normalize strips a trailing time component from a timestamp-like string
// and validates the remaining "YYYY-MM-DD" shape. Returns None when the
// input cannot be interpreted as a date.
func Normalize(raw string) Date {
	s := strings.TrimSpace(raw)
	if idx := strings.IndexAny(s, "T "); idx >= 0 {
		s = s[:idx]
	}
	if _, err := time.Parse(Layout, s); err != nil {
		return None
	}
	return Date(s)
}

// New builds a Date from its components. Out-of-range components are
// normalized the way time.Date normalizes them.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime truncates a time.Time to its calendar date.
func FromTime(t time.Time) Date {
	if t.IsZero() {
		return None
	}
	return Date(t.Format(Layout))
}

// Time returns the date as a time.Time at midnight UTC. Returns the zero
// time for the invalid sentinel.
func (d Date) Time() time.Time {
	t, err := time.Parse(Layout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsZero reports whether d is the invalid sentinel.
func (d Date) IsZero() bool {
	return d == None
}

// Valid reports whether d is a well-formed calendar date.
func (d Date) Valid() bool {
	_, err := time.Parse(Layout, string(d))
	return err == nil
}

func (d Date) String() string {
	return string(d)
}

// Year returns the year component, or 0 for the sentinel.
func (d Date) Year() int {
	return d.Time().Year()
}

// Month returns the month component, or January for the sentinel.
func (d Date) Month() time.Month {
	return d.Time().Month()
}

// Day returns the day-of-month component, or 1 for the sentinel.
func (d Date) Day() int {
	return d.Time().Day()
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	if d.IsZero() {
		return None
	}
	return FromTime(d.Time().AddDate(0, 0, n))
}

// AddMonths returns the date n months after d (n may be negative), with the
// day clamped to the target month's last day. Unlike time.AddDate it never
// rolls over into the following month: Jan 31 + 1 month is Feb 29, not Mar 2.
func (d Date) AddMonths(n int) Date {
	if d.IsZero() {
		return None
	}
	target := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := min(d.Day(), DaysInMonth(target.Year(), target.Month()))
	return New(target.Year(), target.Month(), day)
}

// Compare returns -1, 0, or 1 as a is before, equal to, or after b.
// Valid because the format is fixed-width, zero-padded, big-endian.
func Compare(a, b Date) int {
	return strings.Compare(string(a), string(b))
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return Compare(d, other) < 0
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return Compare(d, other) > 0
}

// Min returns the earliest of the given dates, ignoring sentinels.
// Returns None when no valid date is given.
func Min(ds ...Date) Date {
	out := None
	for _, d := range ds {
		if d.IsZero() {
			continue
		}
		if out.IsZero() || d.Before(out) {
			out = d
		}
	}
	return out
}

// Max returns the latest of the given dates, ignoring sentinels.
// Returns None when no valid date is given.
func Max(ds ...Date) Date {
	out := None
	for _, d := range ds {
		if d.IsZero() {
			continue
		}
		if d.After(out) {
			out = d
		}
	}
	return out
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfMonth returns the first day of d's month.
func (d Date) StartOfMonth() Date {
	if d.IsZero() {
		return None
	}
	return New(d.Year(), d.Month(), 1)
}

// EndOfMonth returns the last day of d's month.
func (d Date) EndOfMonth() Date {
	if d.IsZero() {
		return None
	}
	return New(d.Year(), d.Month(), DaysInMonth(d.Year(), d.Month()))
}

// StartOfYear returns January 1st of d's year.
func (d Date) StartOfYear() Date {
	if d.IsZero() {
		return None
	}
	return New(d.Year(), time.January, 1)
}

// EndOfYear returns December 31st of d's year.
func (d Date) EndOfYear() Date {
	if d.IsZero() {
		return None
	}
	return New(d.Year(), time.December, 31)
}

// StartOfWeek returns the most recent weekStartsOn day on or before d.
func (d Date) StartOfWeek(weekStartsOn time.Weekday) Date {
	if d.IsZero() {
		return None
	}
	delta := (int(d.Time().Weekday()) - int(weekStartsOn) + 7) % 7
	return d.AddDays(-delta)
}

// EndOfWeek returns the last day of the week containing d, for a week
// starting on weekStartsOn.
func (d Date) EndOfWeek(weekStartsOn time.Weekday) Date {
	if d.IsZero() {
		return None
	}
	return d.StartOfWeek(weekStartsOn).AddDays(6)
}

// Range yields every day from start to end inclusive, in order. The
// sequence is empty when either bound is the sentinel or start > end.
func Range(start, end Date) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		if start.IsZero() || end.IsZero() {
			return
		}
		for d := start; !d.After(end); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}
}
