package recurring

import (
	"time"

	"github.com/moneta/moneta/internal/dates"
)

// maxOccurrences caps every occurrence loop. Corrupted inputs (a cadence
// that stops advancing, a mangled date) truncate the sequence instead of
// hanging.
const maxOccurrences = 10000

// NextOccurrence computes the first occurrence of the schedule strictly
// after afterDate. afterDate defaults to startDate when it is the sentinel;
// an afterDate before startDate yields startDate, the schedule's first
// occurrence.
// For monthly and yearly cadences the desired day is always startDate's
// day, recomputed fresh on every call and clamped to the target month's
// last day only when the anchor day does not exist there. The clamped day
// never becomes the anchor for later occurrences: a template anchored on
// the 31st yields Jan 31, Feb 29, Mar 31 - not Feb 29, Mar 29.
func NextOccurrence(frequency Frequency, startDate, afterDate dates.Date) dates.Date {
	if startDate.IsZero() {
		return dates.None
	}
	if afterDate.IsZero() {
		afterDate = startDate
	}
	// the schedule begins at startDate, so anything earlier owes it first
	if afterDate.Before(startDate) {
		return startDate
	}
	switch frequency {
	case Daily:
		return afterDate.AddDays(1)
	case Weekly:
		return afterDate.AddDays(7)
	case Fortnightly:
		return afterDate.AddDays(14)
	case Monthly:
		return monthlyOnOrAfter(startDate, monthsBetween(startDate, afterDate)+1)
	case Yearly:
		return yearlyOccurrence(startDate, afterDate.Year()-startDate.Year()+1)
	}
	return dates.None
}

// OccurrencesUpTo lists the occurrence dates after the lastApplied
// watermark (from startDate inclusive when there is no watermark) up to and
// including upTo, never past endDate. A watermark before startDate is
// treated as absent: moving the start date later must never yield an
// occurrence before it. The result is ascending and finite.
func OccurrencesUpTo(frequency Frequency, startDate, endDate, lastApplied, upTo dates.Date) []dates.Date {
	if startDate.IsZero() || upTo.IsZero() {
		return nil
	}
	limit := upTo
	if !endDate.IsZero() && endDate.Before(limit) {
		limit = endDate
	}

	next := startDate
	if !lastApplied.IsZero() && !lastApplied.Before(startDate) {
		next = NextOccurrence(frequency, startDate, lastApplied)
	}
	return collect(frequency, startDate, next, limit)
}

// OccurrencesBetween lists the occurrence dates inside [from, to], never
// past endDate. It is a pure projection of the schedule: it neither reads
// nor advances any watermark, so calendar and report views can project past
// or future occurrences freely. The window seed is found in closed form,
// not by walking from startDate.
func OccurrencesBetween(frequency Frequency, startDate, endDate, from, to dates.Date) []dates.Date {
	if startDate.IsZero() || from.IsZero() || to.IsZero() {
		return nil
	}
	limit := to
	if !endDate.IsZero() && endDate.Before(limit) {
		limit = endDate
	}
	seed := firstOnOrAfter(frequency, startDate, dates.Max(from, startDate))
	return collect(frequency, startDate, seed, limit)
}

// collect iterates from seed until the limit is passed, guarding against
// schedules that stop advancing.
func collect(frequency Frequency, startDate, seed, limit dates.Date) []dates.Date {
	var out []dates.Date
	next := seed
	for range maxOccurrences {
		if next.IsZero() || next.After(limit) {
			break
		}
		out = append(out, next)
		prev := next
		next = NextOccurrence(frequency, startDate, next)
		if !next.After(prev) {
			break
		}
	}
	return out
}

// firstOnOrAfter finds the first occurrence >= from without iterating from
// startDate, using step or month/year counts.
func firstOnOrAfter(frequency Frequency, startDate, from dates.Date) dates.Date {
	if !from.After(startDate) {
		return startDate
	}
	switch frequency {
	case Daily:
		return from
	case Weekly, Fortnightly:
		step := 7
		if frequency == Fortnightly {
			step = 14
		}
		gap := daysBetween(startDate, from)
		k := gap / step
		if gap%step != 0 {
			k++
		}
		return startDate.AddDays(k * step)
	case Monthly:
		k := monthsBetween(startDate, from)
		candidate := monthlyOnOrAfter(startDate, k)
		if candidate.Before(from) {
			candidate = monthlyOnOrAfter(startDate, k+1)
		}
		return candidate
	case Yearly:
		k := from.Year() - startDate.Year()
		candidate := yearlyOccurrence(startDate, k)
		if candidate.Before(from) {
			candidate = yearlyOccurrence(startDate, k+1)
		}
		return candidate
	}
	return dates.None
}

// monthlyOnOrAfter returns the occurrence k months after the anchor,
// clamping the anchor day to the target month's length.
func monthlyOnOrAfter(startDate dates.Date, k int) dates.Date {
	target := time.Date(startDate.Year(), startDate.Month()+time.Month(k), 1, 0, 0, 0, 0, time.UTC)
	day := min(startDate.Day(), dates.DaysInMonth(target.Year(), target.Month()))
	return dates.New(target.Year(), target.Month(), day)
}

// yearlyOccurrence returns the occurrence k years after the anchor,
// clamping only Feb 29 anchors in non-leap target years.
func yearlyOccurrence(startDate dates.Date, k int) dates.Date {
	year := startDate.Year() + k
	day := min(startDate.Day(), dates.DaysInMonth(year, startDate.Month()))
	return dates.New(year, startDate.Month(), day)
}

func daysBetween(a, b dates.Date) int {
	return int(b.Time().Sub(a.Time()) / (24 * time.Hour))
}

func monthsBetween(a, b dates.Date) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
