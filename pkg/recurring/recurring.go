package recurring

import (
	"github.com/moneta/moneta/internal/dates"
	"github.com/moneta/moneta/pkg/transaction"
	"github.com/shopspring/decimal"
)

// Frequency is the cadence of a recurring template. The set is closed.
type Frequency string

const (
	Daily       Frequency = "daily"
	Weekly      Frequency = "weekly"
	Fortnightly Frequency = "fortnightly"
	Monthly     Frequency = "monthly"
	Yearly      Frequency = "yearly"
)

// Valid reports whether f is one of the five known cadences.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Fortnightly, Monthly, Yearly:
		return true
	}
	return false
}

// Skeleton is the transaction payload applied to every materialized
// occurrence of a template.
type Skeleton struct {
	Type        transaction.Type
	Amount      decimal.Decimal
	Description string
	BucketId    int
	Tags        []string
	Notes       string
}

// Template describes a recurring transaction.
type Template struct {
	Id       int
	Skeleton Skeleton
	// Frequency is the cadence occurrences are generated on.
	Frequency Frequency
	// StartDate is the permanent anchor of the schedule. Its day-of-month
	// and day-of-year never change, even when an occurrence is clamped to a
	// shorter month. Changing it changes the entire future schedule.
	StartDate dates.Date
	// EndDate is the inclusive upper bound of the schedule; the sentinel
	// means open-ended.
	EndDate dates.Date
	// LastApplied is the watermark: the latest occurrence date a reconcile
	// pass has advanced past, whether the occurrence was materialized or
	// already existed. The sentinel means the template was never reconciled.
	LastApplied dates.Date
}

// Status is a derived view of today against a template's date bounds, not
// stored state.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusActive     Status = "active"
	StatusEnded      Status = "ended"
)

// Classify returns the template status for the given day. Both bounds are
// inclusive: today == startDate and today == endDate are both active.
func Classify(today, startDate, endDate dates.Date) Status {
	if today.Before(startDate) {
		return StatusNotStarted
	}
	if !endDate.IsZero() && today.After(endDate) {
		return StatusEnded
	}
	return StatusActive
}

// Status returns the template's status as of today.
func (t Template) Status(today dates.Date) Status {
	return Classify(today, t.StartDate, t.EndDate)
}
