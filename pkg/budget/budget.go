package budget

import (
	"fmt"
	"time"

	"github.com/moneta/moneta/internal/dates"
	"github.com/shopspring/decimal"
)

// Budget is a monthly spending limit for one bucket.
type Budget struct {
	Id       int
	BucketId int
	// Month in "YYYY-MM" form.
	Month  string
	Amount decimal.Decimal
}

// Status compares what was spent in a bucket during a month against the
// budgeted amount. Derived, never stored.
type Status struct {
	Budget    Budget
	Spent     decimal.Decimal
	Remaining decimal.Decimal
	Exceeded  bool
}

const monthLayout = "2006-01"

// MonthBounds returns the first and last calendar day of a "YYYY-MM" month.
func MonthBounds(month string) (dates.Date, dates.Date, error) {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return dates.None, dates.None, fmt.Errorf("invalid month %q: %w", month, err)
	}
	first := dates.FromTime(t)
	return first.StartOfMonth(), first.EndOfMonth(), nil
}

// MonthOf returns the "YYYY-MM" month a date falls in.
func MonthOf(d dates.Date) string {
	return string(d)[:len(monthLayout)]
}
