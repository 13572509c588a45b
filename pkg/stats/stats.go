package stats

import (
	"github.com/moneta/moneta/internal/dates"
	"github.com/moneta/moneta/pkg/bucket"
	"github.com/shopspring/decimal"
)

// StatsSummary aggregates a date window of transactions: totals per type,
// per-bucket expense breakdown, a daily net series, and the recurring
// occurrences projected to fall after the window's data.
type StatsSummary struct {
	StartDate     dates.Date
	EndDate       dates.Date
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	TotalInvested decimal.Decimal
	Net           decimal.Decimal
	Buckets       []BucketStats
	Days          []DailyStats
	Upcoming      []UpcomingStats
}

// BucketStats is the expense total of one bucket within the window.
type BucketStats struct {
	Bucket bucket.Bucket
	Spent  decimal.Decimal
}

// DailyStats is the income, expense and net movement of a single day. Days
// without transactions are omitted.
type DailyStats struct {
	Date     dates.Date
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// UpcomingStats is one projected recurring occurrence, not yet materialized.
type UpcomingStats struct {
	Date        dates.Date
	Description string
	Type        string
	Amount      decimal.Decimal
	BucketId    int
}
