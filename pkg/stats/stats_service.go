package stats

import (
	"context"
	"fmt"

	"github.com/moneta/moneta/internal/dates"
	"github.com/moneta/moneta/internal/utils"
	"github.com/moneta/moneta/pkg/bucket"
	"github.com/moneta/moneta/pkg/recurring"
	"github.com/moneta/moneta/pkg/transaction"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type StatsService interface {
	GetStats(ctx context.Context, from, to dates.Date) (StatsSummary, error)
}

type StatsServiceImpl struct {
	transactions transaction.Service
	buckets      bucket.BucketService
	recurring    recurring.Service
	clock        utils.Clock
}

func NewStatsService(
	transactions transaction.Service,
	buckets bucket.BucketService,
	recurringService recurring.Service,
	clock utils.Clock,
) *StatsServiceImpl {
	return &StatsServiceImpl{
		transactions: transactions,
		buckets:      buckets,
		recurring:    recurringService,
		clock:        clock,
	}
}

func (s *StatsServiceImpl) GetStats(ctx context.Context, from, to dates.Date) (StatsSummary, error) {
	if !from.Valid() || !to.Valid() || to.Before(from) {
		return StatsSummary{}, fmt.Errorf("invalid stats window [%s, %s]", from, to)
	}

	txs, err := s.transactions.List(ctx, transaction.Filter{From: from, To: to})
	if err != nil {
		return StatsSummary{}, err
	}
	log.Tracef("Stats window [%s, %s]: %d transactions", from, to, len(txs))

	summary := StatsSummary{StartDate: from, EndDate: to}
	spentPerBucket := map[int]decimal.Decimal{}
	perDay := map[dates.Date]*DailyStats{}
	for _, tx := range txs {
		day, ok := perDay[tx.Date]
		if !ok {
			day = &DailyStats{Date: tx.Date}
			perDay[tx.Date] = day
		}
		switch tx.Type {
		case transaction.TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
			day.Income = day.Income.Add(tx.Amount)
		case transaction.TypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(tx.Amount)
			day.Expenses = day.Expenses.Add(tx.Amount)
			spentPerBucket[tx.BucketId] = spentPerBucket[tx.BucketId].Add(tx.Amount)
		case transaction.TypeInvestment:
			summary.TotalInvested = summary.TotalInvested.Add(tx.Amount)
			day.Expenses = day.Expenses.Add(tx.Amount)
		}
		day.Net = day.Income.Sub(day.Expenses)
	}
	summary.Net = summary.TotalIncome.Sub(summary.TotalExpenses).Sub(summary.TotalInvested)

	// txs arrive date-ordered, so walking them again keeps the days ordered
	summary.Days = make([]DailyStats, 0, len(perDay))
	seen := map[dates.Date]bool{}
	for _, tx := range txs {
		if seen[tx.Date] {
			continue
		}
		seen[tx.Date] = true
		summary.Days = append(summary.Days, *perDay[tx.Date])
	}

	buckets, err := s.buckets.GetAll(ctx)
	if err != nil {
		return StatsSummary{}, err
	}
	for _, b := range buckets {
		spent, ok := spentPerBucket[b.ID]
		if !ok {
			continue
		}
		summary.Buckets = append(summary.Buckets, BucketStats{Bucket: b, Spent: spent})
	}

	upcoming, err := s.upcoming(ctx, from, to)
	if err != nil {
		// projections are advisory; the aggregated window still stands
		log.Warnf("failed to project upcoming occurrences: %v", err)
	} else {
		summary.Upcoming = upcoming
	}
	return summary, nil
}

// upcoming projects the recurring occurrences falling inside the window but
// after today. Nothing is materialized and no watermark moves.
func (s *StatsServiceImpl) upcoming(ctx context.Context, from, to dates.Date) ([]UpcomingStats, error) {
	start := dates.Max(from, s.clock.Today().AddDays(1))
	if start.After(to) {
		return nil, nil
	}
	occurrences, err := s.recurring.Project(ctx, start, to)
	if err != nil {
		return nil, err
	}
	upcoming := make([]UpcomingStats, 0, len(occurrences))
	for _, o := range occurrences {
		upcoming = append(upcoming, UpcomingStats{
			Date:        o.Date,
			Description: o.Template.Skeleton.Description,
			Type:        string(o.Template.Skeleton.Type),
			Amount:      o.Template.Skeleton.Amount,
			BucketId:    o.Template.Skeleton.BucketId,
		})
	}
	return upcoming, nil
}
