package stats

import (
	"context"
	"testing"
	"time"

	"github.com/moneta/moneta/internal/event_bus"
	"github.com/moneta/moneta/internal/utils"
	"github.com/moneta/moneta/pkg/bucket"
	"github.com/moneta/moneta/pkg/recurring"
	"github.com/moneta/moneta/pkg/transaction"
	"github.com/moneta/moneta/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1})

var txRepoStub = transaction.NewStubRepository()
var bucketRepoStub = bucket.NewStubBucketRepo()
var recurringRepoStub = recurring.NewStubRepository()

var clock = &utils.MockClock{}

var txService transaction.Service
var service StatsService

func setup(t *testing.T) func() {
	clock.SetNow(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	bus := event_bus.NewEventBus()
	txService = transaction.NewService(txRepoStub, bus)
	bucketService := bucket.NewBucketService(bucketRepoStub)
	recurringService := recurring.NewService(recurringRepoStub, txService, bus, clock)
	service = NewStatsService(txService, bucketService, recurringService, clock)
	return func() {
		t.Log("Teardown after test")
		txRepoStub.Cleanup()
		bucketRepoStub.Cleanup()
		recurringRepoStub.Cleanup()
	}
}

func seedWindow(t *testing.T) bucket.Bucket {
	groceries, err := bucket.NewBucketService(bucketRepoStub).Create(ctx, bucket.Bucket{Name: "Groceries"})
	require.NoError(t, err)

	for _, tx := range []transaction.Transaction{
		{Type: transaction.TypeIncome, Amount: decimal.NewFromInt(3000), Description: "Salary", Date: "2024-06-01"},
		{Type: transaction.TypeExpense, Amount: decimal.NewFromInt(120), Description: "Weekly shop", BucketId: groceries.ID, Date: "2024-06-03"},
		{Type: transaction.TypeExpense, Amount: decimal.NewFromInt(80), Description: "Weekly shop", BucketId: groceries.ID, Date: "2024-06-10"},
		{Type: transaction.TypeInvestment, Amount: decimal.NewFromInt(500), Description: "Index fund", Date: "2024-06-10"},
	} {
		_, err := txService.Create(ctx, tx)
		require.NoError(t, err)
	}
	return groceries
}

func TestStatsService_GetStats(t *testing.T) {
	t.Run("should total the window per transaction type", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		seedWindow(t)

		// when
		stats, err := service.GetStats(ctx, "2024-06-01", "2024-06-30")

		// then
		assert.NoError(t, err)
		assert.True(t, stats.TotalIncome.Equal(decimal.NewFromInt(3000)))
		assert.True(t, stats.TotalExpenses.Equal(decimal.NewFromInt(200)))
		assert.True(t, stats.TotalInvested.Equal(decimal.NewFromInt(500)))
		assert.True(t, stats.Net.Equal(decimal.NewFromInt(2300)))
	})

	t.Run("should break expenses down per bucket", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		groceries := seedWindow(t)

		// when
		stats, err := service.GetStats(ctx, "2024-06-01", "2024-06-30")

		// then
		assert.NoError(t, err)
		require.Len(t, stats.Buckets, 1)
		assert.Equal(t, groceries.ID, stats.Buckets[0].Bucket.ID)
		assert.True(t, stats.Buckets[0].Spent.Equal(decimal.NewFromInt(200)))
	})

	t.Run("should build an ordered daily series skipping empty days", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		seedWindow(t)

		// when
		stats, err := service.GetStats(ctx, "2024-06-01", "2024-06-30")

		// then
		assert.NoError(t, err)
		require.Len(t, stats.Days, 3)
		assert.Equal(t, "2024-06-01", string(stats.Days[0].Date))
		assert.True(t, stats.Days[0].Net.Equal(decimal.NewFromInt(3000)))
		assert.Equal(t, "2024-06-10", string(stats.Days[2].Date))
		// June 10th nets an 80 expense plus a 500 investment
		assert.True(t, stats.Days[2].Net.Equal(decimal.NewFromInt(-580)))
	})

	t.Run("should exclude transactions outside the window", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		seedWindow(t)

		// when narrowing to the first week
		stats, err := service.GetStats(ctx, "2024-06-01", "2024-06-07")

		// then
		assert.NoError(t, err)
		assert.True(t, stats.TotalExpenses.Equal(decimal.NewFromInt(120)))
		assert.True(t, stats.TotalInvested.IsZero())
	})

	t.Run("should project upcoming recurring occurrences after today", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		groceries := seedWindow(t)
		_, err := recurring.NewService(recurringRepoStub, txService, event_bus.NewEventBus(), clock).
			Create(ctx, recurring.Template{
				Skeleton: recurring.Skeleton{
					Type:        transaction.TypeExpense,
					Amount:      decimal.NewFromInt(1200),
					Description: "Rent",
					BucketId:    groceries.ID,
				},
				Frequency: recurring.Monthly,
				StartDate: "2024-01-20",
			})
		require.NoError(t, err)

		// when today is June 15th
		stats, err := service.GetStats(ctx, "2024-06-01", "2024-07-31")

		// then only the occurrences after today are listed
		assert.NoError(t, err)
		require.Len(t, stats.Upcoming, 2)
		assert.Equal(t, "2024-06-20", string(stats.Upcoming[0].Date))
		assert.Equal(t, "2024-07-20", string(stats.Upcoming[1].Date))
		assert.Equal(t, "Rent", stats.Upcoming[0].Description)
	})

	t.Run("should reject an inverted window", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.GetStats(ctx, "2024-06-30", "2024-06-01")

		// then
		assert.Error(t, err)
	})
}
