package budget

import (
	"context"
	"testing"

	"github.com/moneta/moneta/internal/dates"
	"github.com/moneta/moneta/internal/event_bus"
	"github.com/moneta/moneta/pkg/transaction"
	"github.com/moneta/moneta/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1})

var repoStub = NewStubBudgetRepo()
var txRepoStub = transaction.NewStubRepository()

var txService transaction.Service
var service BudgetService

func setup(t *testing.T) func() {
	txService = transaction.NewService(txRepoStub, event_bus.NewEventBus())
	service = NewBudgetService(repoStub, txService)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
		txRepoStub.Cleanup()
	}
}

func groceriesBudget() Budget {
	return Budget{
		BucketId: 1,
		Month:    "2024-06",
		Amount:   decimal.NewFromInt(400),
	}
}

func expense(amount int64, date string) transaction.Transaction {
	return transaction.Transaction{
		Type:        transaction.TypeExpense,
		Amount:      decimal.NewFromInt(amount),
		Description: "Groceries",
		BucketId:    1,
		Date:        dates.Date(date),
	}
}

func TestBudgetService_Create(t *testing.T) {
	t.Run("should create a budget", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, groceriesBudget())

		// then
		assert.NoError(t, err)
		assert.NotZero(t, created.Id)
	})

	t.Run("should reject a second budget for the same bucket and month", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Create(ctx, groceriesBudget())
		require.NoError(t, err)

		// when
		_, err = service.Create(ctx, groceriesBudget())

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already has a budget")
	})

	t.Run("should reject an invalid month", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		budget := groceriesBudget()
		budget.Month = "June 2024"

		// when
		_, err := service.Create(ctx, budget)

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid month")
	})

	t.Run("should reject a non-positive amount", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		budget := groceriesBudget()
		budget.Amount = decimal.Zero

		// when
		_, err := service.Create(ctx, budget)

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "amount must be positive")
	})
}

func TestBudgetService_StatusForMonth(t *testing.T) {
	t.Run("should sum expenses inside the month per bucket", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given a budget and two expenses inside the month, one outside
		_, err := service.Create(ctx, groceriesBudget())
		require.NoError(t, err)
		for _, tx := range []transaction.Transaction{
			expense(150, "2024-06-10"),
			expense(100, "2024-06-20"),
		} {
			_, err := txService.Create(ctx, tx)
			require.NoError(t, err)
		}
		_, err = txService.Create(ctx, expense(999, "2024-07-01"))
		require.NoError(t, err)

		// when
		statuses, err := service.StatusForMonth(ctx, "2024-06")

		// then
		assert.NoError(t, err)
		require.Len(t, statuses, 1)
		assert.True(t, statuses[0].Spent.Equal(decimal.NewFromInt(250)))
		assert.True(t, statuses[0].Remaining.Equal(decimal.NewFromInt(150)))
		assert.False(t, statuses[0].Exceeded)
	})

	t.Run("should flag an exceeded budget", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Create(ctx, groceriesBudget())
		require.NoError(t, err)
		_, err = txService.Create(ctx, expense(500, "2024-06-10"))
		require.NoError(t, err)

		// when
		statuses, err := service.StatusForMonth(ctx, "2024-06")

		// then
		assert.NoError(t, err)
		require.Len(t, statuses, 1)
		assert.True(t, statuses[0].Exceeded)
	})

	t.Run("should return an empty status list for a month without budgets", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		statuses, err := service.StatusForMonth(ctx, "2024-01")

		// then
		assert.NoError(t, err)
		assert.Empty(t, statuses)
	})
}

func TestBudgetService_OverspendWatch(t *testing.T) {
	t.Run("should not fail transaction creation when over budget", func(t *testing.T) {
		// given a bus shared by the transaction service and the watch
		bus := event_bus.NewEventBus()
		txService = transaction.NewService(txRepoStub, bus)
		budgetService := NewBudgetService(repoStub, txService)
		budgetService.RegisterOverspendWatch(bus)
		service = budgetService
		defer func() {
			repoStub.Cleanup()
			txRepoStub.Cleanup()
		}()
		_, err := service.Create(ctx, groceriesBudget())
		require.NoError(t, err)

		// when an expense blows past the budget
		_, err = txService.Create(ctx, expense(500, "2024-06-10"))

		// then the write still succeeds
		assert.NoError(t, err)
	})
}
