package recurring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moneta/moneta/internal/dates"
	"github.com/moneta/moneta/internal/event_bus"
	"github.com/moneta/moneta/internal/utils"
	"github.com/moneta/moneta/pkg/transaction"
	"github.com/moneta/moneta/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1})

var repoStub = NewStubRepository()
var txRepoStub = transaction.NewStubRepository()

var clock = &utils.MockClock{}

var txService transaction.Service
var service Service

func setup(t *testing.T) func() {
	clock.SetNow(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	txService = transaction.NewService(txRepoStub, event_bus.NewEventBus())
	service = NewService(repoStub, txService, event_bus.NewEventBus(), clock)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
		txRepoStub.Cleanup()
	}
}

func monthlyRent(start dates.Date) Template {
	return Template{
		Skeleton: Skeleton{
			Type:        transaction.TypeExpense,
			Amount:      decimal.NewFromInt(1200),
			Description: "Rent",
			BucketId:    1,
		},
		Frequency: Monthly,
		StartDate: start,
	}
}

func TestService_Create(t *testing.T) {
	t.Run("should create a template with an empty watermark", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, monthlyRent("2024-01-31"))

		// then
		assert.NoError(t, err)
		assert.NotZero(t, created.Id)
		assert.True(t, created.LastApplied.IsZero())
	})

	t.Run("should reject an unknown frequency", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		tpl := monthlyRent("2024-01-31")
		tpl.Frequency = "hourly"

		// when
		_, err := service.Create(ctx, tpl)

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown frequency")
	})

	t.Run("should reject an end date before the start date", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		tpl := monthlyRent("2024-03-01")
		tpl.EndDate = "2024-02-01"

		// when
		_, err := service.Create(ctx, tpl)

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "before start date")
	})

	t.Run("should reject an expense template without a bucket", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		tpl := monthlyRent("2024-01-31")
		tpl.Skeleton.BucketId = 0

		// when
		_, err := service.Create(ctx, tpl)

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "require a bucket")
	})
}

func TestService_Reconcile(t *testing.T) {
	t.Run("should materialize every occurrence owed up to today", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given a 31st-anchored template and today = 2024-06-15
		created, err := service.Create(ctx, monthlyRent("2024-01-31"))
		require.NoError(t, err)

		// when
		outcomes, err := service.Reconcile(ctx)

		// then
		assert.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.Len(t, outcomes[0].Created, 5)
		assert.Equal(t, dates.Date("2024-05-31"), outcomes[0].Watermark)

		txs, err := txService.ListByRecurringId(ctx, created.Id)
		require.NoError(t, err)
		var got []dates.Date
		for _, tx := range txs {
			got = append(got, tx.Date)
			assert.True(t, tx.IsRecurring)
			assert.Equal(t, created.Id, tx.RecurringId)
			assert.Equal(t, "Rent", tx.Description)
		}
		assert.Equal(t, []dates.Date{
			"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30", "2024-05-31",
		}, got)
	})

	t.Run("should be idempotent across repeated passes", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, monthlyRent("2024-01-31"))
		require.NoError(t, err)
		_, err = service.Reconcile(ctx)
		require.NoError(t, err)

		// when reconciling twice more
		_, err = service.Reconcile(ctx)
		require.NoError(t, err)
		_, err = service.Reconcile(ctx)
		require.NoError(t, err)

		// then no duplicates appeared
		txs, err := txService.ListByRecurringId(ctx, created.Id)
		require.NoError(t, err)
		assert.Len(t, txs, 5)
	})

	t.Run("should skip occurrence dates that already have a transaction", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given a manually created transaction on one occurrence date
		created, err := service.Create(ctx, monthlyRent("2024-01-31"))
		require.NoError(t, err)
		_, err = txService.Create(ctx, transaction.Transaction{
			Type:        transaction.TypeExpense,
			Amount:      decimal.NewFromInt(1200),
			Description: "Rent paid early",
			BucketId:    1,
			Date:        "2024-03-31",
			IsRecurring: true,
			RecurringId: created.Id,
		})
		require.NoError(t, err)

		// when
		outcomes, err := service.Reconcile(ctx)

		// then the occupied date was not materialized again but still moved
		// the watermark
		assert.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.Len(t, outcomes[0].Created, 4)
		assert.Equal(t, dates.Date("2024-05-31"), outcomes[0].Watermark)

		txs, err := txService.ListByRecurringId(ctx, created.Id)
		require.NoError(t, err)
		assert.Len(t, txs, 5)
	})

	t.Run("should keep the watermark put when the batch write fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, monthlyRent("2024-01-31"))
		require.NoError(t, err)
		txRepoStub.FailNextBatch = errors.New("connection reset")

		// when the first pass fails
		_, err = service.Reconcile(ctx)

		// then the error surfaces and nothing was recorded
		assert.Error(t, err)
		stored, err := service.Get(ctx, created.Id)
		require.NoError(t, err)
		assert.True(t, stored.LastApplied.IsZero())

		// and the next pass picks the same occurrences up again
		outcomes, err := service.Reconcile(ctx)
		assert.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.Len(t, outcomes[0].Created, 5)
	})

	t.Run("should not reconcile templates that have not started", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given a template starting after today
		_, err := service.Create(ctx, monthlyRent("2024-07-01"))
		require.NoError(t, err)

		// when
		outcomes, err := service.Reconcile(ctx)

		// then
		assert.NoError(t, err)
		assert.Empty(t, outcomes)
	})

	t.Run("should finish an ended template and then leave it alone", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given a template that ended before today
		tpl := monthlyRent("2024-01-15")
		tpl.EndDate = "2024-03-31"
		created, err := service.Create(ctx, tpl)
		require.NoError(t, err)

		// when
		outcomes, err := service.Reconcile(ctx)

		// then occurrences stop at the end date
		assert.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.Len(t, outcomes[0].Created, 3)

		txs, err := txService.ListByRecurringId(ctx, created.Id)
		require.NoError(t, err)
		assert.Equal(t, dates.Date("2024-03-15"), txs[len(txs)-1].Date)

		// and a later pass owes it nothing
		outcomes, err = service.Reconcile(ctx)
		assert.NoError(t, err)
		assert.Empty(t, outcomes)
	})

	t.Run("should keep reconciling other templates when one fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given two templates, the first of which will fail its batch
		_, err := service.Create(ctx, monthlyRent("2024-01-31"))
		require.NoError(t, err)
		weekly := monthlyRent("2024-06-01")
		weekly.Frequency = Weekly
		weekly.Skeleton.Description = "Groceries"
		second, err := service.Create(ctx, weekly)
		require.NoError(t, err)
		txRepoStub.FailNextBatch = errors.New("connection reset")

		// when
		outcomes, err := service.Reconcile(ctx)

		// then the second template still materialized
		assert.Error(t, err)
		require.Len(t, outcomes, 1)
		assert.Equal(t, second.Id, outcomes[0].TemplateId)
		assert.Len(t, outcomes[0].Created, 3)
	})

	t.Run("should publish a generated event per materializing template", func(t *testing.T) {
		bus := event_bus.NewEventBus()
		txService = transaction.NewService(txRepoStub, event_bus.NewEventBus())
		service = NewService(repoStub, txService, bus, clock)
		defer func() {
			repoStub.Cleanup()
			txRepoStub.Cleanup()
		}()
		clock.SetNow(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))

		var events []event_bus.RecurringGenerated
		event_bus.SubscribeTyped(bus, event_bus.RecurringGeneratedEvent,
			func(ctx context.Context, data event_bus.RecurringGenerated) error {
				events = append(events, data)
				return nil
			})
		_, err := service.Create(ctx, monthlyRent("2024-01-31"))
		require.NoError(t, err)

		// when
		_, err = service.Reconcile(ctx)

		// then
		assert.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, 5, events[0].Created)
		assert.Equal(t, dates.Date("2024-05-31"), events[0].Watermark)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("should leave history untouched without propagation", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created := reconciled(t)
		created.Skeleton.Amount = decimal.NewFromInt(1300)

		// when
		_, result, err := service.Update(ctx, created, Propagation{Mode: PropagateNone})

		// then
		assert.NoError(t, err)
		assert.Zero(t, result.Updated)
		txs, _ := txService.ListByRecurringId(ctx, created.Id)
		assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(1200)))
	})

	t.Run("should rewrite the whole history with propagation all", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created := reconciled(t)
		created.Skeleton.Amount = decimal.NewFromInt(1300)

		// when
		_, result, err := service.Update(ctx, created, Propagation{Mode: PropagateAll})

		// then
		assert.NoError(t, err)
		assert.Equal(t, 5, result.Requested)
		assert.Equal(t, 5, result.Updated)
		txs, _ := txService.ListByRecurringId(ctx, created.Id)
		for _, tx := range txs {
			assert.True(t, tx.Amount.Equal(decimal.NewFromInt(1300)))
		}
	})

	t.Run("should rewrite only from the cutoff date onward", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created := reconciled(t)
		created.Skeleton.Amount = decimal.NewFromInt(1300)

		// when
		_, result, err := service.Update(ctx, created, Propagation{
			Mode:   PropagateFromCutoff,
			Cutoff: "2024-04-01",
		})

		// then only April and May occurrences changed
		assert.NoError(t, err)
		assert.Equal(t, 2, result.Requested)
		assert.Equal(t, 2, result.Updated)
		txs, _ := txService.ListByRecurringId(ctx, created.Id)
		assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(1200)))
		assert.True(t, txs[4].Amount.Equal(decimal.NewFromInt(1300)))
	})

	t.Run("should report the partial outcome when the history rewrite fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created := reconciled(t)
		created.Skeleton.Amount = decimal.NewFromInt(1300)
		txRepoStub.FailNextRewrite = errors.New("connection reset")

		// when
		updated, result, err := service.Update(ctx, created, Propagation{Mode: PropagateAll})

		// then the error still carries the template and the counts
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "history rewrite incomplete")
		assert.Equal(t, created.Id, updated.Id)
		assert.Equal(t, 5, result.Requested)
		assert.Zero(t, result.Updated)
	})

	t.Run("should require a cutoff for fromCutoff propagation", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created := reconciled(t)

		// when
		_, _, err := service.Update(ctx, created, Propagation{Mode: PropagateFromCutoff})

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "requires a valid cutoff")
	})

	t.Run("should not backfill before a start date moved past the watermark", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given a reconciled template whose start date moves into the future
		created := reconciled(t)
		created.StartDate = "2024-09-01"
		_, _, err := service.Update(ctx, created, Propagation{Mode: PropagateNone})
		require.NoError(t, err)

		// when reconciling again with today = 2024-06-15
		outcomes, err := service.Reconcile(ctx)

		// then the stale watermark does not resurrect pre-start occurrences
		assert.NoError(t, err)
		assert.Empty(t, outcomes)
		txs, err := txService.ListByRecurringId(ctx, created.Id)
		require.NoError(t, err)
		assert.Len(t, txs, 5)
		for _, tx := range txs {
			assert.True(t, tx.Date.Before("2024-06-01"))
		}
	})

	t.Run("should preserve the watermark across an update", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created := reconciled(t)
		created.Skeleton.Description = "Rent (new landlord)"

		// when
		_, _, err := service.Update(ctx, created, Propagation{Mode: PropagateNone})

		// then
		assert.NoError(t, err)
		stored, err := service.Get(ctx, created.Id)
		require.NoError(t, err)
		assert.Equal(t, dates.Date("2024-05-31"), stored.LastApplied)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("should detach transactions with the orphan policy", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created := reconciled(t)

		// when
		ok, err := service.Delete(ctx, created.Id, DeleteOrphan)

		// then the transactions survive as plain entries
		assert.NoError(t, err)
		assert.True(t, ok)
		orphaned, err := txService.ListByRecurringId(ctx, created.Id)
		require.NoError(t, err)
		assert.Empty(t, orphaned)
		all, err := txService.List(ctx, transaction.Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 5)
		assert.False(t, all[0].IsRecurring)
	})

	t.Run("should delete transactions with the cascade policy", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created := reconciled(t)

		// when
		ok, err := service.Delete(ctx, created.Id, DeleteCascade)

		// then
		assert.NoError(t, err)
		assert.True(t, ok)
		all, err := txService.List(ctx, transaction.Filter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("should reject an unknown delete policy", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created := reconciled(t)

		// when
		_, err := service.Delete(ctx, created.Id, "archive")

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown delete policy")
	})
}

func TestService_Project(t *testing.T) {
	t.Run("should project future occurrences without touching watermarks", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given a never-reconciled template
		created, err := service.Create(ctx, monthlyRent("2024-01-31"))
		require.NoError(t, err)

		// when projecting the rest of the year
		occurrences, err := service.Project(ctx, "2024-07-01", "2024-12-31")

		// then the watermark is untouched and no transactions exist
		assert.NoError(t, err)
		assert.Len(t, occurrences, 6)
		assert.Equal(t, dates.Date("2024-07-31"), occurrences[0].Date)
		stored, err := service.Get(ctx, created.Id)
		require.NoError(t, err)
		assert.True(t, stored.LastApplied.IsZero())
		txs, err := txService.ListByRecurringId(ctx, created.Id)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("should reject an invalid window", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Project(ctx, "not-a-date", "2024-12-31")

		// then
		assert.Error(t, err)
	})
}

// reconciled creates a 31st-anchored monthly template and runs one reconcile
// pass, leaving five materialized transactions and a 2024-05-31 watermark.
func reconciled(t *testing.T) Template {
	created, err := service.Create(ctx, monthlyRent("2024-01-31"))
	require.NoError(t, err)
	_, err = service.Reconcile(ctx)
	require.NoError(t, err)
	stored, err := service.Get(ctx, created.Id)
	require.NoError(t, err)
	return stored
}
