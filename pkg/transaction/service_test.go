package transaction

import (
	"context"
	"testing"

	"github.com/moneta/moneta/internal/dates"
	"github.com/moneta/moneta/internal/event_bus"
	"github.com/moneta/moneta/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1})

var repoStub = NewStubRepository()

var service Service

func setup(t *testing.T) func() {
	service = NewService(repoStub, event_bus.NewEventBus())
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func validExpense() Transaction {
	return Transaction{
		Type:        TypeExpense,
		Amount:      decimal.NewFromInt(25),
		Description: "Weekly shop",
		BucketId:    3,
		Date:        "2024-01-15",
	}
}

func TestService_Create(t *testing.T) {
	t.Run("should create a transaction and assign a uid", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, validExpense())

		// then
		assert.NoError(t, err)
		assert.NotEmpty(t, created.Uid)

		stored, err := service.Get(ctx, created.Uid)
		require.NoError(t, err)
		assert.Equal(t, "Weekly shop", stored.Description)
	})

	t.Run("should reject an unknown type", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		tx := validExpense()
		tx.Type = "transfer"

		// when
		_, err := service.Create(ctx, tx)

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown transaction type")
	})

	t.Run("should reject a non-positive amount", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		tx := validExpense()
		tx.Amount = decimal.NewFromInt(-5)

		// when
		_, err := service.Create(ctx, tx)

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "amount must be positive")
	})

	t.Run("should reject an expense without a bucket", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		tx := validExpense()
		tx.BucketId = 0

		// when
		_, err := service.Create(ctx, tx)

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "require a bucket")
	})

	t.Run("should allow income without a bucket", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		tx := Transaction{
			Type:        TypeIncome,
			Amount:      decimal.NewFromInt(3000),
			Description: "Salary",
			Date:        "2024-01-31",
		}

		// when
		_, err := service.Create(ctx, tx)

		// then
		assert.NoError(t, err)
	})

	t.Run("should publish a created event", func(t *testing.T) {
		bus := event_bus.NewEventBus()
		service = NewService(repoStub, bus)
		defer repoStub.Cleanup()

		received := 0
		event_bus.SubscribeTyped(bus, event_bus.TransactionCreatedEvent,
			func(ctx context.Context, data event_bus.TransactionCreated) error {
				received++
				return nil
			})

		// when
		_, err := service.Create(ctx, validExpense())

		// then
		assert.NoError(t, err)
		assert.Equal(t, 1, received)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(context.Background(), validExpense())

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

func TestService_CreateBatch(t *testing.T) {
	t.Run("should assign uids to every transaction in the batch", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		batch := []Transaction{validExpense(), validExpense()}

		// when
		created, err := service.CreateBatch(ctx, batch)

		// then
		assert.NoError(t, err)
		assert.Len(t, created, 2)
		assert.NotEmpty(t, created[0].Uid)
		assert.NotEqual(t, created[0].Uid, created[1].Uid)
	})

	t.Run("should do nothing for an empty batch", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.CreateBatch(ctx, nil)

		// then
		assert.NoError(t, err)
		assert.Empty(t, created)
	})
}

func TestService_List(t *testing.T) {
	t.Run("should filter by date window and type", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		early := validExpense()
		early.Date = "2024-01-01"
		late := validExpense()
		late.Date = "2024-03-01"
		income := Transaction{Type: TypeIncome, Amount: decimal.NewFromInt(100), Description: "Gift", Date: "2024-01-10"}
		for _, tx := range []Transaction{early, late, income} {
			_, err := service.Create(ctx, tx)
			require.NoError(t, err)
		}

		// when
		got, err := service.List(ctx, Filter{From: "2024-01-01", To: "2024-01-31", Type: TypeExpense})

		// then
		assert.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, dates.Date("2024-01-01"), got[0].Date)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("should update an existing transaction", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, _ := service.Create(ctx, validExpense())
		created.Description = "Monthly shop"

		// when
		updated, err := service.Update(ctx, created)

		// then
		assert.NoError(t, err)
		assert.Equal(t, "Monthly shop", updated.Description)
	})

	t.Run("should return not found for a missing transaction", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		tx := validExpense()
		tx.Uid = "missing"

		// when
		_, err := service.Update(ctx, tx)

		// then
		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})
}
