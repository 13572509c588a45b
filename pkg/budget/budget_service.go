package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/moneta/moneta/internal/event_bus"
	"github.com/moneta/moneta/pkg/transaction"
	"github.com/moneta/moneta/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type BudgetService interface {
	Create(ctx context.Context, budget Budget) (Budget, error)
	Get(ctx context.Context, id int) (Budget, error)
	Update(ctx context.Context, budget Budget) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
	// StatusForMonth reports spent vs budgeted for every budget defined in
	// the "YYYY-MM" month.
	StatusForMonth(ctx context.Context, month string) ([]Status, error)
}

type BudgetServiceImpl struct {
	repo         BudgetRepo
	transactions transaction.Service
}

func NewBudgetService(repo BudgetRepo, transactions transaction.Service) *BudgetServiceImpl {
	return &BudgetServiceImpl{repo: repo, transactions: transactions}
}

// RegisterOverspendWatch subscribes the service to transaction creation and
// logs a warning whenever an expense pushes its bucket past the month's
// budget. Purely advisory: creation is never blocked.
func (s *BudgetServiceImpl) RegisterOverspendWatch(eventBus *event_bus.EventBus) {
	event_bus.SubscribeTyped(eventBus, event_bus.TransactionCreatedEvent,
		func(ctx context.Context, data event_bus.TransactionCreated) error {
			if transaction.Type(data.Type) != transaction.TypeExpense || data.BucketId == 0 {
				return nil
			}
			status, err := s.statusFor(ctx, data.BucketId, MonthOf(data.Date))
			if errors.Is(err, ErrBudgetNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if status.Exceeded {
				log.Warnf("bucket %d exceeded its %s budget: spent %s of %s",
					data.BucketId, status.Budget.Month, status.Spent, status.Budget.Amount)
			}
			return nil
		})
}

func (s *BudgetServiceImpl) Create(ctx context.Context, budget Budget) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateBudget(budget); err != nil {
		return Budget{}, err
	}
	if _, err := s.repo.Find(ctx, userId, budget.BucketId, budget.Month); err == nil {
		return Budget{}, fmt.Errorf("bucket %d already has a budget for %s", budget.BucketId, budget.Month)
	} else if !errors.Is(err, ErrBudgetNotFound) {
		return Budget{}, err
	}

	id, err := s.repo.Store(ctx, userId, budget)
	if err != nil {
		return Budget{}, err
	}
	budget.Id = id
	return budget, nil
}

func (s *BudgetServiceImpl) Get(ctx context.Context, id int) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *BudgetServiceImpl) Update(ctx context.Context, budget Budget) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateBudget(budget); err != nil {
		return false, err
	}
	updated, err := s.repo.Update(ctx, userId, budget)
	if err != nil {
		return false, err
	}
	if !updated {
		log.Warnf("budget not updated, probably because it does not exist (%d)", budget.Id)
	}
	return updated, nil
}

func (s *BudgetServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	deleted, err := s.repo.Delete(ctx, userId, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		log.Warnf("budget not deleted, probably because it does not exist (%d)", id)
	}
	return deleted, nil
}

func (s *BudgetServiceImpl) StatusForMonth(ctx context.Context, month string) ([]Status, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	first, last, err := MonthBounds(month)
	if err != nil {
		return nil, err
	}
	budgets, err := s.repo.GetByMonth(ctx, userId, month)
	if err != nil {
		return nil, err
	}

	txs, err := s.transactions.List(ctx, transaction.Filter{From: first, To: last, Type: transaction.TypeExpense})
	if err != nil {
		return nil, err
	}
	spentPerBucket := map[int]decimal.Decimal{}
	for _, tx := range txs {
		spentPerBucket[tx.BucketId] = spentPerBucket[tx.BucketId].Add(tx.Amount)
	}

	statuses := make([]Status, 0, len(budgets))
	for _, budget := range budgets {
		statuses = append(statuses, newStatus(budget, spentPerBucket[budget.BucketId]))
	}
	return statuses, nil
}

func (s *BudgetServiceImpl) statusFor(ctx context.Context, bucketId int, month string) (Status, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to get current user: %w", err)
	}
	budget, err := s.repo.Find(ctx, userId, bucketId, month)
	if err != nil {
		return Status{}, err
	}
	first, last, err := MonthBounds(month)
	if err != nil {
		return Status{}, err
	}
	txs, err := s.transactions.List(ctx, transaction.Filter{
		From: first, To: last, BucketId: bucketId, Type: transaction.TypeExpense,
	})
	if err != nil {
		return Status{}, err
	}
	spent := decimal.Zero
	for _, tx := range txs {
		spent = spent.Add(tx.Amount)
	}
	return newStatus(budget, spent), nil
}

func newStatus(budget Budget, spent decimal.Decimal) Status {
	return Status{
		Budget:    budget,
		Spent:     spent,
		Remaining: budget.Amount.Sub(spent),
		Exceeded:  spent.GreaterThan(budget.Amount),
	}
}

func validateBudget(budget Budget) error {
	if budget.BucketId == 0 {
		return fmt.Errorf("budget requires a bucket")
	}
	if _, _, err := MonthBounds(budget.Month); err != nil {
		return err
	}
	if !budget.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}
