package transaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/moneta/moneta/internal/dates"
	"github.com/moneta/moneta/internal/event_bus"
	"github.com/moneta/moneta/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context, tx Transaction) (Transaction, error)
	// CreateBatch persists all transactions as one batch, assigning fresh
	// uids. On error none of the transactions may be assumed persisted.
	CreateBatch(ctx context.Context, txs []Transaction) ([]Transaction, error)
	Get(ctx context.Context, uid string) (Transaction, error)
	List(ctx context.Context, filter Filter) ([]Transaction, error)
	ListByRecurringId(ctx context.Context, recurringId int) ([]Transaction, error)
	Update(ctx context.Context, tx Transaction) (Transaction, error)
	RewriteRecurring(ctx context.Context, recurringId int, fields RecurringFields, from dates.Date) (int, error)
	DetachRecurring(ctx context.Context, recurringId int) (int, error)
	DeleteRecurring(ctx context.Context, recurringId int) (int, error)
	Delete(ctx context.Context, uid string) (bool, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) Create(ctx context.Context, tx Transaction) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := Validate(tx); err != nil {
		return Transaction{}, err
	}
	tx.Uid = uuid.NewString()
	if err := s.repo.Store(ctx, userId, tx); err != nil {
		return Transaction{}, err
	}
	s.publishCreated(ctx, tx)
	return tx, nil
}

func (s *ServiceImpl) CreateBatch(ctx context.Context, txs []Transaction) ([]Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if len(txs) == 0 {
		return nil, nil
	}
	created := make([]Transaction, len(txs))
	for i, tx := range txs {
		if err := Validate(tx); err != nil {
			return nil, err
		}
		tx.Uid = uuid.NewString()
		created[i] = tx
	}
	if err := s.repo.StoreBatch(ctx, userId, created); err != nil {
		return nil, err
	}
	for _, tx := range created {
		s.publishCreated(ctx, tx)
	}
	return created, nil
}

func (s *ServiceImpl) Get(ctx context.Context, uid string) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, uid)
}

func (s *ServiceImpl) List(ctx context.Context, filter Filter) ([]Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.List(ctx, userId, filter)
}

func (s *ServiceImpl) ListByRecurringId(ctx context.Context, recurringId int) ([]Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListByRecurringId(ctx, userId, recurringId)
}

func (s *ServiceImpl) Update(ctx context.Context, tx Transaction) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := Validate(tx); err != nil {
		return Transaction{}, err
	}
	updated, err := s.repo.Update(ctx, userId, tx)
	if err != nil {
		return Transaction{}, err
	}
	if !updated {
		log.Warnf("transaction not updated, probably because it does not exist (%s) or the user (%d) is not the owner", tx.Uid, userId)
		return Transaction{}, ErrTransactionNotFound
	}
	return tx, nil
}

func (s *ServiceImpl) RewriteRecurring(ctx context.Context, recurringId int, fields RecurringFields, from dates.Date) (int, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.RewriteByRecurringId(ctx, userId, recurringId, fields, from)
}

func (s *ServiceImpl) DetachRecurring(ctx context.Context, recurringId int) (int, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ClearRecurringId(ctx, userId, recurringId)
}

func (s *ServiceImpl) DeleteRecurring(ctx context.Context, recurringId int) (int, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.DeleteByRecurringId(ctx, userId, recurringId)
}

func (s *ServiceImpl) Delete(ctx context.Context, uid string) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	deleted, err := s.repo.Delete(ctx, userId, uid)
	if err != nil {
		return false, err
	}
	if !deleted {
		log.Warnf("transaction not deleted, probably because it does not exist (%s) or the user (%d) is not the owner", uid, userId)
	}
	return deleted, nil
}

func (s *ServiceImpl) publishCreated(ctx context.Context, tx Transaction) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.TransactionCreatedEvent, event_bus.TransactionCreated{
		Uid:      tx.Uid,
		Type:     string(tx.Type),
		Amount:   tx.Amount,
		BucketId: tx.BucketId,
		Date:     tx.Date,
	}))
	if err != nil {
		// subscribers only observe; their failures never fail the write
		log.Errorf("failed to publish transaction created event: %v", err)
	}
}

// Validate checks the user-facing invariants of a transaction payload.
func Validate(tx Transaction) error {
	if !tx.Type.Valid() {
		return fmt.Errorf("unknown transaction type %q", tx.Type)
	}
	if !tx.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	if tx.Description == "" {
		return fmt.Errorf("description must not be empty")
	}
	if !tx.Date.Valid() {
		return fmt.Errorf("invalid date %q", tx.Date)
	}
	if tx.Type == TypeExpense && tx.BucketId == 0 {
		return fmt.Errorf("expense transactions require a bucket")
	}
	return nil
}
