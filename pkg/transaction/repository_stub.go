package transaction

import (
	"context"
	"sort"

	"github.com/moneta/moneta/internal/dates"
)

type StubRepository struct {
	data map[string]Transaction
	// FailNextBatch makes the next StoreBatch call fail, for exercising
	// reconcile retry behavior.
	FailNextBatch error
	// FailNextRewrite makes the next RewriteByRecurringId call fail before
	// rewriting anything, for exercising partial propagation reporting.
	FailNextRewrite error
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]Transaction{}}
}

func (s *StubRepository) Store(ctx context.Context, userId int, tx Transaction) error {
	s.data[tx.Uid] = tx
	return nil
}

func (s *StubRepository) StoreBatch(ctx context.Context, userId int, txs []Transaction) error {
	if s.FailNextBatch != nil {
		err := s.FailNextBatch
		s.FailNextBatch = nil
		return err
	}
	for _, tx := range txs {
		s.data[tx.Uid] = tx
	}
	return nil
}

func (s *StubRepository) Get(ctx context.Context, userId int, uid string) (Transaction, error) {
	tx, ok := s.data[uid]
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	return tx, nil
}

func (s *StubRepository) List(ctx context.Context, userId int, filter Filter) ([]Transaction, error) {
	var txs []Transaction
	for _, tx := range s.data {
		if !filter.From.IsZero() && tx.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && tx.Date.After(filter.To) {
			continue
		}
		if filter.BucketId != 0 && tx.BucketId != filter.BucketId {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		txs = append(txs, tx)
	}
	sortByDate(txs)
	return txs, nil
}

func (s *StubRepository) ListByRecurringId(ctx context.Context, userId int, recurringId int) ([]Transaction, error) {
	var txs []Transaction
	for _, tx := range s.data {
		if tx.RecurringId == recurringId {
			txs = append(txs, tx)
		}
	}
	sortByDate(txs)
	return txs, nil
}

func (s *StubRepository) Update(ctx context.Context, userId int, tx Transaction) (bool, error) {
	existing, ok := s.data[tx.Uid]
	if !ok {
		return false, nil
	}
	tx.IsRecurring = existing.IsRecurring
	tx.RecurringId = existing.RecurringId
	s.data[tx.Uid] = tx
	return true, nil
}

func (s *StubRepository) RewriteByRecurringId(ctx context.Context, userId int, recurringId int, fields RecurringFields, from dates.Date) (int, error) {
	if s.FailNextRewrite != nil {
		err := s.FailNextRewrite
		s.FailNextRewrite = nil
		return 0, err
	}
	count := 0
	for uid, tx := range s.data {
		if tx.RecurringId != recurringId {
			continue
		}
		if !from.IsZero() && tx.Date.Before(from) {
			continue
		}
		tx.Type = fields.Type
		tx.Amount = fields.Amount
		tx.Description = fields.Description
		tx.BucketId = fields.BucketId
		s.data[uid] = tx
		count++
	}
	return count, nil
}

func (s *StubRepository) ClearRecurringId(ctx context.Context, userId int, recurringId int) (int, error) {
	count := 0
	for uid, tx := range s.data {
		if tx.RecurringId == recurringId {
			tx.RecurringId = 0
			tx.IsRecurring = false
			s.data[uid] = tx
			count++
		}
	}
	return count, nil
}

func (s *StubRepository) DeleteByRecurringId(ctx context.Context, userId int, recurringId int) (int, error) {
	count := 0
	for uid, tx := range s.data {
		if tx.RecurringId == recurringId {
			delete(s.data, uid)
			count++
		}
	}
	return count, nil
}

func (s *StubRepository) Delete(ctx context.Context, userId int, uid string) (bool, error) {
	_, ok := s.data[uid]
	delete(s.data, uid)
	return ok, nil
}

func (s *StubRepository) Cleanup() {
	s.data = map[string]Transaction{}
	s.FailNextBatch = nil
	s.FailNextRewrite = nil
}

func sortByDate(txs []Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Date != txs[j].Date {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].Uid < txs[j].Uid
	})
}
