package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrBudgetNotFound = errors.New("budget not found")

type BudgetRepo interface {
	Store(ctx context.Context, userId int, budget Budget) (int, error)
	Get(ctx context.Context, userId int, id int) (Budget, error)
	GetByMonth(ctx context.Context, userId int, month string) ([]Budget, error)
	Find(ctx context.Context, userId int, bucketId int, month string) (Budget, error)
	Update(ctx context.Context, userId int, budget Budget) (bool, error)
	Delete(ctx context.Context, userId int, id int) (bool, error)
}

type BudgetRepoImpl struct {
	db *pgxpool.Pool
}

func NewBudgetRepo(db *pgxpool.Pool) *BudgetRepoImpl {
	return &BudgetRepoImpl{db: db}
}

func (r *BudgetRepoImpl) Store(ctx context.Context, userId int, budget Budget) (int, error) {
	query := `INSERT INTO budget (user_id, bucket_id, month, amount) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query, userId, budget.BucketId, budget.Month, budget.Amount).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store budget: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *BudgetRepoImpl) Get(ctx context.Context, userId int, id int) (Budget, error) {
	query := `SELECT id, bucket_id, month, amount FROM budget WHERE user_id = $1 AND id = $2`
	budget, err := scanBudget(r.db.QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Budget{}, ErrBudgetNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	return budget, nil
}

func (r *BudgetRepoImpl) GetByMonth(ctx context.Context, userId int, month string) ([]Budget, error) {
	query := `SELECT id, bucket_id, month, amount FROM budget WHERE user_id = $1 AND month = $2 ORDER BY bucket_id`
	rows, err := r.db.Query(ctx, query, userId, month)
	if err != nil {
		err := fmt.Errorf("could not query budgets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var budgets []Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			err := fmt.Errorf("could not scan budget: %w", err)
			log.Error(err)
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return budgets, nil
}

func (r *BudgetRepoImpl) Find(ctx context.Context, userId int, bucketId int, month string) (Budget, error) {
	query := `SELECT id, bucket_id, month, amount FROM budget WHERE user_id = $1 AND bucket_id = $2 AND month = $3`
	budget, err := scanBudget(r.db.QueryRow(ctx, query, userId, bucketId, month))
	if errors.Is(err, pgx.ErrNoRows) {
		return Budget{}, ErrBudgetNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not find budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	return budget, nil
}

func (r *BudgetRepoImpl) Update(ctx context.Context, userId int, budget Budget) (bool, error) {
	query := `UPDATE budget SET bucket_id = $1, month = $2, amount = $3 WHERE user_id = $4 AND id = $5`
	tag, err := r.db.Exec(ctx, query, budget.BucketId, budget.Month, budget.Amount, userId, budget.Id)
	if err != nil {
		err := fmt.Errorf("could not update budget: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *BudgetRepoImpl) Delete(ctx context.Context, userId int, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM budget WHERE user_id = $1 AND id = $2", userId, id)
	if err != nil {
		err := fmt.Errorf("could not delete budget: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanBudget(row pgx.Row) (Budget, error) {
	var budget Budget
	if err := row.Scan(&budget.Id, &budget.BucketId, &budget.Month, &budget.Amount); err != nil {
		return Budget{}, err
	}
	return budget, nil
}
