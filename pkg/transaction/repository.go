package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneta/moneta/internal/dates"
	log "github.com/sirupsen/logrus"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type Repository interface {
	Store(ctx context.Context, userId int, tx Transaction) error
	// StoreBatch stores all transactions in a single database batch. The
	// batch is not atomic across rows; the returned error carries the first
	// failure and the caller must treat the batch as not fully applied.
	StoreBatch(ctx context.Context, userId int, txs []Transaction) error
	Get(ctx context.Context, userId int, uid string) (Transaction, error)
	List(ctx context.Context, userId int, filter Filter) ([]Transaction, error)
	ListByRecurringId(ctx context.Context, userId int, recurringId int) ([]Transaction, error)
	Update(ctx context.Context, userId int, tx Transaction) (bool, error)
	// RewriteByRecurringId rewrites the recurring fields of all transactions
	// referencing recurringId with date >= from (all of them when from is
	// the sentinel). Returns the number of rows rewritten.
	RewriteByRecurringId(ctx context.Context, userId int, recurringId int, fields RecurringFields, from dates.Date) (int, error)
	// ClearRecurringId detaches all transactions referencing recurringId.
	ClearRecurringId(ctx context.Context, userId int, recurringId int) (int, error)
	DeleteByRecurringId(ctx context.Context, userId int, recurringId int) (int, error)
	Delete(ctx context.Context, userId int, uid string) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const insertQuery = `INSERT INTO transaction (
			uid, user_id, type, amount, description, bucket_id, date, is_recurring, recurring_id, tags, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const selectColumns = `uid, type, amount, description, COALESCE(bucket_id, 0), date, is_recurring, COALESCE(recurring_id, 0), tags, notes`

func (r *RepositoryImpl) Store(ctx context.Context, userId int, tx Transaction) error {
	_, err := r.db.Exec(ctx, insertQuery, insertArgs(userId, tx)...)
	if err != nil {
		err := fmt.Errorf("could not store transaction: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) StoreBatch(ctx context.Context, userId int, txs []Transaction) error {
	batch := &pgx.Batch{}
	for _, tx := range txs {
		batch.Queue(insertQuery, insertArgs(userId, tx)...)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		err := fmt.Errorf("could not store transaction batch: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, uid string) (Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transaction WHERE user_id = $1 AND uid = $2`, selectColumns)
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, userId, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get transaction: %w", err)
		log.Error(err)
		return Transaction{}, err
	}
	return tx, nil
}

func (r *RepositoryImpl) List(ctx context.Context, userId int, filter Filter) ([]Transaction, error) {
	conditions := []string{"user_id = $1"}
	args := []any{userId}
	if !filter.From.IsZero() {
		args = append(args, string(filter.From))
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, string(filter.To))
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}
	if filter.BucketId != 0 {
		args = append(args, filter.BucketId)
		conditions = append(conditions, fmt.Sprintf("bucket_id = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM transaction WHERE %s ORDER BY date, uid`,
		selectColumns, strings.Join(conditions, " AND "))
	return r.queryTransactions(ctx, query, args...)
}

func (r *RepositoryImpl) ListByRecurringId(ctx context.Context, userId int, recurringId int) ([]Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transaction WHERE user_id = $1 AND recurring_id = $2 ORDER BY date`, selectColumns)
	return r.queryTransactions(ctx, query, userId, recurringId)
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, tx Transaction) (bool, error) {
	query := `UPDATE transaction SET
				type = $1, amount = $2, description = $3, bucket_id = $4, date = $5, tags = $6, notes = $7
			  WHERE user_id = $8 AND uid = $9`
	tag, err := r.db.Exec(ctx, query,
		string(tx.Type),
		tx.Amount,
		tx.Description,
		nullableId(tx.BucketId),
		string(tx.Date),
		tx.Tags,
		tx.Notes,
		userId,
		tx.Uid,
	)
	if err != nil {
		err := fmt.Errorf("could not update transaction: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) RewriteByRecurringId(ctx context.Context, userId int, recurringId int, fields RecurringFields, from dates.Date) (int, error) {
	query := `UPDATE transaction SET type = $1, amount = $2, description = $3, bucket_id = $4
			  WHERE user_id = $5 AND recurring_id = $6`
	args := []any{string(fields.Type), fields.Amount, fields.Description, nullableId(fields.BucketId), userId, recurringId}
	if !from.IsZero() {
		args = append(args, string(from))
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not rewrite transactions: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *RepositoryImpl) ClearRecurringId(ctx context.Context, userId int, recurringId int) (int, error) {
	query := `UPDATE transaction SET recurring_id = NULL, is_recurring = FALSE
			  WHERE user_id = $1 AND recurring_id = $2`
	tag, err := r.db.Exec(ctx, query, userId, recurringId)
	if err != nil {
		err := fmt.Errorf("could not detach transactions: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *RepositoryImpl) DeleteByRecurringId(ctx context.Context, userId int, recurringId int) (int, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM transaction WHERE user_id = $1 AND recurring_id = $2", userId, recurringId)
	if err != nil {
		err := fmt.Errorf("could not delete transactions: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, uid string) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM transaction WHERE user_id = $1 AND uid = $2", userId, uid)
	if err != nil {
		err := fmt.Errorf("could not delete transaction: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) queryTransactions(ctx context.Context, query string, args ...any) ([]Transaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query transactions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			err := fmt.Errorf("could not scan transaction: %w", err)
			log.Error(err)
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return txs, nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var tx Transaction
	var txType string
	var date time.Time
	if err := row.Scan(
		&tx.Uid,
		&txType,
		&tx.Amount,
		&tx.Description,
		&tx.BucketId,
		&date,
		&tx.IsRecurring,
		&tx.RecurringId,
		&tx.Tags,
		&tx.Notes,
	); err != nil {
		return Transaction{}, err
	}
	tx.Type = Type(txType)
	tx.Date = dates.FromTime(date)
	return tx, nil
}

func insertArgs(userId int, tx Transaction) []any {
	return []any{
		tx.Uid,
		userId,
		string(tx.Type),
		tx.Amount,
		tx.Description,
		nullableId(tx.BucketId),
		string(tx.Date),
		tx.IsRecurring,
		nullableId(tx.RecurringId),
		tx.Tags,
		tx.Notes,
	}
}

func nullableId(id int) any {
	if id == 0 {
		return nil
	}
	return id
}
