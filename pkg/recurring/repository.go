package recurring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneta/moneta/internal/dates"
	"github.com/moneta/moneta/pkg/transaction"
	log "github.com/sirupsen/logrus"
)

var ErrTemplateNotFound = errors.New("recurring template not found")

type Repository interface {
	Store(ctx context.Context, userId int, tpl Template) (int, error)
	Get(ctx context.Context, userId int, id int) (Template, error)
	GetAll(ctx context.Context, userId int) ([]Template, error)
	// ListStarted returns the templates whose schedule has begun: startDate
	// <= today. Ended templates are included; the reconciler still owes them
	// occurrences between the watermark and their end date.
	ListStarted(ctx context.Context, userId int, today dates.Date) ([]Template, error)
	Update(ctx context.Context, userId int, tpl Template) (bool, error)
	UpdateWatermark(ctx context.Context, userId int, id int, lastApplied dates.Date) error
	Delete(ctx context.Context, userId int, id int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectColumns = `id, type, amount, description, COALESCE(bucket_id, 0), tags, notes, frequency, start_date, end_date, last_applied`

func (r *RepositoryImpl) Store(ctx context.Context, userId int, tpl Template) (int, error) {
	query := `INSERT INTO recurring_template (
				user_id, type, amount, description, bucket_id, tags, notes, frequency, start_date, end_date, last_applied
			  ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query,
		userId,
		string(tpl.Skeleton.Type),
		tpl.Skeleton.Amount,
		tpl.Skeleton.Description,
		nullableId(tpl.Skeleton.BucketId),
		tpl.Skeleton.Tags,
		tpl.Skeleton.Notes,
		string(tpl.Frequency),
		string(tpl.StartDate),
		nullableDate(tpl.EndDate),
		nullableDate(tpl.LastApplied),
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store recurring template: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, id int) (Template, error) {
	query := fmt.Sprintf(`SELECT %s FROM recurring_template WHERE user_id = $1 AND id = $2`, selectColumns)
	tpl, err := scanTemplate(r.db.QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Template{}, ErrTemplateNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get recurring template: %w", err)
		log.Error(err)
		return Template{}, err
	}
	return tpl, nil
}

func (r *RepositoryImpl) GetAll(ctx context.Context, userId int) ([]Template, error) {
	query := fmt.Sprintf(`SELECT %s FROM recurring_template WHERE user_id = $1 ORDER BY start_date, id`, selectColumns)
	return r.queryTemplates(ctx, query, userId)
}

func (r *RepositoryImpl) ListStarted(ctx context.Context, userId int, today dates.Date) ([]Template, error) {
	query := fmt.Sprintf(`SELECT %s FROM recurring_template WHERE user_id = $1 AND start_date <= $2 ORDER BY id`, selectColumns)
	return r.queryTemplates(ctx, query, userId, string(today))
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, tpl Template) (bool, error) {
	query := `UPDATE recurring_template SET
				type = $1, amount = $2, description = $3, bucket_id = $4, tags = $5, notes = $6,
				frequency = $7, start_date = $8, end_date = $9
			  WHERE user_id = $10 AND id = $11`
	tag, err := r.db.Exec(ctx, query,
		string(tpl.Skeleton.Type),
		tpl.Skeleton.Amount,
		tpl.Skeleton.Description,
		nullableId(tpl.Skeleton.BucketId),
		tpl.Skeleton.Tags,
		tpl.Skeleton.Notes,
		string(tpl.Frequency),
		string(tpl.StartDate),
		nullableDate(tpl.EndDate),
		userId,
		tpl.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not update recurring template: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) UpdateWatermark(ctx context.Context, userId int, id int, lastApplied dates.Date) error {
	query := `UPDATE recurring_template SET last_applied = $1 WHERE user_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, nullableDate(lastApplied), userId, id)
	if err != nil {
		err := fmt.Errorf("could not update watermark: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM recurring_template WHERE user_id = $1 AND id = $2", userId, id)
	if err != nil {
		err := fmt.Errorf("could not delete recurring template: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) queryTemplates(ctx context.Context, query string, args ...any) ([]Template, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query recurring templates: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			err := fmt.Errorf("could not scan recurring template: %w", err)
			log.Error(err)
			return nil, err
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return templates, nil
}

func scanTemplate(row pgx.Row) (Template, error) {
	var tpl Template
	var txType, frequency string
	var startDate time.Time
	var endDate, lastApplied *time.Time
	if err := row.Scan(
		&tpl.Id,
		&txType,
		&tpl.Skeleton.Amount,
		&tpl.Skeleton.Description,
		&tpl.Skeleton.BucketId,
		&tpl.Skeleton.Tags,
		&tpl.Skeleton.Notes,
		&frequency,
		&startDate,
		&endDate,
		&lastApplied,
	); err != nil {
		return Template{}, err
	}
	tpl.Skeleton.Type = transaction.Type(txType)
	tpl.Frequency = Frequency(frequency)
	tpl.StartDate = dates.FromTime(startDate)
	if endDate != nil {
		tpl.EndDate = dates.FromTime(*endDate)
	}
	if lastApplied != nil {
		tpl.LastApplied = dates.FromTime(*lastApplied)
	}
	return tpl, nil
}

func nullableId(id int) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullableDate(d dates.Date) any {
	if d.IsZero() {
		return nil
	}
	return string(d)
}
