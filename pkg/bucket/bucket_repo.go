package bucket

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type BucketRepo interface {
	// Store stores a new Bucket to the database
	Store(ctx context.Context, userId int, bucket Bucket) (int, error)
	GetAll(ctx context.Context, userId int) ([]Bucket, error)
	Update(ctx context.Context, userId int, bucket Bucket) (bool, error)
	UpdatePosition(ctx context.Context, userId int, bucket Bucket) (bool, error)
	FindMaxPosition(ctx context.Context, userId int) (int, error)
	Delete(ctx context.Context, userId int, bucketId int) (bool, error)
}

type BucketRepoImpl struct {
	db *pgxpool.Pool
}

func NewBucketRepo(db *pgxpool.Pool) *BucketRepoImpl {
	return &BucketRepoImpl{db: db}
}

func (r *BucketRepoImpl) Store(ctx context.Context, userId int, bucket Bucket) (int, error) {
	query := `INSERT INTO bucket (name, icon, position, user_id) VALUES ($1, $2, $3, $4) RETURNING id`

	var id int
	err := r.db.QueryRow(ctx, query, bucket.Name, bucket.Icon, bucket.Position, userId).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store bucket: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *BucketRepoImpl) GetAll(ctx context.Context, userId int) ([]Bucket, error) {
	query := `SELECT id, name, icon, position FROM bucket WHERE user_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query buckets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var buckets []Bucket
	for rows.Next() {
		var bucket Bucket
		if err := rows.Scan(&bucket.ID, &bucket.Name, &bucket.Icon, &bucket.Position); err != nil {
			err := fmt.Errorf("could not scan bucket: %w", err)
			log.Error(err)
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return buckets, nil
}

func (r *BucketRepoImpl) Update(ctx context.Context, userId int, bucket Bucket) (bool, error) {
	query := `UPDATE bucket SET name = $1, icon = $2 WHERE id = $3 AND user_id = $4`
	tag, err := r.db.Exec(ctx, query, bucket.Name, bucket.Icon, bucket.ID, userId)
	if err != nil {
		err := fmt.Errorf("could not update bucket: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *BucketRepoImpl) UpdatePosition(ctx context.Context, userId int, bucket Bucket) (bool, error) {
	query := `UPDATE bucket SET position = $1 WHERE id = $2 AND user_id = $3`
	tag, err := r.db.Exec(ctx, query, bucket.Position, bucket.ID, userId)
	if err != nil {
		err := fmt.Errorf("could not update bucket position: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *BucketRepoImpl) FindMaxPosition(ctx context.Context, userId int) (int, error) {
	query := `SELECT COALESCE(MAX(position), 0) FROM bucket WHERE user_id = $1`
	var maxPosition int
	if err := r.db.QueryRow(ctx, query, userId).Scan(&maxPosition); err != nil {
		err := fmt.Errorf("could not find max position: %w", err)
		log.Error(err)
		return 0, err
	}
	return maxPosition, nil
}

func (r *BucketRepoImpl) Delete(ctx context.Context, userId int, bucketId int) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM bucket WHERE id = $1 AND user_id = $2", bucketId, userId)
	if err != nil {
		err := fmt.Errorf("could not delete bucket: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
