package bucket

import (
	"context"
	"fmt"

	"github.com/moneta/moneta/pkg/user"
	log "github.com/sirupsen/logrus"
)

type BucketService interface {
	GetAll(ctx context.Context) ([]Bucket, error)
	Create(ctx context.Context, bucket Bucket) (Bucket, error)
	MoveAfter(ctx context.Context, id, precedingId int) (bool, error)
	Update(ctx context.Context, bucket Bucket) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type BucketServiceImpl struct {
	repo BucketRepo
}

func NewBucketService(repo BucketRepo) *BucketServiceImpl {
	return &BucketServiceImpl{repo: repo}
}

func (s *BucketServiceImpl) GetAll(ctx context.Context) ([]Bucket, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *BucketServiceImpl) Create(ctx context.Context, bucket Bucket) (Bucket, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Bucket{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if bucket.Name == "" {
		return Bucket{}, fmt.Errorf("bucket name must not be empty")
	}
	maxPosition, err := s.repo.FindMaxPosition(ctx, userId)
	if err != nil {
		return Bucket{}, err
	}
	bucket.Position = maxPosition + 100

	id, err := s.repo.Store(ctx, userId, bucket)
	if err != nil {
		return Bucket{}, err
	}
	bucket.ID = id

	return bucket, nil
}

func (s *BucketServiceImpl) Update(ctx context.Context, bucket Bucket) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}

	updated, err := s.repo.Update(ctx, userId, bucket)
	if err != nil {
		return false, err
	}
	if !updated {
		log.Warnf("bucket not updated, probably because it does not exist (%d) or the user (%d) is not the owner", bucket.ID, userId)
		return false, fmt.Errorf("bucket not updated")
	}
	return true, nil
}

func (s *BucketServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}

	deleted, err := s.repo.Delete(ctx, userId, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		log.Warnf("bucket not deleted, probably because it does not exist (%d) or the user (%d) is not the owner", id, userId)
		return false, fmt.Errorf("bucket not deleted")
	}
	return true, nil
}

func (s *BucketServiceImpl) MoveAfter(ctx context.Context, id int, precedingId int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	buckets, err := s.repo.GetAll(ctx, userId)
	if err != nil {
		return false, err
	}

	bucketIdx := findBucket(id, buckets)
	if bucketIdx == -1 {
		return false, fmt.Errorf("bucket not found")
	}

	newPos := 0
	prevPos, nextPos := findPreviousAndNextPositions(precedingId, buckets)
	if nextPos == -1 {
		newPos = prevPos + 100
	} else if nextPos-prevPos > 1 {
		newPos = prevPos + ((nextPos - prevPos) / 2)
	} else { // no space between prev and next - reorder all buckets
		prevIdx := findBucket(precedingId, buckets)
		newBuckets := append(buckets[:prevIdx], append([]Bucket{buckets[bucketIdx]}, buckets[prevIdx+1:]...)...)
		if err := s.reorderBuckets(ctx, userId, newBuckets); err != nil {
			return false, err
		}
	}
	bucketToMove := buckets[bucketIdx]
	bucketToMove.Position = newPos
	return s.repo.UpdatePosition(ctx, userId, bucketToMove)
}

func (s *BucketServiceImpl) reorderBuckets(ctx context.Context, userId int, buckets []Bucket) error {
	for i, bucket := range buckets {
		bucket.Position = (i + 1) * 100
		if _, err := s.repo.UpdatePosition(ctx, userId, bucket); err != nil {
			return err
		}
	}
	return nil
}

func findPreviousAndNextPositions(previousId int, buckets []Bucket) (int, int) {
	previousBucketIdx := findBucket(previousId, buckets)
	if previousBucketIdx == -1 {
		return 0, buckets[0].Position
	}
	previousBucketPos := buckets[previousBucketIdx].Position
	if previousBucketIdx == len(buckets)-1 { // it is the last one
		return previousBucketPos, -1
	}
	nextBucketPos := buckets[previousBucketIdx+1].Position
	return previousBucketPos, nextBucketPos
}

func findBucket(id int, buckets []Bucket) int {
	for idx, bucket := range buckets {
		if bucket.ID == id {
			return idx
		}
	}
	return -1
}
