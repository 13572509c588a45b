package bucket

import (
	"context"
	"sort"
)

type StubBucketRepo struct {
	nextId int
	data   map[int]Bucket
}

func NewStubBucketRepo() *StubBucketRepo {
	return &StubBucketRepo{data: map[int]Bucket{}}
}

func (s *StubBucketRepo) Store(ctx context.Context, userId int, bucket Bucket) (int, error) {
	s.nextId++
	bucket.ID = s.nextId
	s.data[bucket.ID] = bucket
	return bucket.ID, nil
}

func (s *StubBucketRepo) GetAll(ctx context.Context, userId int) ([]Bucket, error) {
	buckets := make([]Bucket, 0, len(s.data))
	for _, bucket := range s.data {
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Position < buckets[j].Position })
	return buckets, nil
}

func (s *StubBucketRepo) Update(ctx context.Context, userId int, bucket Bucket) (bool, error) {
	existing, ok := s.data[bucket.ID]
	if !ok {
		return false, nil
	}
	bucket.Position = existing.Position
	s.data[bucket.ID] = bucket
	return true, nil
}

func (s *StubBucketRepo) UpdatePosition(ctx context.Context, userId int, bucket Bucket) (bool, error) {
	existing, ok := s.data[bucket.ID]
	if !ok {
		return false, nil
	}
	existing.Position = bucket.Position
	s.data[bucket.ID] = existing
	return true, nil
}

func (s *StubBucketRepo) FindMaxPosition(ctx context.Context, userId int) (int, error) {
	maxPosition := 0
	for _, bucket := range s.data {
		if bucket.Position > maxPosition {
			maxPosition = bucket.Position
		}
	}
	return maxPosition, nil
}

func (s *StubBucketRepo) Delete(ctx context.Context, userId int, bucketId int) (bool, error) {
	_, ok := s.data[bucketId]
	delete(s.data, bucketId)
	return ok, nil
}

func (s *StubBucketRepo) Cleanup() {
	s.data = map[int]Bucket{}
	s.nextId = 0
}
