package user

import (
	"context"
)

type StubRepository struct {
	nextId int
	data   map[string]User
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]User{}}
}

func (s *StubRepository) Store(ctx context.Context, user User) (User, error) {
	s.nextId++
	user.Id = s.nextId
	s.data[user.Uid] = user
	return user, nil
}

func (s *StubRepository) GetByUid(ctx context.Context, uid string) (User, error) {
	user, ok := s.data[uid]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *StubRepository) GetAll(ctx context.Context) ([]User, error) {
	users := make([]User, 0, len(s.data))
	for _, user := range s.data {
		users = append(users, user)
	}
	return users, nil
}

func (s *StubRepository) Update(ctx context.Context, user User) (User, error) {
	existing, ok := s.data[user.Uid]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user.Id = existing.Id
	s.data[user.Uid] = user
	return user, nil
}

func (s *StubRepository) Delete(ctx context.Context, uid string) (bool, error) {
	_, ok := s.data[uid]
	delete(s.data, uid)
	return ok, nil
}

func (s *StubRepository) Cleanup() {
	s.data = map[string]User{}
	s.nextId = 0
}
