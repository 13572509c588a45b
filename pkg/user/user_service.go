package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service interface {
	Create(ctx context.Context, user User) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	GetAvailableUsers(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, uid string) (bool, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Create(ctx context.Context, user User) (User, error) {
	if user.Username == "" {
		return User{}, fmt.Errorf("username must not be empty")
	}
	user.Uid = uuid.NewString()
	if user.Settings.Currency == "" {
		user.Settings.Currency = "EUR"
	}
	return s.repo.Store(ctx, user)
}

func (s *ServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return s.repo.GetByUid(ctx, uid)
}

func (s *ServiceImpl) GetAvailableUsers(ctx context.Context) ([]User, error) {
	return s.repo.GetAll(ctx)
}

func (s *ServiceImpl) Update(ctx context.Context, updated User) (User, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	updated.Uid = current.Uid
	return s.repo.Update(ctx, updated)
}

func (s *ServiceImpl) Delete(ctx context.Context, uid string) (bool, error) {
	return s.repo.Delete(ctx, uid)
}
