package app

import (
	"context"
	"fmt"

	"quizify-service/internal/domain"
)

// UserStore persists user identities.
type UserStore interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID string) (domain.User, bool, error)
}

// UserService exposes user profile reads.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Get(ctx context.Context, userID string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, domain.ErrUserRequired
	}
	user, ok, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}
