package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/user"
)

type UserService struct {
	userRepo user.Repository
}

func NewUserService(userRepo user.Repository) *UserService {
	return &UserService{userRepo: userRepo}
}

type CreateUserInput struct {
	Name  string
	Email string
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*user.User, error) {
	u := user.NewUser(input.Name, input.Email)
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
