package memory

import (
	"context"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/user"
)

// UserRepository はユーザーリポジトリのインメモリ実装
type UserRepository struct{ store *Store }

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[u.Email]; exists {
		return user.ErrEmailAlreadyExists
	}
	u.ID = newID()
	stored := *u
	s.users[u.ID] = &stored
	s.emails[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	found := *u
	return &found, nil
}

var _ user.Repository = (*UserRepository)(nil)
