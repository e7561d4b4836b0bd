package user

import "context"

// Repository はユーザーリポジトリのインターフェース
type Repository interface {
	// Create は新しいユーザーを作成する。メール重複時は ErrEmailAlreadyExists
	Create(ctx context.Context, user *User) error

	// GetByID はIDでユーザーを取得する
	GetByID(ctx context.Context, id string) (*User, error)
}
