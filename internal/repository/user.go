package repository

import (
	"context"

	"user-service/internal/domain"
)

// UserRepository is the only component that issues SQL against the users table.
// Lookups return domain.ErrUserNotFound when nothing matches; writes report
// the number of affected rows.
type UserRepository interface {
	Init(ctx context.Context) error
	Ping(ctx context.Context) error
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) (int64, error)
	Update(ctx context.Context, user *domain.User) (int64, error)
	DeleteByID(ctx context.Context, id int64) (int64, error)
}
