package port

import (
	"context"

	"github.com/avelins/membergate/internal/core/domain"
)

// UserRepository exposes persistence behavior for user records.
// Lookups return repository.ErrNotFound when no row matches; Create
// returns repository.ErrDuplicate when a uniqueness constraint on
// username or email is violated.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
