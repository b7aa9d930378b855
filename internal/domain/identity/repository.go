package identity

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository persists users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]User, int64, error)
	Save(ctx context.Context, user *User) error
	UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*User) error) (*User, error)
	// DeactivateWithVersion soft-deletes a user. Callers check ownership
	// rules first: deletion is blocked while the user owns accounts, leads
	// or products, and ownership is unset on everything else.
	DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
