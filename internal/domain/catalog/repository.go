package catalog

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository persists products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, int64, error)
	Save(ctx context.Context, product *Product) error
	UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*Product) error) (*Product, error)
	DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error
	CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error)
}
