package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/crm/backend/internal/domain/catalog"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(database *Database) *GormProductRepository {
	return &GormProductRepository{db: database.DB, lockTimeout: database.LockTimeout}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := dbFrom(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := dbFrom(ctx, r.db).
		Where("id IN ?", ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll finds products matching the filter together with the total count
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := dbFrom(ctx, r.db).Model(&catalog.Product{})
	query = applySearch(query, filter.Search, "name", "description")
	if retainer, ok := filter.Filters["is_retainer_product"]; ok {
		query = query.Where("is_retainer_product = ?", retainer)
	}
	if active, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", active)
	}
	if ownerID, ok := filter.Filters["owner_id"]; ok {
		query = query.Where("owner_id = ?", ownerID)
	}
	if userID, ok := filter.Filters["visible_to"]; ok {
		query = query.Where("owner_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []catalog.Product
	if err := applyPagination(query, filter).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return dbFrom(ctx, r.db).Save(product).Error
}

// UpdateWithVersion applies mutate to the locked row under the version guard
func (r *GormProductRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*catalog.Product) error) (*catalog.Product, error) {
	var product *catalog.Product
	err := transact(ctx, r.db, func(tx *gorm.DB) error {
		var err error
		product, err = updateGuarded[catalog.Product](tx, r.lockTimeout, id, clientVersion, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeactivateWithVersion soft-deletes under the version guard
func (r *GormProductRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	return transact(ctx, r.db, func(tx *gorm.DB) error {
		return deactivateGuarded[catalog.Product](tx, r.lockTimeout, id, clientVersion)
	})
}

// CountOwnedBy counts active products owned by a user
func (r *GormProductRepository) CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFrom(ctx, r.db).
		Model(&catalog.Product{}).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
