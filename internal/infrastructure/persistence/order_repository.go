package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements billing.OrderRepository using GORM
type GormOrderRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(database *Database) *GormOrderRepository {
	return &GormOrderRepository{db: database.DB, lockTimeout: database.LockTimeout}
}

// FindByID finds an order with its line items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Order, error) {
	var order billing.Order
	if err := dbFrom(ctx, r.db).
		Preload("LineItems").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds orders matching the filter together with the total count
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Order, int64, error) {
	query := dbFrom(ctx, r.db).Model(&billing.Order{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if accountID, ok := filter.Filters["account_id"]; ok {
		query = query.Where("account_id = ?", accountID)
	}
	if active, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", active)
	}
	// Unowned orders are visible to everyone.
	if userID, ok := filter.Filters["visible_to"]; ok {
		query = query.Where("owner_id = ? OR owner_id IS NULL", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []billing.Order
	if err := applyPagination(query, filter).Preload("LineItems").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ExistsForOpportunity reports whether an order was already generated from
// the opportunity
func (r *GormOrderRepository) ExistsForOpportunity(ctx context.Context, opportunityID uuid.UUID) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).
		Model(&billing.Order{}).
		Where("opportunity_id = ?", opportunityID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an order together with its line items
func (r *GormOrderRepository) Save(ctx context.Context, order *billing.Order) error {
	return dbFrom(ctx, r.db).Save(order).Error
}

// UpdateWithVersion applies mutate to the locked row under the version guard
func (r *GormOrderRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*billing.Order) error) (*billing.Order, error) {
	var order *billing.Order
	err := transact(ctx, r.db, func(tx *gorm.DB) error {
		var err error
		order, err = updateGuarded[billing.Order](tx, r.lockTimeout, id, clientVersion, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// DeactivateWithVersion soft-deletes under the version guard
func (r *GormOrderRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	return transact(ctx, r.db, func(tx *gorm.DB) error {
		return deactivateGuarded[billing.Order](tx, r.lockTimeout, id, clientVersion)
	})
}

// ClearOwner unsets the owner on every order owned by the given user
func (r *GormOrderRepository) ClearOwner(ctx context.Context, ownerID uuid.UUID) error {
	return dbFrom(ctx, r.db).
		Model(&billing.Order{}).
		Where("owner_id = ?", ownerID).
		Update("owner_id", nil).Error
}

var _ billing.OrderRepository = (*GormOrderRepository)(nil)
