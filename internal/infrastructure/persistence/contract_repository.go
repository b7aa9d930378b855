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

// GormContractRepository implements billing.ContractRepository using GORM
type GormContractRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(database *Database) *GormContractRepository {
	return &GormContractRepository{db: database.DB, lockTimeout: database.LockTimeout}
}

// FindByID finds a contract with its line items
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Contract, error) {
	var contract billing.Contract
	if err := dbFrom(ctx, r.db).
		Preload("LineItems").
		First(&contract, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contract, nil
}

// FindAll finds contracts matching the filter together with the total count
func (r *GormContractRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Contract, int64, error) {
	query := dbFrom(ctx, r.db).Model(&billing.Contract{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if accountID, ok := filter.Filters["account_id"]; ok {
		query = query.Where("account_id = ?", accountID)
	}
	if cycle, ok := filter.Filters["billing_cycle"]; ok {
		query = query.Where("billing_cycle = ?", cycle)
	}
	if active, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", active)
	}
	// Unowned contracts are visible to everyone.
	if userID, ok := filter.Filters["visible_to"]; ok {
		query = query.Where("owner_id = ? OR owner_id IS NULL", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contracts []billing.Contract
	if err := applyPagination(query, filter).Preload("LineItems").Find(&contracts).Error; err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

// ExistsForOpportunity reports whether a contract was already generated from
// the opportunity
func (r *GormContractRepository) ExistsForOpportunity(ctx context.Context, opportunityID uuid.UUID) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).
		Model(&billing.Contract{}).
		Where("opportunity_id = ?", opportunityID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a contract together with its line items
func (r *GormContractRepository) Save(ctx context.Context, contract *billing.Contract) error {
	return dbFrom(ctx, r.db).Save(contract).Error
}

// UpdateWithVersion applies mutate to the locked row under the version guard
func (r *GormContractRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*billing.Contract) error) (*billing.Contract, error) {
	var contract *billing.Contract
	err := transact(ctx, r.db, func(tx *gorm.DB) error {
		var err error
		contract, err = updateGuarded[billing.Contract](tx, r.lockTimeout, id, clientVersion, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// DeactivateWithVersion soft-deletes under the version guard
func (r *GormContractRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	return transact(ctx, r.db, func(tx *gorm.DB) error {
		return deactivateGuarded[billing.Contract](tx, r.lockTimeout, id, clientVersion)
	})
}

// ClearOwner unsets the owner on every contract owned by the given user
func (r *GormContractRepository) ClearOwner(ctx context.Context, ownerID uuid.UUID) error {
	return dbFrom(ctx, r.db).
		Model(&billing.Contract{}).
		Where("owner_id = ?", ownerID).
		Update("owner_id", nil).Error
}

var _ billing.ContractRepository = (*GormContractRepository)(nil)
