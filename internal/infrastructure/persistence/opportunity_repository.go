package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOpportunityRepository implements crm.OpportunityRepository using GORM
type GormOpportunityRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormOpportunityRepository creates a new GormOpportunityRepository
func NewGormOpportunityRepository(database *Database) *GormOpportunityRepository {
	return &GormOpportunityRepository{db: database.DB, lockTimeout: database.LockTimeout}
}

// FindByID finds an opportunity with its line items
func (r *GormOpportunityRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Opportunity, error) {
	var opportunity crm.Opportunity
	if err := dbFrom(ctx, r.db).
		Preload("LineItems").
		First(&opportunity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &opportunity, nil
}

// FindAll finds opportunities matching the filter together with the total count
func (r *GormOpportunityRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.Opportunity, int64, error) {
	query := dbFrom(ctx, r.db).Model(&crm.Opportunity{})
	query = applySearch(query, filter.Search, "name")
	if stage, ok := filter.Filters["stage"]; ok {
		query = query.Where("stage = ?", stage)
	}
	if accountID, ok := filter.Filters["account_id"]; ok {
		query = query.Where("account_id = ?", accountID)
	}
	if active, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", active)
	}
	// Unowned opportunities are visible to everyone.
	if userID, ok := filter.Filters["visible_to"]; ok {
		query = query.Where("owner_id = ? OR owner_id IS NULL", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var opportunities []crm.Opportunity
	if err := applyPagination(query, filter).Preload("LineItems").Find(&opportunities).Error; err != nil {
		return nil, 0, err
	}
	return opportunities, total, nil
}

// Save creates or updates an opportunity
func (r *GormOpportunityRepository) Save(ctx context.Context, opportunity *crm.Opportunity) error {
	return dbFrom(ctx, r.db).Save(opportunity).Error
}

// UpdateWithVersion applies mutate to the locked row under the version guard
func (r *GormOpportunityRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*crm.Opportunity) error) (*crm.Opportunity, error) {
	var opportunity *crm.Opportunity
	err := transact(ctx, r.db, func(tx *gorm.DB) error {
		var err error
		opportunity, err = updateGuarded[crm.Opportunity](tx, r.lockTimeout, id, clientVersion, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return opportunity, nil
}

// DeactivateWithVersion soft-deletes under the version guard
func (r *GormOpportunityRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	return transact(ctx, r.db, func(tx *gorm.DB) error {
		return deactivateGuarded[crm.Opportunity](tx, r.lockTimeout, id, clientVersion)
	})
}

// ClearOwner unsets the owner on every opportunity owned by the given user
func (r *GormOpportunityRepository) ClearOwner(ctx context.Context, ownerID uuid.UUID) error {
	return dbFrom(ctx, r.db).
		Model(&crm.Opportunity{}).
		Where("owner_id = ?", ownerID).
		Update("owner_id", nil).Error
}

// FindLineItem finds a line item scoped to its opportunity
func (r *GormOpportunityRepository) FindLineItem(ctx context.Context, opportunityID, itemID uuid.UUID) (*crm.OpportunityLineItem, error) {
	var item crm.OpportunityLineItem
	if err := dbFrom(ctx, r.db).
		Where("id = ? AND opportunity_id = ?", itemID, opportunityID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// SaveLineItem creates or updates a line item
func (r *GormOpportunityRepository) SaveLineItem(ctx context.Context, item *crm.OpportunityLineItem) error {
	return dbFrom(ctx, r.db).Save(item).Error
}

// UpdateLineItemWithVersion applies mutate to the locked line item under the version guard
func (r *GormOpportunityRepository) UpdateLineItemWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*crm.OpportunityLineItem) error) (*crm.OpportunityLineItem, error) {
	var item *crm.OpportunityLineItem
	err := transact(ctx, r.db, func(tx *gorm.DB) error {
		var err error
		item, err = updateGuarded[crm.OpportunityLineItem](tx, r.lockTimeout, id, clientVersion, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteLineItemWithVersion hard-deletes a line item under the version guard
func (r *GormOpportunityRepository) DeleteLineItemWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	return transact(ctx, r.db, func(tx *gorm.DB) error {
		return deleteGuarded[crm.OpportunityLineItem](tx, r.lockTimeout, id, clientVersion)
	})
}

var _ crm.OpportunityRepository = (*GormOpportunityRepository)(nil)
