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

// GormLeadRepository implements crm.LeadRepository using GORM
type GormLeadRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(database *Database) *GormLeadRepository {
	return &GormLeadRepository{db: database.DB, lockTimeout: database.LockTimeout}
}

// FindByID finds a lead by its ID
func (r *GormLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	var lead crm.Lead
	if err := dbFrom(ctx, r.db).First(&lead, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lead, nil
}

// FindAll finds leads matching the filter together with the total count
func (r *GormLeadRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.Lead, int64, error) {
	query := dbFrom(ctx, r.db).Model(&crm.Lead{})
	if userID, ok := filter.Filters["visible_to"]; ok {
		query = query.Where("owner_id = ?", userID)
	}
	query = applySearch(query, filter.Search, "first_name", "last_name", "company", "email")
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if active, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leads []crm.Lead
	if err := applyPagination(query, filter).Find(&leads).Error; err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// Save creates or updates a lead
func (r *GormLeadRepository) Save(ctx context.Context, lead *crm.Lead) error {
	return dbFrom(ctx, r.db).Save(lead).Error
}

// UpdateWithVersion applies mutate to the locked row under the version guard
func (r *GormLeadRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*crm.Lead) error) (*crm.Lead, error) {
	var lead *crm.Lead
	err := transact(ctx, r.db, func(tx *gorm.DB) error {
		var err error
		lead, err = updateGuarded[crm.Lead](tx, r.lockTimeout, id, clientVersion, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// DeactivateWithVersion soft-deletes under the version guard
func (r *GormLeadRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	return transact(ctx, r.db, func(tx *gorm.DB) error {
		return deactivateGuarded[crm.Lead](tx, r.lockTimeout, id, clientVersion)
	})
}

// CountOwnedBy counts active leads owned by a user
func (r *GormLeadRepository) CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFrom(ctx, r.db).
		Model(&crm.Lead{}).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ crm.LeadRepository = (*GormLeadRepository)(nil)
