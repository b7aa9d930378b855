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

// GormAccountRepository implements crm.AccountRepository using GORM
type GormAccountRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(database *Database) *GormAccountRepository {
	return &GormAccountRepository{db: database.DB, lockTimeout: database.LockTimeout}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Account, error) {
	var account crm.Account
	if err := dbFrom(ctx, r.db).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByName finds an active account by exact name match
func (r *GormAccountRepository) FindByName(ctx context.Context, name string) (*crm.Account, error) {
	var account crm.Account
	if err := dbFrom(ctx, r.db).
		Where("name = ? AND is_active = ?", name, true).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAll finds accounts matching the filter together with the total count
func (r *GormAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.Account, int64, error) {
	query := dbFrom(ctx, r.db).Model(&crm.Account{})
	query = applySearch(query, filter.Search, "name", "phone", "website")
	if accountType, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", accountType)
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

	var accounts []crm.Account
	if err := applyPagination(query, filter).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// FindAllActive returns every active account
func (r *GormAccountRepository) FindAllActive(ctx context.Context) ([]crm.Account, error) {
	var accounts []crm.Account
	if err := dbFrom(ctx, r.db).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *crm.Account) error {
	return dbFrom(ctx, r.db).Save(account).Error
}

// UpdateWithVersion applies mutate to the locked row under the version guard
func (r *GormAccountRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*crm.Account) error) (*crm.Account, error) {
	var account *crm.Account
	err := transact(ctx, r.db, func(tx *gorm.DB) error {
		var err error
		account, err = updateGuarded[crm.Account](tx, r.lockTimeout, id, clientVersion, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// DeactivateWithVersion soft-deletes under the version guard
func (r *GormAccountRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	return transact(ctx, r.db, func(tx *gorm.DB) error {
		return deactivateGuarded[crm.Account](tx, r.lockTimeout, id, clientVersion)
	})
}

// CountOwnedBy counts active accounts owned by a user
func (r *GormAccountRepository) CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFrom(ctx, r.db).
		Model(&crm.Account{}).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ crm.AccountRepository = (*GormAccountRepository)(nil)
