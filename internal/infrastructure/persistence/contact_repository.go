package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormContactRepository implements crm.ContactRepository using GORM
type GormContactRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(database *Database) *GormContactRepository {
	return &GormContactRepository{db: database.DB, lockTimeout: database.LockTimeout}
}

// FindByID finds a contact by its ID
func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Contact, error) {
	var contact crm.Contact
	if err := dbFrom(ctx, r.db).First(&contact, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// FindByEmail finds an active contact by email, case-insensitively
func (r *GormContactRepository) FindByEmail(ctx context.Context, email string) (*crm.Contact, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	var contact crm.Contact
	if err := dbFrom(ctx, r.db).
		Where("LOWER(email) = ? AND is_active = ?", strings.ToLower(email), true).
		First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// FindByAccount finds contacts belonging to an account
func (r *GormContactRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]crm.Contact, int64, error) {
	query := dbFrom(ctx, r.db).Model(&crm.Contact{}).Where("account_id = ?", accountID)
	return r.findWithFilter(query, filter)
}

// FindAll finds contacts matching the filter together with the total count
func (r *GormContactRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.Contact, int64, error) {
	query := dbFrom(ctx, r.db).Model(&crm.Contact{})
	return r.findWithFilter(query, filter)
}

func (r *GormContactRepository) findWithFilter(query *gorm.DB, filter shared.Filter) ([]crm.Contact, int64, error) {
	query = applySearch(query, filter.Search, "first_name", "last_name", "email")
	if active, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", active)
	}
	if ownerID, ok := filter.Filters["owner_id"]; ok {
		query = query.Where("owner_id = ?", ownerID)
	}
	// Unowned contacts are visible to everyone.
	if userID, ok := filter.Filters["visible_to"]; ok {
		query = query.Where("owner_id = ? OR owner_id IS NULL", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contacts []crm.Contact
	if err := applyPagination(query, filter).Find(&contacts).Error; err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

// Save creates or updates a contact
func (r *GormContactRepository) Save(ctx context.Context, contact *crm.Contact) error {
	return dbFrom(ctx, r.db).Save(contact).Error
}

// UpdateWithVersion applies mutate to the locked row under the version guard
func (r *GormContactRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*crm.Contact) error) (*crm.Contact, error) {
	var contact *crm.Contact
	err := transact(ctx, r.db, func(tx *gorm.DB) error {
		var err error
		contact, err = updateGuarded[crm.Contact](tx, r.lockTimeout, id, clientVersion, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// DeactivateWithVersion soft-deletes under the version guard
func (r *GormContactRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	return transact(ctx, r.db, func(tx *gorm.DB) error {
		return deactivateGuarded[crm.Contact](tx, r.lockTimeout, id, clientVersion)
	})
}

// ClearOwner unsets the owner on every contact owned by the given user
func (r *GormContactRepository) ClearOwner(ctx context.Context, ownerID uuid.UUID) error {
	return dbFrom(ctx, r.db).
		Model(&crm.Contact{}).
		Where("owner_id = ?", ownerID).
		Update("owner_id", nil).Error
}

var _ crm.ContactRepository = (*GormContactRepository)(nil)
