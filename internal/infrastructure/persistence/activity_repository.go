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

// GormActivityRepository implements crm.ActivityRepository using GORM
type GormActivityRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(database *Database) *GormActivityRepository {
	return &GormActivityRepository{db: database.DB, lockTimeout: database.LockTimeout}
}

// FindByID finds an activity with its attendee and related-lead sets
func (r *GormActivityRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Activity, error) {
	var activity crm.Activity
	if err := dbFrom(ctx, r.db).
		Preload("Contacts").
		Preload("Leads").
		First(&activity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &activity, nil
}

// FindByAssignee finds activities assigned to a user
func (r *GormActivityRepository) FindByAssignee(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]crm.Activity, int64, error) {
	query := dbFrom(ctx, r.db).Model(&crm.Activity{}).Where("assigned_to_id = ?", userID)
	query = applySearch(query, filter.Search, "subject")
	if activityType, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", activityType)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []crm.Activity
	if err := applyPagination(query, filter).
		Preload("Contacts").
		Preload("Leads").
		Find(&activities).Error; err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

// Save creates or updates an activity including its many-to-many sets
func (r *GormActivityRepository) Save(ctx context.Context, activity *crm.Activity) error {
	return transact(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit("Contacts", "Leads").Save(activity).Error; err != nil {
			return err
		}
		return r.replaceRelationSets(tx, activity)
	})
}

// UpdateWithVersion applies mutate to the locked row under the version guard.
// A non-nil Contacts or Leads slice on the mutated entity replaces the stored
// set; nil leaves it untouched.
func (r *GormActivityRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*crm.Activity) error) (*crm.Activity, error) {
	var activity *crm.Activity
	err := transact(ctx, r.db, func(tx *gorm.DB) error {
		var err error
		activity, err = updateGuarded[crm.Activity](tx, r.lockTimeout, id, clientVersion, mutate)
		if err != nil {
			return err
		}
		return r.replaceRelationSets(tx, activity)
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

func (r *GormActivityRepository) replaceRelationSets(tx *gorm.DB, activity *crm.Activity) error {
	if activity.Contacts != nil {
		if err := tx.Model(activity).Association("Contacts").Replace(activity.Contacts); err != nil {
			return err
		}
	}
	if activity.Leads != nil {
		if err := tx.Model(activity).Association("Leads").Replace(activity.Leads); err != nil {
			return err
		}
	}
	return nil
}

// DeleteWithVersion hard-deletes under the version guard
func (r *GormActivityRepository) DeleteWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	return transact(ctx, r.db, func(tx *gorm.DB) error {
		return deleteGuarded[crm.Activity](tx, r.lockTimeout, id, clientVersion)
	})
}

var _ crm.ActivityRepository = (*GormActivityRepository)(nil)
