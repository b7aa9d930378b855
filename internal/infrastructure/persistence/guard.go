package persistence

import (
	"errors"
	"fmt"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// guarded constrains a pointer type to version-carrying records
type guarded[T any] interface {
	*T
	shared.Versioned
}

// softGuarded additionally requires the soft-delete flag
type softGuarded[T any] interface {
	guarded[T]
	shared.Deactivatable
}

// applyLockTimeout bounds how long SELECT ... FOR UPDATE waits on a held row
// lock. SET LOCAL scopes the setting to the current transaction. Postgres
// only; other dialects fall back to their own lock semantics.
func applyLockTimeout(tx *gorm.DB, timeout time.Duration) error {
	if timeout <= 0 || tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())).Error
}

// translateLockError maps the postgres lock_not_available error to the
// domain-level timeout error
func translateLockError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "55P03" {
		return shared.ErrLockWaitTimeout
	}
	return err
}

// lockForVersion loads the row FOR UPDATE and compares the client version
// against the stored one. A mismatch returns ConflictError carrying the
// server version; the row stays locked until the transaction ends.
func lockForVersion[T any, PT guarded[T]](tx *gorm.DB, id uuid.UUID, clientVersion int) (PT, error) {
	entity := PT(new(T))
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(entity, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, translateLockError(err)
	}
	if entity.GetVersion() != clientVersion {
		return nil, shared.NewConflictError(entity.GetVersion())
	}
	return entity, nil
}

// updateGuarded runs a version-guarded mutation: lock, compare, mutate,
// increment by exactly 1, persist. Associations are never written here; line
// items go through their own guarded calls.
func updateGuarded[T any, PT guarded[T]](tx *gorm.DB, lockTimeout time.Duration, id uuid.UUID, clientVersion int, mutate func(PT) error) (PT, error) {
	if err := applyLockTimeout(tx, lockTimeout); err != nil {
		return nil, err
	}
	entity, err := lockForVersion[T, PT](tx, id, clientVersion)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		if err := mutate(entity); err != nil {
			return nil, err
		}
	}
	entity.IncrementVersion()
	entity.Touch()
	if err := tx.Omit(clause.Associations).Save(entity).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

// deactivateGuarded soft-deletes under the version guard
func deactivateGuarded[T any, PT softGuarded[T]](tx *gorm.DB, lockTimeout time.Duration, id uuid.UUID, clientVersion int) error {
	_, err := updateGuarded[T](tx, lockTimeout, id, clientVersion, func(entity PT) error {
		entity.Deactivate()
		return nil
	})
	return err
}

// deleteGuarded hard-deletes under the version guard. The stale-version
// conflict is still reported before anything is removed.
func deleteGuarded[T any, PT guarded[T]](tx *gorm.DB, lockTimeout time.Duration, id uuid.UUID, clientVersion int) error {
	if err := applyLockTimeout(tx, lockTimeout); err != nil {
		return err
	}
	entity, err := lockForVersion[T, PT](tx, id, clientVersion)
	if err != nil {
		return err
	}
	return tx.Delete(entity).Error
}
