package shared

// Versioned is implemented by every record protected by the version guard.
// The version counter moves by exactly 1 on each accepted mutation; no other
// code path may touch it.
type Versioned interface {
	GetVersion() int
	IncrementVersion()
	Touch()
}

// Deactivatable is implemented by soft-deletable records. Deactivation keeps
// the row queryable for referential history.
type Deactivatable interface {
	IsActive() bool
	Deactivate()
}

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	Versioned
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1" json:"version"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// SoftDeletableAggregateRoot extends BaseAggregateRoot with an activation flag
type SoftDeletableAggregateRoot struct {
	BaseAggregateRoot
	Active bool `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

// IsActive reports whether the record is active
func (a *SoftDeletableAggregateRoot) IsActive() bool {
	return a.Active
}

// Deactivate marks the record inactive without removing it
func (a *SoftDeletableAggregateRoot) Deactivate() {
	a.Active = false
}

// NewSoftDeletableAggregateRoot creates a new active aggregate root
func NewSoftDeletableAggregateRoot() SoftDeletableAggregateRoot {
	return SoftDeletableAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		Active:            true,
	}
}
