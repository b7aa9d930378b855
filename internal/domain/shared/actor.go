package shared

import "github.com/google/uuid"

// Owned is implemented by records attributed to an owning user.
type Owned interface {
	IsOwnedBy(userID uuid.UUID) bool
}

// Actor is the authenticated principal performing an operation.
type Actor struct {
	UserID uuid.UUID
	Admin  bool
}

// Authorize returns ErrForbidden unless the actor is an admin or owns the
// record. The denial is generic and carries nothing about the record.
func (a Actor) Authorize(record Owned) error {
	if a.Admin || record.IsOwnedBy(a.UserID) {
		return nil
	}
	return ErrForbidden
}

// ScopeToActor restricts list results to records visible to the actor.
// Admins see everything; other users see their own records, plus unowned
// ones for record types whose owner is optional.
func (f *Filter) ScopeToActor(actor Actor) {
	if !actor.Admin {
		f.Filters["visible_to"] = actor.UserID
	}
}
