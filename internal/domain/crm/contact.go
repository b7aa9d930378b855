package crm

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Contact represents a person attached to an account. Contacts survive the
// deletion of their owner (ownership becomes unset) but not of their account.
type Contact struct {
	shared.SoftDeletableAggregateRoot
	FirstName   string     `gorm:"size:100" json:"first_name"`
	LastName    string     `gorm:"size:100;not null;index" json:"last_name"`
	Title       string     `gorm:"size:100" json:"title"`
	Email       string     `gorm:"size:255;index" json:"email"`
	Phone       string     `gorm:"size:50" json:"phone"`
	Description string     `json:"description"`
	ReportsToID *uuid.UUID `gorm:"type:uuid" json:"reports_to_id"`
	AccountID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"account_id"`
	OwnerID     *uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
}

// NewContact creates a new contact under the given account
func NewContact(accountID uuid.UUID, firstName, lastName string, ownerID uuid.UUID) (*Contact, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if lastName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Last name cannot be empty")
	}

	contact := &Contact{
		SoftDeletableAggregateRoot: shared.NewSoftDeletableAggregateRoot(),
		FirstName:                  firstName,
		LastName:                   lastName,
		AccountID:                  accountID,
	}
	if ownerID != uuid.Nil {
		contact.OwnerID = &ownerID
	}
	return contact, nil
}

// FullName returns "First Last" with missing parts trimmed
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// SetEmail sets the contact email, normalized for case-insensitive matching
func (c *Contact) SetEmail(email string) {
	c.Email = strings.ToLower(strings.TrimSpace(email))
	c.Touch()
}

// SetReportsTo links this contact to a manager contact
func (c *Contact) SetReportsTo(managerID uuid.UUID) error {
	if managerID == c.ID {
		return shared.NewDomainError("INVALID_MANAGER", "Contact cannot report to itself")
	}
	c.ReportsToID = &managerID
	c.Touch()
	return nil
}

// ClearOwner unsets the owning user, used when the owner is deleted
func (c *Contact) ClearOwner() {
	c.OwnerID = nil
	c.Touch()
}

// IsOwnedBy reports whether the given user owns this contact. A contact
// without an owner is open to any user.
func (c *Contact) IsOwnedBy(userID uuid.UUID) bool {
	return c.OwnerID == nil || *c.OwnerID == userID
}
