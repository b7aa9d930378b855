package crm

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountType classifies the relationship with the company
type AccountType string

const (
	AccountTypeProspect   AccountType = "prospect"
	AccountTypeCustomer   AccountType = "customer"
	AccountTypePartner    AccountType = "partner"
	AccountTypeCompetitor AccountType = "competitor"
)

// IsValid checks if the type is a valid AccountType
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeProspect, AccountTypeCustomer, AccountTypePartner, AccountTypeCompetitor:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// Account represents a company or organization. Accounts are soft-deletable
// so that contacts, opportunities and billing records keep their references.
type Account struct {
	shared.SoftDeletableAggregateRoot
	Name            string      `gorm:"size:255;not null;index" json:"name"`
	Phone           string      `gorm:"size:50" json:"phone"`
	Website         string      `gorm:"size:255" json:"website"`
	Type            AccountType `gorm:"size:20;not null;default:'prospect';index" json:"type"`
	BillingAddress  string      `json:"billing_address"`
	ShippingAddress string      `json:"shipping_address"`
	ParentAccountID *uuid.UUID  `gorm:"type:uuid;index" json:"parent_account_id"`
	OwnerID         uuid.UUID   `gorm:"type:uuid;not null;index" json:"owner_id"`
}

// NewAccount creates a new account owned by the given user
func NewAccount(name string, accountType AccountType, ownerID uuid.UUID) (*Account, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot exceed 255 characters")
	}
	if accountType == "" {
		accountType = AccountTypeProspect
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Invalid account type")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}

	return &Account{
		SoftDeletableAggregateRoot: shared.NewSoftDeletableAggregateRoot(),
		Name:                       name,
		Type:                       accountType,
		OwnerID:                    ownerID,
	}, nil
}

// SetParent links this account under a parent account
func (a *Account) SetParent(parentID uuid.UUID) error {
	if parentID == a.ID {
		return shared.NewDomainError("INVALID_PARENT", "Account cannot be its own parent")
	}
	a.ParentAccountID = &parentID
	a.Touch()
	return nil
}

// ClearParent removes the parent account link
func (a *Account) ClearParent() {
	a.ParentAccountID = nil
	a.Touch()
}

// Rename changes the account name
func (a *Account) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	a.Name = name
	a.Touch()
	return nil
}

// ChangeType changes the account classification
func (a *Account) ChangeType(t AccountType) error {
	if !t.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Invalid account type")
	}
	a.Type = t
	a.Touch()
	return nil
}

// IsOwnedBy reports whether the given user owns this account
func (a *Account) IsOwnedBy(userID uuid.UUID) bool {
	return a.OwnerID == userID
}
