package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountRepository persists accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByName(ctx context.Context, name string) (*Account, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Account, int64, error)
	FindAllActive(ctx context.Context) ([]Account, error)
	Save(ctx context.Context, account *Account) error
	// UpdateWithVersion runs the version guard, applies mutate to the locked
	// row, bumps the version and persists, all in one transaction.
	UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*Account) error) (*Account, error)
	// DeactivateWithVersion soft-deletes under the version guard.
	DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error
	CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// ContactRepository persists contacts
type ContactRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Contact, error)
	FindByEmail(ctx context.Context, email string) (*Contact, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]Contact, int64, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Contact, int64, error)
	Save(ctx context.Context, contact *Contact) error
	UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*Contact) error) (*Contact, error)
	DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error
	ClearOwner(ctx context.Context, ownerID uuid.UUID) error
}

// LeadRepository persists leads
type LeadRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Lead, int64, error)
	Save(ctx context.Context, lead *Lead) error
	UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*Lead) error) (*Lead, error)
	DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error
	CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// OpportunityRepository persists opportunities and their line items
type OpportunityRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Opportunity, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Opportunity, int64, error)
	Save(ctx context.Context, opportunity *Opportunity) error
	UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*Opportunity) error) (*Opportunity, error)
	DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error
	ClearOwner(ctx context.Context, ownerID uuid.UUID) error

	FindLineItem(ctx context.Context, opportunityID, itemID uuid.UUID) (*OpportunityLineItem, error)
	SaveLineItem(ctx context.Context, item *OpportunityLineItem) error
	UpdateLineItemWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*OpportunityLineItem) error) (*OpportunityLineItem, error)
	// DeleteLineItemWithVersion hard-deletes under the version guard.
	DeleteLineItemWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error
}

// ActivityRepository persists activities
type ActivityRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Activity, error)
	FindByAssignee(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Activity, int64, error)
	Save(ctx context.Context, activity *Activity) error
	UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*Activity) error) (*Activity, error)
	// DeleteWithVersion hard-deletes under the version guard.
	DeleteWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error
}
