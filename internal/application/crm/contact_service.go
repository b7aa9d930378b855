package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactService handles contact-related business operations
type ContactService struct {
	contactRepo crm.ContactRepository
	accountRepo crm.AccountRepository
}

// NewContactService creates a new ContactService
func NewContactService(contactRepo crm.ContactRepository, accountRepo crm.AccountRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo, accountRepo: accountRepo}
}

// Create creates a new contact under an existing account
func (s *ContactService) Create(ctx context.Context, req CreateContactRequest) (*ContactResponse, error) {
	if _, err := s.accountRepo.FindByID(ctx, req.AccountID); err != nil {
		return nil, err
	}

	contact, err := crm.NewContact(req.AccountID, req.FirstName, req.LastName, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if req.Email != "" {
		contact.SetEmail(req.Email)
	}
	contact.Title = req.Title
	contact.Phone = req.Phone
	contact.Description = req.Description
	if req.ReportsToID != nil {
		if err := contact.SetReportsTo(*req.ReportsToID); err != nil {
			return nil, err
		}
	}

	if err := s.contactRepo.Save(ctx, contact); err != nil {
		return nil, err
	}
	resp := ToContactResponse(contact)
	return &resp, nil
}

// GetByID retrieves a contact, provided the actor owns it or is an admin
func (s *ContactService) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*ContactResponse, error) {
	contact, err := s.contactRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(contact); err != nil {
		return nil, err
	}
	resp := ToContactResponse(contact)
	return &resp, nil
}

// List retrieves the contacts visible to the actor with filtering and
// pagination
func (s *ContactService) List(ctx context.Context, actor shared.Actor, filter ListFilter, accountID *uuid.UUID) (*shared.Paginated[ContactResponse], error) {
	domainFilter := toDomainFilter(filter)
	domainFilter.ScopeToActor(actor)

	var (
		contacts []crm.Contact
		total    int64
		err      error
	)
	if accountID != nil {
		contacts, total, err = s.contactRepo.FindByAccount(ctx, *accountID, domainFilter)
	} else {
		contacts, total, err = s.contactRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, err
	}

	items := make([]ContactResponse, len(contacts))
	for i := range contacts {
		items[i] = ToContactResponse(&contacts[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a version-guarded update to a contact. Only the owner or an
// admin may modify an owned contact.
func (s *ContactService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateContactRequest) (*ContactResponse, error) {
	contact, err := s.contactRepo.UpdateWithVersion(ctx, id, req.Version, func(c *crm.Contact) error {
		if err := actor.Authorize(c); err != nil {
			return err
		}
		if req.FirstName != nil {
			c.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			if *req.LastName == "" {
				return shared.NewDomainError("INVALID_NAME", "Last name cannot be empty")
			}
			c.LastName = *req.LastName
		}
		if req.Title != nil {
			c.Title = *req.Title
		}
		if req.Email != nil {
			c.SetEmail(*req.Email)
		}
		if req.Phone != nil {
			c.Phone = *req.Phone
		}
		if req.Description != nil {
			c.Description = *req.Description
		}
		if req.ReportsToID != nil {
			if err := c.SetReportsTo(*req.ReportsToID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToContactResponse(contact)
	return &resp, nil
}

// Delete soft-deletes a contact under the version guard. Only the owner or
// an admin may delete an owned contact.
func (s *ContactService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID, clientVersion int) error {
	contact, err := s.contactRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.Authorize(contact); err != nil {
		return err
	}
	return s.contactRepo.DeactivateWithVersion(ctx, id, clientVersion)
}
