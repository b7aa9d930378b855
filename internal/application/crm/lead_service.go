package crm

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadService handles lead-related business operations, including the
// conversion pipeline that spawns an account, contact and opportunity.
type LeadService struct {
	leadRepo    crm.LeadRepository
	accountRepo crm.AccountRepository
	contactRepo crm.ContactRepository
	oppRepo     crm.OpportunityRepository
	txManager   shared.TxManager
}

// NewLeadService creates a new LeadService
func NewLeadService(
	leadRepo crm.LeadRepository,
	accountRepo crm.AccountRepository,
	contactRepo crm.ContactRepository,
	oppRepo crm.OpportunityRepository,
	txManager shared.TxManager,
) *LeadService {
	return &LeadService{
		leadRepo:    leadRepo,
		accountRepo: accountRepo,
		contactRepo: contactRepo,
		oppRepo:     oppRepo,
		txManager:   txManager,
	}
}

// Create creates a new lead
func (s *LeadService) Create(ctx context.Context, req CreateLeadRequest) (*LeadResponse, error) {
	lead, err := crm.NewLead(req.LastName, req.Company, req.OwnerID)
	if err != nil {
		return nil, err
	}
	lead.FirstName = req.FirstName
	lead.Title = req.Title
	lead.Email = req.Email
	lead.Phone = req.Phone
	lead.Website = req.Website
	lead.BillingAddress = req.BillingAddress
	lead.ShippingAddress = req.ShippingAddress
	lead.Source = crm.LeadSource(req.Source)
	lead.Industry = req.Industry

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, err
	}
	resp := ToLeadResponse(lead)
	return &resp, nil
}

// GetByID retrieves a lead, provided the actor owns it or is an admin
func (s *LeadService) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(lead); err != nil {
		return nil, err
	}
	resp := ToLeadResponse(lead)
	return &resp, nil
}

// List retrieves the leads visible to the actor: admins see every lead,
// other users only their own
func (s *LeadService) List(ctx context.Context, actor shared.Actor, filter ListFilter, status string) (*shared.Paginated[LeadResponse], error) {
	domainFilter := toDomainFilter(filter)
	domainFilter.ScopeToActor(actor)
	if status != "" {
		domainFilter.Filters["status"] = status
	}

	leads, total, err := s.leadRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]LeadResponse, len(leads))
	for i := range leads {
		items[i] = ToLeadResponse(&leads[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a version-guarded update to a lead. Converted leads reject
// every mutation; only the owner or an admin may modify a lead.
func (s *LeadService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateLeadRequest) (*LeadResponse, error) {
	lead, err := s.leadRepo.UpdateWithVersion(ctx, id, req.Version, func(l *crm.Lead) error {
		if err := actor.Authorize(l); err != nil {
			return err
		}
		if l.IsConverted() {
			return shared.NewBusinessRuleError("This lead has already been converted.")
		}
		if req.FirstName != nil {
			l.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			if *req.LastName == "" {
				return shared.NewDomainError("INVALID_NAME", "Last name cannot be empty")
			}
			l.LastName = *req.LastName
		}
		if req.Company != nil {
			if *req.Company == "" {
				return shared.NewDomainError("INVALID_COMPANY", "Company cannot be empty")
			}
			l.Company = *req.Company
		}
		if req.Title != nil {
			l.Title = *req.Title
		}
		if req.Email != nil {
			l.Email = *req.Email
		}
		if req.Phone != nil {
			l.Phone = *req.Phone
		}
		if req.Website != nil {
			l.Website = *req.Website
		}
		if req.BillingAddress != nil {
			l.BillingAddress = *req.BillingAddress
		}
		if req.ShippingAddress != nil {
			l.ShippingAddress = *req.ShippingAddress
		}
		if req.Status != nil {
			if err := l.AdvanceStatus(crm.LeadStatus(*req.Status)); err != nil {
				return err
			}
		}
		if req.Source != nil {
			l.Source = crm.LeadSource(*req.Source)
		}
		if req.Industry != nil {
			l.Industry = *req.Industry
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToLeadResponse(lead)
	return &resp, nil
}

// Delete soft-deletes a lead under the version guard. Only the owner or an
// admin may delete a lead.
func (s *LeadService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID, clientVersion int) error {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.Authorize(lead); err != nil {
		return err
	}
	return s.leadRepo.DeactivateWithVersion(ctx, id, clientVersion)
}

// Convert runs the lead conversion pipeline in one transaction: the account
// is found by company name or created, the contact is found by email
// (case-insensitively) or created, an opportunity is optionally created, and
// the lead is marked Converted and deactivated. Any failure rolls everything
// back. Only the owner or an admin may convert a lead.
func (s *LeadService) Convert(ctx context.Context, actor shared.Actor, id uuid.UUID, req ConvertLeadRequest) (*ConvertLeadResponse, error) {
	var result ConvertLeadResponse

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var source crm.Lead
		lead, err := s.leadRepo.UpdateWithVersion(ctx, id, req.Version, func(l *crm.Lead) error {
			if err := actor.Authorize(l); err != nil {
				return err
			}
			source = *l
			return l.MarkConverted()
		})
		if err != nil {
			return err
		}

		account, err := s.findOrCreateAccount(ctx, &source)
		if err != nil {
			return err
		}
		contact, err := s.findOrCreateContact(ctx, &source, account)
		if err != nil {
			return err
		}

		result.Lead = ToLeadResponse(lead)
		result.Account = ToAccountResponse(account)
		result.Contact = ToContactResponse(contact)

		if req.CreateOpportunity {
			if req.OpportunityName == "" {
				return shared.NewDomainError("INVALID_OPPORTUNITY_NAME",
					"Opportunity name is required when creating an opportunity during conversion")
			}
			opportunity, err := crm.NewOpportunity(account.ID, req.OpportunityName, source.OwnerID)
			if err != nil {
				return err
			}
			opportunity.CloseDate = req.OpportunityCloseDate
			if err := s.oppRepo.Save(ctx, opportunity); err != nil {
				return err
			}
			oppResp := ToOpportunityResponse(opportunity)
			result.Opportunity = &oppResp
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("lead converted",
		zap.String("lead_id", id.String()),
		zap.String("account_id", result.Account.ID.String()),
		zap.Bool("opportunity_created", result.Opportunity != nil))
	return &result, nil
}

func (s *LeadService) findOrCreateAccount(ctx context.Context, lead *crm.Lead) (*crm.Account, error) {
	account, err := s.accountRepo.FindByName(ctx, lead.Company)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	account, err = crm.NewAccount(lead.Company, crm.AccountTypeProspect, lead.OwnerID)
	if err != nil {
		return nil, err
	}
	account.Phone = lead.Phone
	account.Website = lead.Website
	account.BillingAddress = lead.BillingAddress
	account.ShippingAddress = lead.ShippingAddress
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *LeadService) findOrCreateContact(ctx context.Context, lead *crm.Lead, account *crm.Account) (*crm.Contact, error) {
	if lead.Email != "" {
		contact, err := s.contactRepo.FindByEmail(ctx, lead.Email)
		if err == nil {
			return contact, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	contact, err := crm.NewContact(account.ID, lead.FirstName, lead.LastName, lead.OwnerID)
	if err != nil {
		return nil, err
	}
	if lead.Email != "" {
		contact.SetEmail(lead.Email)
	}
	contact.Title = lead.Title
	contact.Phone = lead.Phone
	if err := s.contactRepo.Save(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}
