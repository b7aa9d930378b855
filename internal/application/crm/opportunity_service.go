package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/catalog"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OpportunityService handles opportunities and their nested line items
type OpportunityService struct {
	oppRepo     crm.OpportunityRepository
	accountRepo crm.AccountRepository
	productRepo catalog.ProductRepository
	txManager   shared.TxManager
}

// NewOpportunityService creates a new OpportunityService
func NewOpportunityService(
	oppRepo crm.OpportunityRepository,
	accountRepo crm.AccountRepository,
	productRepo catalog.ProductRepository,
	txManager shared.TxManager,
) *OpportunityService {
	return &OpportunityService{
		oppRepo:     oppRepo,
		accountRepo: accountRepo,
		productRepo: productRepo,
		txManager:   txManager,
	}
}

// Create creates a new opportunity on an existing account
func (s *OpportunityService) Create(ctx context.Context, req CreateOpportunityRequest) (*OpportunityResponse, error) {
	if _, err := s.accountRepo.FindByID(ctx, req.AccountID); err != nil {
		return nil, err
	}

	opportunity, err := crm.NewOpportunity(req.AccountID, req.Name, req.OwnerID)
	if err != nil {
		return nil, err
	}
	opportunity.CloseDate = req.CloseDate
	opportunity.NextStep = req.NextStep
	opportunity.Description = req.Description

	if err := s.oppRepo.Save(ctx, opportunity); err != nil {
		return nil, err
	}
	resp := ToOpportunityResponse(opportunity)
	return &resp, nil
}

// GetByID retrieves an opportunity with its line items, provided the actor
// owns it or is an admin
func (s *OpportunityService) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*OpportunityResponse, error) {
	opportunity, err := s.oppRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(opportunity); err != nil {
		return nil, err
	}
	resp := ToOpportunityResponse(opportunity)
	return &resp, nil
}

// List retrieves the opportunities visible to the actor with filtering and
// pagination
func (s *OpportunityService) List(ctx context.Context, actor shared.Actor, filter ListFilter, stage string, accountID *uuid.UUID) (*shared.Paginated[OpportunityResponse], error) {
	domainFilter := toDomainFilter(filter)
	domainFilter.ScopeToActor(actor)
	if stage != "" {
		domainFilter.Filters["stage"] = stage
	}
	if accountID != nil {
		domainFilter.Filters["account_id"] = *accountID
	}

	opportunities, total, err := s.oppRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]OpportunityResponse, len(opportunities))
	for i := range opportunities {
		items[i] = ToOpportunityResponse(&opportunities[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a version-guarded update to an opportunity. Only the owner
// or an admin may modify it.
func (s *OpportunityService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateOpportunityRequest) (*OpportunityResponse, error) {
	opportunity, err := s.oppRepo.UpdateWithVersion(ctx, id, req.Version, func(o *crm.Opportunity) error {
		if err := actor.Authorize(o); err != nil {
			return err
		}
		if req.Name != nil {
			if *req.Name == "" {
				return shared.NewDomainError("INVALID_NAME", "Opportunity name cannot be empty")
			}
			o.Name = *req.Name
		}
		if req.Stage != nil {
			if err := o.ChangeStage(crm.OpportunityStage(*req.Stage)); err != nil {
				return err
			}
		}
		if req.CloseDate != nil {
			o.CloseDate = req.CloseDate
		}
		if req.NextStep != nil {
			o.NextStep = *req.NextStep
		}
		if req.Description != nil {
			o.Description = *req.Description
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, actor, opportunity.ID)
}

// Delete soft-deletes an opportunity under the version guard. Only the owner
// or an admin may delete it.
func (s *OpportunityService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID, clientVersion int) error {
	opportunity, err := s.oppRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.Authorize(opportunity); err != nil {
		return err
	}
	return s.oppRepo.DeactivateWithVersion(ctx, id, clientVersion)
}

// AddLineItem adds a product position to an opportunity. The price defaults
// to the product's standard list price and is frozen on the item. Line item
// mutations follow the ownership of the parent opportunity.
func (s *OpportunityService) AddLineItem(ctx context.Context, actor shared.Actor, opportunityID uuid.UUID, req AddLineItemRequest) (*LineItemResponse, error) {
	opportunity, err := s.oppRepo.FindByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(opportunity); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	price := product.StandardListPrice
	if req.Price != nil {
		price = *req.Price
	}

	item, err := crm.NewOpportunityLineItem(opportunity.ID, product.ID, req.Quantity, price)
	if err != nil {
		return nil, err
	}
	if err := s.oppRepo.SaveLineItem(ctx, item); err != nil {
		return nil, err
	}
	resp := ToLineItemResponse(item)
	return &resp, nil
}

// UpdateLineItem applies a version-guarded update to a line item
func (s *OpportunityService) UpdateLineItem(ctx context.Context, actor shared.Actor, opportunityID, itemID uuid.UUID, req UpdateLineItemRequest) (*LineItemResponse, error) {
	opportunity, err := s.oppRepo.FindByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(opportunity); err != nil {
		return nil, err
	}
	if _, err := s.oppRepo.FindLineItem(ctx, opportunityID, itemID); err != nil {
		return nil, err
	}

	item, err := s.oppRepo.UpdateLineItemWithVersion(ctx, itemID, req.Version, func(i *crm.OpportunityLineItem) error {
		if req.Quantity != nil {
			if err := i.UpdateQuantity(*req.Quantity); err != nil {
				return err
			}
		}
		if req.Price != nil {
			if req.Price.IsNegative() {
				return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
			}
			i.Price = *req.Price
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToLineItemResponse(item)
	return &resp, nil
}

// DeleteLineItem hard-deletes a line item under the version guard
func (s *OpportunityService) DeleteLineItem(ctx context.Context, actor shared.Actor, opportunityID, itemID uuid.UUID, clientVersion int) error {
	opportunity, err := s.oppRepo.FindByID(ctx, opportunityID)
	if err != nil {
		return err
	}
	if err := actor.Authorize(opportunity); err != nil {
		return err
	}
	if _, err := s.oppRepo.FindLineItem(ctx, opportunityID, itemID); err != nil {
		return err
	}
	return s.oppRepo.DeleteLineItemWithVersion(ctx, itemID, clientVersion)
}
