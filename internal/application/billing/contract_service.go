package billing

import (
	"context"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/catalog"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContractService handles contracts and the Opportunity→Contract generation
// pipeline
type ContractService struct {
	contractRepo billing.ContractRepository
	oppRepo      crm.OpportunityRepository
	productRepo  catalog.ProductRepository
	txManager    shared.TxManager
}

// NewContractService creates a new ContractService
func NewContractService(
	contractRepo billing.ContractRepository,
	oppRepo crm.OpportunityRepository,
	productRepo catalog.ProductRepository,
	txManager shared.TxManager,
) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		oppRepo:      oppRepo,
		productRepo:  productRepo,
		txManager:    txManager,
	}
}

// GenerateFromOpportunity derives a contract from a closed-won opportunity.
// Only retainer line items flow onto the contract; prices are frozen from the
// opportunity line items. At most one contract may exist per opportunity.
func (s *ContractService) GenerateFromOpportunity(ctx context.Context, req GenerateContractRequest) (*ContractResponse, error) {
	var contract *billing.Contract

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		opportunity, err := s.oppRepo.FindByID(ctx, req.OpportunityID)
		if err != nil {
			return err
		}
		if !opportunity.IsClosedWon() {
			return shared.NewBusinessRuleError("Contracts can only be generated from opportunities in the closed_won stage.")
		}

		exists, err := s.contractRepo.ExistsForOpportunity(ctx, opportunity.ID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewBusinessRuleError("A contract has already been generated for this opportunity.")
		}

		retainer, err := s.retainerLookup(ctx, opportunity.LineItems)
		if err != nil {
			return err
		}

		contract, err = billing.NewContract(
			opportunity.AccountID,
			opportunity.ID,
			req.StartDate,
			req.EndDate,
			billing.BillingCycle(req.BillingCycle),
			opportunity.OwnerID,
		)
		if err != nil {
			return err
		}
		for i := range opportunity.LineItems {
			item := &opportunity.LineItems[i]
			if !retainer[item.ProductID] {
				continue
			}
			if err := contract.AddLineItem(item.ProductID, item.Quantity, item.Price); err != nil {
				return err
			}
		}
		if len(contract.LineItems) == 0 {
			return shared.NewBusinessRuleError("The opportunity has no retainer products to place on a contract.")
		}
		return s.contractRepo.Save(ctx, contract)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("contract generated",
		zap.String("contract_id", contract.ID.String()),
		zap.String("opportunity_id", req.OpportunityID.String()))
	resp := ToContractResponse(contract)
	return &resp, nil
}

// GetByID retrieves a contract with its line items, provided the actor owns
// it or is an admin
func (s *ContractService) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*ContractResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(contract); err != nil {
		return nil, err
	}
	resp := ToContractResponse(contract)
	return &resp, nil
}

// List retrieves the contracts visible to the actor with filtering and
// pagination
func (s *ContractService) List(ctx context.Context, actor shared.Actor, filter ListFilter, status string, accountID *uuid.UUID) (*shared.Paginated[ContractResponse], error) {
	domainFilter := toDomainFilter(filter)
	domainFilter.ScopeToActor(actor)
	if status != "" {
		domainFilter.Filters["status"] = status
	}
	if accountID != nil {
		domainFilter.Filters["account_id"] = *accountID
	}

	contracts, total, err := s.contractRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]ContractResponse, len(contracts))
	for i := range contracts {
		items[i] = ToContractResponse(&contracts[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a version-guarded update to a contract. Only the owner or
// an admin may modify it.
func (s *ContractService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateContractRequest) (*ContractResponse, error) {
	contract, err := s.contractRepo.UpdateWithVersion(ctx, id, req.Version, func(c *billing.Contract) error {
		if err := actor.Authorize(c); err != nil {
			return err
		}
		if req.Status != nil {
			if err := c.ChangeStatus(billing.SettlementStatus(*req.Status)); err != nil {
				return err
			}
		}
		if req.StartDate != nil {
			c.StartDate = *req.StartDate
		}
		if req.EndDate != nil {
			c.EndDate = *req.EndDate
		}
		if !c.EndDate.After(c.StartDate) {
			return shared.NewDomainError("INVALID_DATES", "Contract end date must be after start date")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, actor, contract.ID)
}

// Delete soft-deletes a contract under the version guard. Only the owner or
// an admin may delete it.
func (s *ContractService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID, clientVersion int) error {
	contract, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.Authorize(contract); err != nil {
		return err
	}
	return s.contractRepo.DeactivateWithVersion(ctx, id, clientVersion)
}

func (s *ContractService) retainerLookup(ctx context.Context, items []crm.OpportunityLineItem) (map[uuid.UUID]bool, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for i := range items {
		if _, ok := seen[items[i].ProductID]; ok {
			continue
		}
		seen[items[i].ProductID] = struct{}{}
		ids = append(ids, items[i].ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	lookup := make(map[uuid.UUID]bool, len(products))
	for i := range products {
		lookup[products[i].ID] = products[i].IsRetainerProduct
	}
	return lookup, nil
}
