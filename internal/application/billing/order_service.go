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

// OrderService handles orders and the Opportunity→Order generation pipeline
type OrderService struct {
	orderRepo   billing.OrderRepository
	oppRepo     crm.OpportunityRepository
	productRepo catalog.ProductRepository
	txManager   shared.TxManager
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo billing.OrderRepository,
	oppRepo crm.OpportunityRepository,
	productRepo catalog.ProductRepository,
	txManager shared.TxManager,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		oppRepo:     oppRepo,
		productRepo: productRepo,
		txManager:   txManager,
	}
}

// GenerateFromOpportunity derives an order from a closed-won opportunity. Only
// non-retainer line items flow onto the order; prices are frozen from the
// opportunity line items. At most one order may exist per opportunity.
func (s *OrderService) GenerateFromOpportunity(ctx context.Context, req GenerateOrderRequest) (*OrderResponse, error) {
	var order *billing.Order

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		opportunity, err := s.oppRepo.FindByID(ctx, req.OpportunityID)
		if err != nil {
			return err
		}
		if !opportunity.IsClosedWon() {
			return shared.NewBusinessRuleError("Orders can only be generated from opportunities in the closed_won stage.")
		}

		exists, err := s.orderRepo.ExistsForOpportunity(ctx, opportunity.ID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewBusinessRuleError("An order has already been generated for this opportunity.")
		}

		retainer, err := s.retainerLookup(ctx, opportunity.LineItems)
		if err != nil {
			return err
		}

		order, err = billing.NewOrder(opportunity.AccountID, opportunity.ID, opportunity.OwnerID)
		if err != nil {
			return err
		}
		for i := range opportunity.LineItems {
			item := &opportunity.LineItems[i]
			if retainer[item.ProductID] {
				continue
			}
			if err := order.AddLineItem(item.ProductID, item.Quantity, item.Price); err != nil {
				return err
			}
		}
		if len(order.LineItems) == 0 {
			return shared.NewBusinessRuleError("The opportunity has no one-time products to place on an order.")
		}
		return s.orderRepo.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("order generated",
		zap.String("order_id", order.ID.String()),
		zap.String("opportunity_id", req.OpportunityID.String()))
	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetByID retrieves an order with its line items, provided the actor owns it
// or is an admin
func (s *OrderService) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List retrieves the orders visible to the actor with filtering and
// pagination
func (s *OrderService) List(ctx context.Context, actor shared.Actor, filter ListFilter, status string, accountID *uuid.UUID) (*shared.Paginated[OrderResponse], error) {
	domainFilter := toDomainFilter(filter)
	domainFilter.ScopeToActor(actor)
	if status != "" {
		domainFilter.Filters["status"] = status
	}
	if accountID != nil {
		domainFilter.Filters["account_id"] = *accountID
	}

	orders, total, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a version-guarded update to an order. Only the owner or an
// admin may modify it.
func (s *OrderService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.UpdateWithVersion(ctx, id, req.Version, func(o *billing.Order) error {
		if err := actor.Authorize(o); err != nil {
			return err
		}
		if req.Status != nil {
			if err := o.ChangeStatus(billing.SettlementStatus(*req.Status)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, actor, order.ID)
}

// Delete soft-deletes an order under the version guard. Only the owner or an
// admin may delete it.
func (s *OrderService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID, clientVersion int) error {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.Authorize(order); err != nil {
		return err
	}
	return s.orderRepo.DeactivateWithVersion(ctx, id, clientVersion)
}

// retainerLookup maps each referenced product ID to its retainer flag
func (s *OrderService) retainerLookup(ctx context.Context, items []crm.OpportunityLineItem) (map[uuid.UUID]bool, error) {
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
