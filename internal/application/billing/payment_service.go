package billing

import (
	"context"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentService handles payment queries and corrections. Changing a
// payment's status or deleting it does not readjust the invoice balance;
// corrections are made on the invoice itself. Payments carry no owner of
// their own; access follows the owner of the paying account.
type PaymentService struct {
	paymentRepo billing.PaymentRepository
	accountRepo crm.AccountRepository
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo billing.PaymentRepository, accountRepo crm.AccountRepository) *PaymentService {
	return &PaymentService{paymentRepo: paymentRepo, accountRepo: accountRepo}
}

// authorize checks the actor against the owner of the paying account
func (s *PaymentService) authorize(ctx context.Context, actor shared.Actor, accountID uuid.UUID) error {
	if actor.Admin {
		return nil
	}
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	return actor.Authorize(account)
}

// GetByID retrieves a payment, provided the actor owns the paying account or
// is an admin
func (s *PaymentService) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, payment.AccountID); err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// ListByInvoice retrieves all payments logged against an invoice, oldest
// first
func (s *PaymentService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	items := make([]PaymentResponse, len(payments))
	for i := range payments {
		items[i] = ToPaymentResponse(&payments[i])
	}
	return items, nil
}

// List retrieves the payments visible to the actor with filtering and
// pagination
func (s *PaymentService) List(ctx context.Context, actor shared.Actor, filter ListFilter, status string, accountID *uuid.UUID) (*shared.Paginated[PaymentResponse], error) {
	domainFilter := toDomainFilter(filter)
	domainFilter.ScopeToActor(actor)
	if status != "" {
		domainFilter.Filters["status"] = status
	}
	if accountID != nil {
		domainFilter.Filters["account_id"] = *accountID
	}

	payments, total, err := s.paymentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]PaymentResponse, len(payments))
	for i := range payments {
		items[i] = ToPaymentResponse(&payments[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a version-guarded update to a payment. Only the owner of
// the paying account or an admin may modify it.
func (s *PaymentService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.UpdateWithVersion(ctx, id, req.Version, func(p *billing.Payment) error {
		if err := s.authorize(ctx, actor, p.AccountID); err != nil {
			return err
		}
		if req.Status != nil {
			status := billing.PaymentStatus(*req.Status)
			if !status.IsValid() {
				return shared.NewDomainError("INVALID_STATUS", "Invalid payment status")
			}
			p.Status = status
		}
		if req.TransactionID != nil {
			p.TransactionID = *req.TransactionID
		}
		if req.Notes != nil {
			p.Notes = *req.Notes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// Delete hard-deletes a payment under the version guard. Only the owner of
// the paying account or an admin may delete it.
func (s *PaymentService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID, clientVersion int) error {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, payment.AccountID); err != nil {
		return err
	}
	return s.paymentRepo.DeleteWithVersion(ctx, id, clientVersion)
}
