package billing

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPaymentTermDays = 30

// InvoiceService handles invoices, the Order→Invoice and Contract→Invoice
// generation pipelines, and payment logging. Invoices carry no owner of
// their own; access follows the owner of the billed account.
type InvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	orderRepo    billing.OrderRepository
	contractRepo billing.ContractRepository
	paymentRepo  billing.PaymentRepository
	accountRepo  crm.AccountRepository
	txManager    shared.TxManager
	now          func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	orderRepo billing.OrderRepository,
	contractRepo billing.ContractRepository,
	paymentRepo billing.PaymentRepository,
	accountRepo crm.AccountRepository,
	txManager shared.TxManager,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		orderRepo:    orderRepo,
		contractRepo: contractRepo,
		paymentRepo:  paymentRepo,
		accountRepo:  accountRepo,
		txManager:    txManager,
		now:          time.Now,
	}
}

// authorizeViaAccount checks the actor against the owner of the billed
// account. An invoice without an account is open to any user.
func (s *InvoiceService) authorizeViaAccount(ctx context.Context, actor shared.Actor, accountID *uuid.UUID) error {
	if actor.Admin || accountID == nil {
		return nil
	}
	account, err := s.accountRepo.FindByID(ctx, *accountID)
	if err != nil {
		return err
	}
	return actor.Authorize(account)
}

// GenerateFromOrder derives an invoice from an order, copying its line items
// with their frozen prices. At most one invoice may exist per order.
func (s *InvoiceService) GenerateFromOrder(ctx context.Context, req GenerateInvoiceFromOrderRequest) (*InvoiceResponse, error) {
	var invoice *billing.Invoice

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.FindByID(ctx, req.OrderID)
		if err != nil {
			return err
		}

		exists, err := s.invoiceRepo.ExistsForOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewBusinessRuleError("An invoice has already been generated for this order.")
		}

		number, err := s.invoiceRepo.NextInvoiceNumber(ctx)
		if err != nil {
			return err
		}

		issueDate := s.now()
		invoice, err = billing.NewInvoice(number, issueDate, issueDate.AddDate(0, 0, defaultPaymentTermDays))
		if err != nil {
			return err
		}
		accountID := order.AccountID
		orderID := order.ID
		invoice.AccountID = &accountID
		invoice.OrderID = &orderID

		for i := range order.LineItems {
			item := &order.LineItems[i]
			if err := invoice.AddLineItem(item.ProductID, item.Quantity, item.PriceAtPurchase); err != nil {
				return err
			}
		}
		return s.invoiceRepo.Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("invoice generated from order",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("order_id", req.OrderID.String()))
	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// GenerateFromContract derives an invoice for the contract's current billing
// window, copying its recurring line items. At most one invoice may exist per
// contract per window. The due date defaults to the last day of the window,
// moved up to the issue date when that day has already begun; a caller may
// supply an explicit due date as long as it is not before the issue date.
func (s *InvoiceService) GenerateFromContract(ctx context.Context, req GenerateInvoiceFromContractRequest) (*InvoiceResponse, error) {
	var invoice *billing.Invoice

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		contract, err := s.contractRepo.FindByID(ctx, req.ContractID)
		if err != nil {
			return err
		}

		issueDate := s.now()
		if req.DueDate != nil && req.DueDate.Before(issueDate) {
			return shared.NewBusinessRuleError("Invoice due date cannot be before the issue date.")
		}
		windowStart, windowEnd := contract.CurrentBillingWindow(issueDate)

		exists, err := s.invoiceRepo.ExistsForContractInWindow(ctx, contract.ID, windowStart, windowEnd)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewBusinessRuleError("An invoice has already been generated for this contract in the current billing window.")
		}

		number, err := s.invoiceRepo.NextInvoiceNumber(ctx)
		if err != nil {
			return err
		}

		// The window end is exclusive, so the default due date is the
		// last day of the window.
		dueDate := windowEnd.AddDate(0, 0, -1)
		if dueDate.Before(issueDate) {
			dueDate = issueDate
		}
		if req.DueDate != nil {
			dueDate = *req.DueDate
		}
		invoice, err = billing.NewInvoice(number, issueDate, dueDate)
		if err != nil {
			return err
		}
		accountID := contract.AccountID
		contractID := contract.ID
		invoice.AccountID = &accountID
		invoice.ContractID = &contractID

		for i := range contract.LineItems {
			item := &contract.LineItems[i]
			if err := invoice.AddLineItem(item.ProductID, item.Quantity, item.PricePerCycle); err != nil {
				return err
			}
		}
		return s.invoiceRepo.Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("invoice generated from contract",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("contract_id", req.ContractID.String()))
	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// LogPayment records a payment against an invoice. The invoice balance
// adjustment and the payment row commit in one transaction; a stale invoice
// version rejects the whole operation. Only the owner of the billed account
// or an admin may log a payment.
func (s *InvoiceService) LogPayment(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID, req LogPaymentRequest) (*PaymentResponse, error) {
	var payment *billing.Payment

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		invoice, err := s.invoiceRepo.UpdateWithVersion(ctx, invoiceID, req.Version, func(inv *billing.Invoice) error {
			if err := s.authorizeViaAccount(ctx, actor, inv.AccountID); err != nil {
				return err
			}
			return inv.ApplyPayment(req.Amount)
		})
		if err != nil {
			return err
		}

		paymentDate := s.now()
		if req.PaymentDate != nil {
			paymentDate = *req.PaymentDate
		}
		if invoice.AccountID == nil {
			return shared.NewDomainError("INVALID_INVOICE", "Invoice has no account")
		}
		payment, err = billing.NewPayment(invoice.ID, *invoice.AccountID, req.Amount, billing.PaymentMethod(req.Method), paymentDate)
		if err != nil {
			return err
		}
		payment.TransactionID = req.TransactionID
		payment.Notes = req.Notes
		if req.Status != nil {
			payment.Status = billing.PaymentStatus(*req.Status)
		} else {
			payment.MarkCompleted()
		}
		return s.paymentRepo.Save(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("payment logged",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", invoiceID.String()),
		zap.String("amount", payment.Amount.String()))
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// GetByID retrieves an invoice with its line items, provided the actor owns
// the billed account or is an admin
func (s *InvoiceService) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeViaAccount(ctx, actor, invoice.AccountID); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// List retrieves the invoices visible to the actor with filtering and
// pagination
func (s *InvoiceService) List(ctx context.Context, actor shared.Actor, filter ListFilter, status string, accountID *uuid.UUID) (*shared.Paginated[InvoiceResponse], error) {
	domainFilter := toDomainFilter(filter)
	domainFilter.ScopeToActor(actor)
	if status != "" {
		domainFilter.Filters["status"] = status
	}
	if accountID != nil {
		domainFilter.Filters["account_id"] = *accountID
	}

	invoices, total, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		items[i] = ToInvoiceResponse(&invoices[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a version-guarded update to an invoice. Only the owner of
// the billed account or an admin may modify it.
func (s *InvoiceService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.UpdateWithVersion(ctx, id, req.Version, func(inv *billing.Invoice) error {
		if err := s.authorizeViaAccount(ctx, actor, inv.AccountID); err != nil {
			return err
		}
		if req.DueDate != nil {
			if req.DueDate.Before(inv.IssueDate) {
				return shared.NewDomainError("INVALID_DATES", "Due date cannot be before issue date")
			}
			inv.DueDate = *req.DueDate
		}
		if req.Notes != nil {
			inv.Notes = *req.Notes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, actor, invoice.ID)
}

// Delete soft-deletes an invoice under the version guard. Only the owner of
// the billed account or an admin may delete it.
func (s *InvoiceService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID, clientVersion int) error {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeViaAccount(ctx, actor, invoice.AccountID); err != nil {
		return err
	}
	return s.invoiceRepo.DeactivateWithVersion(ctx, id, clientVersion)
}
