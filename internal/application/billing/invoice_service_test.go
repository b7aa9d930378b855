package billing

import (
	"context"
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type invoiceServiceFixture struct {
	service      *InvoiceService
	invoiceRepo  *MockInvoiceRepository
	orderRepo    *MockOrderRepository
	contractRepo *MockContractRepository
	paymentRepo  *MockPaymentRepository
	accountRepo  *MockAccountRepository
}

func newInvoiceServiceFixture(now time.Time) *invoiceServiceFixture {
	invoiceRepo := new(MockInvoiceRepository)
	orderRepo := new(MockOrderRepository)
	contractRepo := new(MockContractRepository)
	paymentRepo := new(MockPaymentRepository)
	accountRepo := new(MockAccountRepository)
	service := NewInvoiceService(invoiceRepo, orderRepo, contractRepo, paymentRepo, accountRepo, stubTxManager{})
	service.now = func() time.Time { return now }
	return &invoiceServiceFixture{
		service:      service,
		invoiceRepo:  invoiceRepo,
		orderRepo:    orderRepo,
		contractRepo: contractRepo,
		paymentRepo:  paymentRepo,
		accountRepo:  accountRepo,
	}
}

func adminActor() shared.Actor {
	return shared.Actor{UserID: uuid.New(), Admin: true}
}

func TestInvoiceServiceGenerateFromOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	t.Run("copies order line items with frozen prices", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		order, err := billing.NewOrder(uuid.New(), uuid.New(), nil)
		require.NoError(t, err)
		productID := uuid.New()
		require.NoError(t, order.AddLineItem(productID, 2, decimal.NewFromInt(500)))

		f.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		f.invoiceRepo.On("ExistsForOrder", ctx, order.ID).Return(false, nil)
		f.invoiceRepo.On("NextInvoiceNumber", ctx).Return("INV-2026-0042", nil)
		f.invoiceRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := f.service.GenerateFromOrder(ctx, GenerateInvoiceFromOrderRequest{OrderID: order.ID})
		require.NoError(t, err)

		assert.Equal(t, "INV-2026-0042", resp.InvoiceNumber)
		assert.Equal(t, now, resp.IssueDate)
		assert.Equal(t, now.AddDate(0, 0, 30), resp.DueDate)
		require.NotNil(t, resp.AccountID)
		assert.Equal(t, order.AccountID, *resp.AccountID)
		require.NotNil(t, resp.OrderID)
		assert.Equal(t, order.ID, *resp.OrderID)
		require.Len(t, resp.LineItems, 1)
		assert.Equal(t, productID, resp.LineItems[0].ProductID)
		assert.True(t, resp.BalanceDue.Equal(decimal.NewFromInt(1000)))
		f.invoiceRepo.AssertExpectations(t)
	})

	t.Run("rejects second invoice for the same order", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		order, err := billing.NewOrder(uuid.New(), uuid.New(), nil)
		require.NoError(t, err)

		f.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		f.invoiceRepo.On("ExistsForOrder", ctx, order.ID).Return(true, nil)

		_, err = f.service.GenerateFromOrder(ctx, GenerateInvoiceFromOrderRequest{OrderID: order.ID})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already been generated")
		f.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestInvoiceServiceGenerateFromContract(t *testing.T) {
	ctx := context.Background()

	newContract := func(t *testing.T, cycle billing.BillingCycle) *billing.Contract {
		t.Helper()
		contract, err := billing.NewContract(uuid.New(), uuid.New(),
			time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
			cycle, nil)
		require.NoError(t, err)
		require.NoError(t, contract.AddLineItem(uuid.New(), 1, decimal.NewFromInt(1000)))
		return contract
	}

	t.Run("bills the current monthly window", func(t *testing.T) {
		now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
		f := newInvoiceServiceFixture(now)
		contract := newContract(t, billing.BillingCycleMonthly)

		windowStart := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
		windowEnd := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

		f.contractRepo.On("FindByID", ctx, contract.ID).Return(contract, nil)
		f.invoiceRepo.On("ExistsForContractInWindow", ctx, contract.ID, windowStart, windowEnd).Return(false, nil)
		f.invoiceRepo.On("NextInvoiceNumber", ctx).Return("INV-2026-0043", nil)
		f.invoiceRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := f.service.GenerateFromContract(ctx, GenerateInvoiceFromContractRequest{ContractID: contract.ID})
		require.NoError(t, err)

		assert.Equal(t, time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), resp.DueDate,
			"due date defaults to the last day of the window")
		require.NotNil(t, resp.ContractID)
		assert.Equal(t, contract.ID, *resp.ContractID)
		assert.True(t, resp.BalanceDue.Equal(decimal.NewFromInt(1000)))
		f.invoiceRepo.AssertExpectations(t)
	})

	t.Run("rejects second invoice in the same billing window", func(t *testing.T) {
		now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
		f := newInvoiceServiceFixture(now)
		contract := newContract(t, billing.BillingCycleMonthly)

		f.contractRepo.On("FindByID", ctx, contract.ID).Return(contract, nil)
		f.invoiceRepo.On("ExistsForContractInWindow", ctx, contract.ID, mock.Anything, mock.Anything).Return(true, nil)

		_, err := f.service.GenerateFromContract(ctx, GenerateInvoiceFromContractRequest{ContractID: contract.ID})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "current billing window")
		f.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("issues on the last day of the window without escaping the idempotency check", func(t *testing.T) {
		// The issue timestamp carries a time-of-day, so the window passed to
		// the existence check must reach past it.
		now := time.Date(2026, time.March, 31, 15, 0, 0, 0, time.UTC)
		f := newInvoiceServiceFixture(now)
		contract := newContract(t, billing.BillingCycleMonthly)

		windowStart := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
		windowEnd := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

		f.contractRepo.On("FindByID", ctx, contract.ID).Return(contract, nil)
		f.invoiceRepo.On("ExistsForContractInWindow", ctx, contract.ID, windowStart, windowEnd).Return(false, nil)
		f.invoiceRepo.On("NextInvoiceNumber", ctx).Return("INV-2026-0044", nil)
		f.invoiceRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := f.service.GenerateFromContract(ctx, GenerateInvoiceFromContractRequest{ContractID: contract.ID})
		require.NoError(t, err)
		assert.True(t, now.Before(windowEnd), "issue timestamp must fall inside the window")
		assert.Equal(t, now, resp.DueDate, "due date must never be in the past")
		f.invoiceRepo.AssertExpectations(t)
	})

	t.Run("honors a requested due date", func(t *testing.T) {
		now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
		f := newInvoiceServiceFixture(now)
		contract := newContract(t, billing.BillingCycleMonthly)
		dueDate := time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC)

		f.contractRepo.On("FindByID", ctx, contract.ID).Return(contract, nil)
		f.invoiceRepo.On("ExistsForContractInWindow", ctx, contract.ID, mock.Anything, mock.Anything).Return(false, nil)
		f.invoiceRepo.On("NextInvoiceNumber", ctx).Return("INV-2026-0045", nil)
		f.invoiceRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := f.service.GenerateFromContract(ctx, GenerateInvoiceFromContractRequest{
			ContractID: contract.ID,
			DueDate:    &dueDate,
		})
		require.NoError(t, err)
		assert.Equal(t, dueDate, resp.DueDate)
	})

	t.Run("rejects a requested due date before the issue date", func(t *testing.T) {
		now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
		f := newInvoiceServiceFixture(now)
		contract := newContract(t, billing.BillingCycleMonthly)
		dueDate := now.AddDate(0, 0, -1)

		f.contractRepo.On("FindByID", ctx, contract.ID).Return(contract, nil)
		f.invoiceRepo.On("ExistsForContractInWindow", ctx, contract.ID, mock.Anything, mock.Anything).Return(false, nil)

		_, err := f.service.GenerateFromContract(ctx, GenerateInvoiceFromContractRequest{
			ContractID: contract.ID,
			DueDate:    &dueDate,
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "BUSINESS_RULE", domainErr.Code)
		f.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestInvoiceServiceLogPayment(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)

	newOpenInvoice := func(t *testing.T) *billing.Invoice {
		t.Helper()
		invoice, err := billing.NewInvoice("INV-2026-0050", now.AddDate(0, 0, -5), now.AddDate(0, 0, 25))
		require.NoError(t, err)
		require.NoError(t, invoice.AddLineItem(uuid.New(), 1, decimal.NewFromInt(100)))
		accountID := uuid.New()
		invoice.AccountID = &accountID
		return invoice
	}

	t.Run("settles the invoice and records a completed payment", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		invoice := newOpenInvoice(t)

		f.invoiceRepo.On("UpdateWithVersion", ctx, invoice.ID, 1).Return(invoice, nil)
		var saved *billing.Payment
		f.paymentRepo.On("Save", ctx, mock.Anything).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*billing.Payment)
		}).Return(nil)

		resp, err := f.service.LogPayment(ctx, adminActor(), invoice.ID, LogPaymentRequest{
			Version: 1,
			Amount:  decimal.NewFromInt(100),
			Method:  string(billing.PaymentMethodWire),
		})
		require.NoError(t, err)

		assert.True(t, invoice.BalanceDue.IsZero())
		assert.Equal(t, billing.StatusPaidInFull, invoice.Status)
		require.NotNil(t, saved)
		assert.Equal(t, billing.PaymentStatusCompleted, saved.Status)
		assert.Equal(t, *invoice.AccountID, saved.AccountID)
		assert.Equal(t, now, saved.PaymentDate)
		assert.Equal(t, string(billing.PaymentStatusCompleted), resp.Status)
	})

	t.Run("keeps an explicitly requested status", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		invoice := newOpenInvoice(t)
		status := string(billing.PaymentStatusPending)

		f.invoiceRepo.On("UpdateWithVersion", ctx, invoice.ID, 1).Return(invoice, nil)
		f.paymentRepo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := f.service.LogPayment(ctx, adminActor(), invoice.ID, LogPaymentRequest{
			Version: 1,
			Amount:  decimal.NewFromInt(40),
			Method:  string(billing.PaymentMethodCash),
			Status:  &status,
		})
		require.NoError(t, err)
		assert.Equal(t, status, resp.Status)
		assert.Equal(t, billing.StatusPartiallyPaid, invoice.Status)
	})

	t.Run("rejects payment against a fully paid invoice", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		invoice := newOpenInvoice(t)
		require.NoError(t, invoice.ApplyPayment(decimal.NewFromInt(100)))

		f.invoiceRepo.On("UpdateWithVersion", ctx, invoice.ID, 2).Return(invoice, nil)

		_, err := f.service.LogPayment(ctx, adminActor(), invoice.ID, LogPaymentRequest{
			Version: 2,
			Amount:  decimal.NewFromInt(10),
			Method:  string(billing.PaymentMethodCash),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fully paid")
		f.paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("propagates a stale invoice version", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		id := uuid.New()

		f.invoiceRepo.On("UpdateWithVersion", ctx, id, 1).Return(nil, shared.NewConflictError(3))

		_, err := f.service.LogPayment(ctx, adminActor(), id, LogPaymentRequest{
			Version: 1,
			Amount:  decimal.NewFromInt(10),
			Method:  string(billing.PaymentMethodCash),
		})
		var conflict *shared.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, 3, conflict.ServerVersion)
		f.paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestInvoiceServiceOwnership(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)

	newBilledInvoice := func(t *testing.T, accountID uuid.UUID) *billing.Invoice {
		t.Helper()
		invoice, err := billing.NewInvoice("INV-2026-0070", now, now.AddDate(0, 0, 30))
		require.NoError(t, err)
		require.NoError(t, invoice.AddLineItem(uuid.New(), 1, decimal.NewFromInt(100)))
		invoice.AccountID = &accountID
		return invoice
	}

	newOwnedAccount := func(t *testing.T, ownerID uuid.UUID) *crm.Account {
		t.Helper()
		account, err := crm.NewAccount("Globex", crm.AccountTypeCustomer, ownerID)
		require.NoError(t, err)
		return account
	}

	t.Run("denies reads when the billed account belongs to someone else", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		account := newOwnedAccount(t, uuid.New())
		invoice := newBilledInvoice(t, account.ID)
		stranger := shared.Actor{UserID: uuid.New()}

		f.invoiceRepo.On("FindByID", ctx, invoice.ID).Return(invoice, nil)
		f.accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)

		_, err := f.service.GetByID(ctx, stranger, invoice.ID)
		require.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("lets the account owner read the invoice", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		owner := shared.Actor{UserID: uuid.New()}
		account := newOwnedAccount(t, owner.UserID)
		invoice := newBilledInvoice(t, account.ID)

		f.invoiceRepo.On("FindByID", ctx, invoice.ID).Return(invoice, nil)
		f.accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)

		resp, err := f.service.GetByID(ctx, owner, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, invoice.ID, resp.ID)
	})

	t.Run("lets an admin read any invoice without touching the account", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		invoice := newBilledInvoice(t, uuid.New())

		f.invoiceRepo.On("FindByID", ctx, invoice.ID).Return(invoice, nil)

		_, err := f.service.GetByID(ctx, adminActor(), invoice.ID)
		require.NoError(t, err)
		f.accountRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("denies payment logging by a non-owner", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		account := newOwnedAccount(t, uuid.New())
		invoice := newBilledInvoice(t, account.ID)
		stranger := shared.Actor{UserID: uuid.New()}

		f.invoiceRepo.On("UpdateWithVersion", ctx, invoice.ID, 1).Return(invoice, nil)
		f.accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)

		_, err := f.service.LogPayment(ctx, stranger, invoice.ID, LogPaymentRequest{
			Version: 1,
			Amount:  decimal.NewFromInt(100),
			Method:  string(billing.PaymentMethodWire),
		})
		require.ErrorIs(t, err, shared.ErrForbidden)
		f.paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("scopes lists to the actor", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		stranger := shared.Actor{UserID: uuid.New()}

		f.invoiceRepo.On("FindAll", ctx, mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.Filters["visible_to"] == stranger.UserID
		})).Return([]billing.Invoice{}, int64(0), nil)

		_, err := f.service.List(ctx, stranger, ListFilter{}, "", nil)
		require.NoError(t, err)
		f.invoiceRepo.AssertExpectations(t)
	})
}

func TestInvoiceServiceUpdate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)

	t.Run("rejects due date before issue date", func(t *testing.T) {
		f := newInvoiceServiceFixture(now)
		invoice, err := billing.NewInvoice("INV-2026-0060", now, now.AddDate(0, 0, 30))
		require.NoError(t, err)
		early := now.AddDate(0, 0, -1)

		f.invoiceRepo.On("UpdateWithVersion", ctx, invoice.ID, 1).Return(invoice, nil)

		_, err = f.service.Update(ctx, adminActor(), invoice.ID, UpdateInvoiceRequest{Version: 1, DueDate: &early})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_DATES", domainErr.Code)
	})
}
