package billing

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRepository persists orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, int64, error)
	// ExistsForOpportunity is the idempotency check for Opportunity→Order.
	ExistsForOpportunity(ctx context.Context, opportunityID uuid.UUID) (bool, error)
	Save(ctx context.Context, order *Order) error
	UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*Order) error) (*Order, error)
	DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error
	ClearOwner(ctx context.Context, ownerID uuid.UUID) error
}

// ContractRepository persists contracts
type ContractRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Contract, int64, error)
	// ExistsForOpportunity is the idempotency check for Opportunity→Contract.
	ExistsForOpportunity(ctx context.Context, opportunityID uuid.UUID) (bool, error)
	Save(ctx context.Context, contract *Contract) error
	UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*Contract) error) (*Contract, error)
	DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error
	ClearOwner(ctx context.Context, ownerID uuid.UUID) error
}

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, int64, error)
	// ExistsForOrder is the idempotency check for Order→Invoice.
	ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	// ExistsForContractInWindow is the billing-cycle-scoped idempotency
	// check for Contract→Invoice: has an invoice already been issued for
	// this contract with an issue date inside the half-open window
	// [start, end)?
	ExistsForContractInWindow(ctx context.Context, contractID uuid.UUID, start, end time.Time) (bool, error)
	NextInvoiceNumber(ctx context.Context) (string, error)
	Save(ctx context.Context, invoice *Invoice) error
	UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*Invoice) error) (*Invoice, error)
	DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error
}

// PaymentRepository persists payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Payment, int64, error)
	Save(ctx context.Context, payment *Payment) error
	UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*Payment) error) (*Payment, error)
	// DeleteWithVersion hard-deletes under the version guard.
	DeleteWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error
	// MonthlyTotalsByAccount feeds the payment matrix: per-account,
	// per-month sums of non-failed payments dated within the given year.
	MonthlyTotalsByAccount(ctx context.Context, year int) ([]AccountMonthTotal, error)
}

// AccountMonthTotal is one aggregation row of the payment matrix query
type AccountMonthTotal struct {
	AccountID uuid.UUID
	Month     int
	Total     decimal.Decimal
}
