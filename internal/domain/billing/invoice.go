package billing

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceLineItem is a billed product position. UnitPrice is a snapshot
// copied from the source order or contract at generation time.
type InvoiceLineItem struct {
	shared.BaseEntity
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}

// Amount returns quantity * unit price
func (i *InvoiceLineItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Invoice is a bill derived from an order or a contract. It keeps a
// back-reference to its source; the generation pipelines enforce at most one
// invoice per order and one per contract billing window.
type Invoice struct {
	shared.SoftDeletableAggregateRoot
	InvoiceNumber string            `gorm:"size:255;not null;uniqueIndex" json:"invoice_number"`
	IssueDate     time.Time         `gorm:"not null;index" json:"issue_date"`
	DueDate       time.Time         `gorm:"not null;index" json:"due_date"`
	BalanceDue    decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"balance_due"`
	Status        SettlementStatus  `gorm:"size:20;not null;default:'Awaiting Payment';index" json:"status"`
	AccountID     *uuid.UUID        `gorm:"type:uuid;index" json:"account_id"`
	OrderID       *uuid.UUID        `gorm:"type:uuid;index" json:"order_id"`
	ContractID    *uuid.UUID        `gorm:"type:uuid;index" json:"contract_id"`
	Notes         string            `json:"notes"`
	LineItems     []InvoiceLineItem `gorm:"foreignKey:InvoiceID" json:"line_items"`
}

// NewInvoice creates an invoice with a zero balance; AddLineItem accrues the
// balance due as positions are copied from the source.
func NewInvoice(invoiceNumber string, issueDate, dueDate time.Time) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DATES", "Due date cannot be before issue date")
	}
	return &Invoice{
		SoftDeletableAggregateRoot: shared.NewSoftDeletableAggregateRoot(),
		InvoiceNumber:              invoiceNumber,
		IssueDate:                  issueDate,
		DueDate:                    dueDate,
		BalanceDue:                 decimal.Zero,
		Status:                     StatusAwaitingPayment,
		LineItems:                  make([]InvoiceLineItem, 0),
	}, nil
}

// AddLineItem appends a billed position and accrues the balance due
func (inv *Invoice) AddLineItem(productID uuid.UUID, quantity int, unitPrice decimal.Decimal) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	item := InvoiceLineItem{
		BaseEntity: shared.NewBaseEntity(),
		InvoiceID:  inv.ID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
	}
	inv.LineItems = append(inv.LineItems, item)
	inv.BalanceDue = inv.BalanceDue.Add(item.Amount())
	inv.Touch()
	return nil
}

// TotalAmount sums all line item amounts
func (inv *Invoice) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range inv.LineItems {
		total = total.Add(inv.LineItems[i].Amount())
	}
	return total
}

// IsFullyPaid reports whether the invoice needs no further payments
func (inv *Invoice) IsFullyPaid() bool {
	return inv.Status == StatusPaidInFull
}

// ApplyPayment settles the given amount against the balance due. The balance
// clamps at zero; the status follows the remaining balance. Must run in the
// same transaction that creates the Payment row.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if inv.IsFullyPaid() {
		return shared.NewBusinessRuleError("Cannot log payment for a fully paid invoice.")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	remaining := inv.BalanceDue.Sub(amount)
	if remaining.LessThanOrEqual(decimal.Zero) {
		inv.BalanceDue = decimal.Zero
		inv.Status = StatusPaidInFull
	} else {
		inv.BalanceDue = remaining
		inv.Status = StatusPartiallyPaid
	}
	inv.Touch()
	return nil
}
