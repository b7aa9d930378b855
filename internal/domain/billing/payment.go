package billing

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the payment was made
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodCash       PaymentMethod = "CASH"
	PaymentMethodCheck      PaymentMethod = "CHECK"
	PaymentMethodWire       PaymentMethod = "WIRE"
	PaymentMethodOther      PaymentMethod = "OTHER"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodCash, PaymentMethodCheck, PaymentMethodWire, PaymentMethodOther:
		return true
	}
	return false
}

// PaymentStatus is the clearing state of a payment. Pending payments count
// toward revenue reports; only failed payments are excluded.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// Payment records money logged against an invoice. Payments are hard-deleted
// under the version guard; there is no activation flag.
type Payment struct {
	shared.BaseAggregateRoot
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentDate   time.Time       `gorm:"not null;index" json:"payment_date"`
	Method        PaymentMethod   `gorm:"column:payment_method;size:20;not null" json:"payment_method"`
	Status        PaymentStatus   `gorm:"size:10;not null;default:'PENDING';index" json:"status"`
	TransactionID string          `gorm:"size:255" json:"transaction_id"`
	Notes         string          `json:"notes"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"account_id"`
}

// NewPayment creates a payment against an invoice
func NewPayment(invoiceID, accountID uuid.UUID, amount decimal.Decimal, method PaymentMethod, paymentDate time.Time) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Invalid payment method")
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Amount:            amount,
		PaymentDate:       paymentDate,
		Method:            method,
		Status:            PaymentStatusPending,
		InvoiceID:         invoiceID,
		AccountID:         accountID,
	}, nil
}

// MarkCompleted records that the payment cleared
func (p *Payment) MarkCompleted() {
	p.Status = PaymentStatusCompleted
	p.Touch()
}

// MarkFailed records that the payment failed; failed payments drop out of
// revenue reports
func (p *Payment) MarkFailed() {
	p.Status = PaymentStatusFailed
	p.Touch()
}
