package billing

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementStatus is shared by orders, contracts and invoices
type SettlementStatus string

const (
	StatusAwaitingPayment SettlementStatus = "Awaiting Payment"
	StatusPartiallyPaid   SettlementStatus = "Partially Paid"
	StatusPaidInFull      SettlementStatus = "Paid in Full"
	StatusFulfilled       SettlementStatus = "Fulfilled"
	StatusCancelled       SettlementStatus = "Cancelled"
)

// IsValid checks if the status is a valid SettlementStatus
func (s SettlementStatus) IsValid() bool {
	switch s {
	case StatusAwaitingPayment, StatusPartiallyPaid, StatusPaidInFull, StatusFulfilled, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SettlementStatus
func (s SettlementStatus) String() string {
	return string(s)
}

// OrderLineItem is a product position on an order. PriceAtPurchase is frozen
// at generation time; later product price changes do not touch it.
type OrderLineItem struct {
	shared.BaseEntity
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_at_purchase"`
}

// Amount returns quantity * price
func (i *OrderLineItem) Amount() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a one-time sale derived from a won opportunity. At most one order
// may exist per source opportunity.
type Order struct {
	shared.SoftDeletableAggregateRoot
	OrderDate     time.Time        `gorm:"not null" json:"order_date"`
	Status        SettlementStatus `gorm:"size:20;not null;default:'Awaiting Payment'" json:"status"`
	AccountID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"account_id"`
	OpportunityID *uuid.UUID       `gorm:"type:uuid;index" json:"opportunity_id"`
	OwnerID       *uuid.UUID       `gorm:"type:uuid;index" json:"owner_id"`
	LineItems     []OrderLineItem  `gorm:"foreignKey:OrderID" json:"line_items"`
}

// NewOrder creates an order derived from the given opportunity
func NewOrder(accountID, opportunityID uuid.UUID, ownerID *uuid.UUID) (*Order, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if opportunityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OPPORTUNITY", "Opportunity ID cannot be empty")
	}
	oppID := opportunityID
	return &Order{
		SoftDeletableAggregateRoot: shared.NewSoftDeletableAggregateRoot(),
		OrderDate:                  time.Now(),
		Status:                     StatusAwaitingPayment,
		AccountID:                  accountID,
		OpportunityID:              &oppID,
		OwnerID:                    ownerID,
		LineItems:                  make([]OrderLineItem, 0),
	}, nil
}

// AddLineItem appends a product position with a frozen price snapshot
func (o *Order) AddLineItem(productID uuid.UUID, quantity int, priceAtPurchase decimal.Decimal) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if priceAtPurchase.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	o.LineItems = append(o.LineItems, OrderLineItem{
		BaseEntity:      shared.NewBaseEntity(),
		OrderID:         o.ID,
		ProductID:       productID,
		Quantity:        quantity,
		PriceAtPurchase: priceAtPurchase,
	})
	o.Touch()
	return nil
}

// TotalAmount sums all line item amounts
func (o *Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range o.LineItems {
		total = total.Add(o.LineItems[i].Amount())
	}
	return total
}

// ChangeStatus moves the order to a new settlement status
func (o *Order) ChangeStatus(status SettlementStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid order status")
	}
	o.Status = status
	o.Touch()
	return nil
}

// IsOwnedBy reports whether the given user owns this order. An order without
// an owner is open to any user.
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.OwnerID == nil || *o.OwnerID == userID
}

// ClearOwner unsets the owning user, used when the owner is deleted
func (o *Order) ClearOwner() {
	o.OwnerID = nil
	o.Touch()
}
