package billing

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingCycle is the recurring billing period of a contract
type BillingCycle string

const (
	BillingCycleMonthly  BillingCycle = "Monthly"
	BillingCycleAnnually BillingCycle = "Annually"
)

// IsValid checks if the cycle is a valid BillingCycle
func (c BillingCycle) IsValid() bool {
	return c == BillingCycleMonthly || c == BillingCycleAnnually
}

// ContractLineItem is a recurring product position on a contract.
// PricePerCycle is frozen at generation time.
type ContractLineItem struct {
	shared.BaseEntity
	ContractID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"contract_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	PricePerCycle decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_per_cycle"`
}

// Amount returns quantity * price for one billing cycle
func (i *ContractLineItem) Amount() decimal.Decimal {
	return i.PricePerCycle.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Contract is a recurring-billing agreement derived from a won opportunity.
// At most one contract may exist per source opportunity, and at most one
// invoice may be generated per billing window.
type Contract struct {
	shared.SoftDeletableAggregateRoot
	Status        SettlementStatus   `gorm:"size:20;not null;default:'Awaiting Payment'" json:"status"`
	StartDate     time.Time          `gorm:"not null" json:"start_date"`
	EndDate       time.Time          `gorm:"not null" json:"end_date"`
	BillingCycle  BillingCycle       `gorm:"size:20;not null" json:"billing_cycle"`
	AccountID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"account_id"`
	OpportunityID *uuid.UUID         `gorm:"type:uuid;index" json:"opportunity_id"`
	OwnerID       *uuid.UUID         `gorm:"type:uuid;index" json:"owner_id"`
	LineItems     []ContractLineItem `gorm:"foreignKey:ContractID" json:"line_items"`
}

// NewContract creates a contract derived from the given opportunity
func NewContract(accountID, opportunityID uuid.UUID, start, end time.Time, cycle BillingCycle, ownerID *uuid.UUID) (*Contract, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if opportunityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OPPORTUNITY", "Opportunity ID cannot be empty")
	}
	if !cycle.IsValid() {
		return nil, shared.NewDomainError("INVALID_BILLING_CYCLE", "Billing cycle must be Monthly or Annually")
	}
	if !end.After(start) {
		return nil, shared.NewDomainError("INVALID_DATES", "Contract end date must be after start date")
	}
	oppID := opportunityID
	return &Contract{
		SoftDeletableAggregateRoot: shared.NewSoftDeletableAggregateRoot(),
		Status:                     StatusAwaitingPayment,
		StartDate:                  start,
		EndDate:                    end,
		BillingCycle:               cycle,
		AccountID:                  accountID,
		OpportunityID:              &oppID,
		OwnerID:                    ownerID,
		LineItems:                  make([]ContractLineItem, 0),
	}, nil
}

// AddLineItem appends a recurring product position with a frozen price
func (c *Contract) AddLineItem(productID uuid.UUID, quantity int, pricePerCycle decimal.Decimal) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if pricePerCycle.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	c.LineItems = append(c.LineItems, ContractLineItem{
		BaseEntity:    shared.NewBaseEntity(),
		ContractID:    c.ID,
		ProductID:     productID,
		Quantity:      quantity,
		PricePerCycle: pricePerCycle,
	})
	c.Touch()
	return nil
}

// TotalAmountPerCycle sums all line item amounts for one billing cycle
func (c *Contract) TotalAmountPerCycle() decimal.Decimal {
	total := decimal.Zero
	for i := range c.LineItems {
		total = total.Add(c.LineItems[i].Amount())
	}
	return total
}

// CurrentBillingWindow returns the billing window containing the given
// moment as a half-open interval [start, end). Monthly contracts bill per
// calendar month, annual contracts per calendar year; the exclusive end is
// the first instant of the next window, so a timestamp anywhere on the last
// day still falls inside.
func (c *Contract) CurrentBillingWindow(now time.Time) (time.Time, time.Time) {
	year, month, _ := now.Date()
	loc := now.Location()
	switch c.BillingCycle {
	case BillingCycleMonthly:
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	default: // BillingCycleAnnually
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0)
	}
}

// ChangeStatus moves the contract to a new settlement status
func (c *Contract) ChangeStatus(status SettlementStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid contract status")
	}
	c.Status = status
	c.Touch()
	return nil
}

// IsOwnedBy reports whether the given user owns this contract. A contract
// without an owner is open to any user.
func (c *Contract) IsOwnedBy(userID uuid.UUID) bool {
	return c.OwnerID == nil || *c.OwnerID == userID
}

// ClearOwner unsets the owning user, used when the owner is deleted
func (c *Contract) ClearOwner() {
	c.OwnerID = nil
	c.Touch()
}
