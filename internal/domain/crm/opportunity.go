package crm

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpportunityStage represents the sales stage of an opportunity
type OpportunityStage string

const (
	StageQualification OpportunityStage = "qualification"
	StageMeetPresent   OpportunityStage = "meet_present"
	StageProposal      OpportunityStage = "proposal"
	StageNegotiation   OpportunityStage = "negotiation"
	StageClosedWon     OpportunityStage = "closed_won"
	StageClosedLost    OpportunityStage = "closed_lost"
)

// IsValid checks if the stage is a valid OpportunityStage
func (s OpportunityStage) IsValid() bool {
	switch s {
	case StageQualification, StageMeetPresent, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost:
		return true
	}
	return false
}

// String returns the string representation of OpportunityStage
func (s OpportunityStage) String() string {
	return string(s)
}

// IsClosed reports whether the stage is terminal
func (s OpportunityStage) IsClosed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// OpportunityLineItem is a product position on an opportunity. The price is a
// snapshot taken when the item is added, not a live product reference.
type OpportunityLineItem struct {
	shared.BaseAggregateRoot
	OpportunityID uuid.UUID       `gorm:"type:uuid;not null;index" json:"opportunity_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// NewOpportunityLineItem creates a line item with a frozen price
func NewOpportunityLineItem(opportunityID, productID uuid.UUID, quantity int, price decimal.Decimal) (*OpportunityLineItem, error) {
	if opportunityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OPPORTUNITY", "Opportunity ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return &OpportunityLineItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OpportunityID:     opportunityID,
		ProductID:         productID,
		Quantity:          quantity,
		Price:             price,
	}, nil
}

// Amount returns quantity * price
func (i *OpportunityLineItem) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// UpdateQuantity changes the item quantity
func (i *OpportunityLineItem) UpdateQuantity(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	i.Quantity = quantity
	i.Touch()
	return nil
}

// Opportunity represents a potential revenue-generating deal on an account
type Opportunity struct {
	shared.SoftDeletableAggregateRoot
	Name        string                `gorm:"size:255;not null;index" json:"name"`
	Stage       OpportunityStage      `gorm:"size:20;not null;default:'qualification';index" json:"stage"`
	CloseDate   *time.Time            `json:"close_date"`
	NextStep    string                `json:"next_step"`
	Description string                `json:"description"`
	AccountID   uuid.UUID             `gorm:"type:uuid;not null;index" json:"account_id"`
	OwnerID     *uuid.UUID            `gorm:"type:uuid;index" json:"owner_id"`
	LineItems   []OpportunityLineItem `gorm:"foreignKey:OpportunityID" json:"line_items"`
}

// NewOpportunity creates a new opportunity in the qualification stage
func NewOpportunity(accountID uuid.UUID, name string, ownerID uuid.UUID) (*Opportunity, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Opportunity name cannot be empty")
	}

	opp := &Opportunity{
		SoftDeletableAggregateRoot: shared.NewSoftDeletableAggregateRoot(),
		Name:                       name,
		Stage:                      StageQualification,
		AccountID:                  accountID,
		LineItems:                  make([]OpportunityLineItem, 0),
	}
	if ownerID != uuid.Nil {
		opp.OwnerID = &ownerID
	}
	return opp, nil
}

// ChangeStage moves the opportunity to a new stage
func (o *Opportunity) ChangeStage(stage OpportunityStage) error {
	if !stage.IsValid() {
		return shared.NewDomainError("INVALID_STAGE", "Invalid opportunity stage")
	}
	o.Stage = stage
	o.Touch()
	return nil
}

// IsClosedWon reports whether the deal was won
func (o *Opportunity) IsClosedWon() bool {
	return o.Stage == StageClosedWon
}

// AddLineItem appends a product position with a frozen price
func (o *Opportunity) AddLineItem(productID uuid.UUID, quantity int, price decimal.Decimal) (*OpportunityLineItem, error) {
	item, err := NewOpportunityLineItem(o.ID, productID, quantity, price)
	if err != nil {
		return nil, err
	}
	o.LineItems = append(o.LineItems, *item)
	o.Touch()
	return &o.LineItems[len(o.LineItems)-1], nil
}

// TotalAmount sums all line item amounts
func (o *Opportunity) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range o.LineItems {
		total = total.Add(o.LineItems[i].Amount())
	}
	return total
}

// IsOwnedBy reports whether the given user owns this opportunity. An
// opportunity without an owner is open to any user.
func (o *Opportunity) IsOwnedBy(userID uuid.UUID) bool {
	return o.OwnerID == nil || *o.OwnerID == userID
}

// ClearOwner unsets the owning user, used when the owner is deleted
func (o *Opportunity) ClearOwner() {
	o.OwnerID = nil
	o.Touch()
}
