package catalog

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is something the company sells. Retainer products bill through
// contracts on a recurring cycle; everything else bills once through orders.
type Product struct {
	shared.SoftDeletableAggregateRoot
	Name              string          `gorm:"size:255;not null;uniqueIndex:idx_products_owner_name" json:"name"`
	Description       string          `json:"description"`
	StandardListPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"standard_list_price"`
	IsRetainerProduct bool            `gorm:"not null;default:false" json:"is_retainer_product"`
	OwnerID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_owner_name" json:"owner_id"`
}

// NewProduct creates a product owned by the given user
func NewProduct(name string, listPrice decimal.Decimal, isRetainer bool, ownerID uuid.UUID) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if listPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "List price cannot be negative")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	return &Product{
		SoftDeletableAggregateRoot: shared.NewSoftDeletableAggregateRoot(),
		Name:                       name,
		StandardListPrice:          listPrice,
		IsRetainerProduct:          isRetainer,
		OwnerID:                    ownerID,
	}, nil
}

// Rename changes the product name
func (p *Product) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	p.Name = name
	p.Touch()
	return nil
}

// ChangeListPrice updates the standard list price. Already-generated order,
// contract and invoice line items keep their snapshots.
func (p *Product) ChangeListPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "List price cannot be negative")
	}
	p.StandardListPrice = price
	p.Touch()
	return nil
}

// IsOwnedBy reports whether the given user owns this product
func (p *Product) IsOwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}
