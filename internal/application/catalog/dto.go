package catalog

import (
	"time"

	"github.com/crm/backend/internal/domain/catalog"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest carries the data for creating a product
type CreateProductRequest struct {
	Name              string          `json:"name" binding:"required,max=255"`
	Description       string          `json:"description"`
	StandardListPrice decimal.Decimal `json:"standard_list_price"`
	IsRetainerProduct bool            `json:"is_retainer_product"`
	OwnerID           uuid.UUID       `json:"-"`
}

// UpdateProductRequest carries a version-guarded product patch. The retainer
// flag is immutable once set; reclassifying a product would silently reroute
// generated records.
type UpdateProductRequest struct {
	Version           int              `json:"version" binding:"required,min=1"`
	Name              *string          `json:"name" binding:"omitempty,max=255"`
	Description       *string          `json:"description"`
	StandardListPrice *decimal.Decimal `json:"standard_list_price"`
}

// ProductResponse is the product representation returned by the API
type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	StandardListPrice decimal.Decimal `json:"standard_list_price"`
	IsRetainerProduct bool            `json:"is_retainer_product"`
	OwnerID           uuid.UUID       `json:"owner_id"`
	IsActive          bool            `json:"is_active"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ListFilter carries the common list query parameters
type ListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Search   string `form:"search"`
}

func toDomainFilter(filter ListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	return domainFilter
}

// ToProductResponse converts a domain product to its API representation
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                product.ID,
		Name:              product.Name,
		Description:       product.Description,
		StandardListPrice: product.StandardListPrice,
		IsRetainerProduct: product.IsRetainerProduct,
		OwnerID:           product.OwnerID,
		IsActive:          product.Active,
		Version:           product.Version,
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}
}
