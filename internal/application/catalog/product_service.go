package catalog

import (
	"context"

	"github.com/crm/backend/internal/domain/catalog"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductService handles product catalog operations
type ProductService struct {
	productRepo catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.StandardListPrice, req.IsRetainerProduct, req.OwnerID)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product, provided the actor owns it or is an admin
func (s *ProductService) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves the products visible to the actor. The retainer filter
// takes "true" or "false"; anything else leaves it unset. The owner filter
// only narrows what the actor could see anyway.
func (s *ProductService) List(ctx context.Context, actor shared.Actor, filter ListFilter, retainer string, ownerID *uuid.UUID) (*shared.Paginated[ProductResponse], error) {
	domainFilter := toDomainFilter(filter)
	domainFilter.ScopeToActor(actor)
	switch retainer {
	case "true":
		domainFilter.Filters["is_retainer_product"] = true
	case "false":
		domainFilter.Filters["is_retainer_product"] = false
	}
	if ownerID != nil {
		domainFilter.Filters["owner_id"] = *ownerID
	}

	products, total, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a version-guarded update to a product. Only the owner or an
// admin may modify it.
func (s *ProductService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.UpdateWithVersion(ctx, id, req.Version, func(p *catalog.Product) error {
		if err := actor.Authorize(p); err != nil {
			return err
		}
		if req.Name != nil {
			if err := p.Rename(*req.Name); err != nil {
				return err
			}
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.StandardListPrice != nil {
			if err := p.ChangeListPrice(*req.StandardListPrice); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete soft-deletes a product under the version guard. Line items on
// already-generated orders, contracts and invoices keep their snapshots.
func (s *ProductService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID, clientVersion int) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.Authorize(product); err != nil {
		return err
	}
	return s.productRepo.DeactivateWithVersion(ctx, id, clientVersion)
}
