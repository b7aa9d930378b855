package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountService handles account-related business operations
type AccountService struct {
	accountRepo crm.AccountRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo crm.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// Create creates a new account
func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	account, err := crm.NewAccount(req.Name, crm.AccountType(req.Type), req.OwnerID)
	if err != nil {
		return nil, err
	}
	account.Phone = req.Phone
	account.Website = req.Website
	account.BillingAddress = req.BillingAddress
	account.ShippingAddress = req.ShippingAddress
	if req.ParentAccountID != nil {
		if err := account.SetParent(*req.ParentAccountID); err != nil {
			return nil, err
		}
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// GetByID retrieves an account, provided the actor owns it or is an admin
func (s *AccountService) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(account); err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// List retrieves the accounts visible to the actor with filtering and
// pagination
func (s *AccountService) List(ctx context.Context, actor shared.Actor, filter ListFilter, accountType string, activeOnly bool) (*shared.Paginated[AccountResponse], error) {
	domainFilter := toDomainFilter(filter)
	domainFilter.ScopeToActor(actor)
	if accountType != "" {
		domainFilter.Filters["type"] = accountType
	}
	if activeOnly {
		domainFilter.Filters["is_active"] = true
	}

	accounts, total, err := s.accountRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]AccountResponse, len(accounts))
	for i := range accounts {
		items[i] = ToAccountResponse(&accounts[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a version-guarded update to an account. Only the owner or
// an admin may modify it.
func (s *AccountService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	account, err := s.accountRepo.UpdateWithVersion(ctx, id, req.Version, func(a *crm.Account) error {
		if err := actor.Authorize(a); err != nil {
			return err
		}
		if req.Name != nil {
			if err := a.Rename(*req.Name); err != nil {
				return err
			}
		}
		if req.Type != nil {
			if err := a.ChangeType(crm.AccountType(*req.Type)); err != nil {
				return err
			}
		}
		if req.Phone != nil {
			a.Phone = *req.Phone
		}
		if req.Website != nil {
			a.Website = *req.Website
		}
		if req.BillingAddress != nil {
			a.BillingAddress = *req.BillingAddress
		}
		if req.ShippingAddress != nil {
			a.ShippingAddress = *req.ShippingAddress
		}
		if req.ParentAccountID != nil {
			if err := a.SetParent(*req.ParentAccountID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// Delete soft-deletes an account under the version guard. Only the owner or
// an admin may delete it.
func (s *AccountService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID, clientVersion int) error {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := actor.Authorize(account); err != nil {
		return err
	}
	return s.accountRepo.DeactivateWithVersion(ctx, id, clientVersion)
}

// toDomainFilter builds a domain filter with defaults applied
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
