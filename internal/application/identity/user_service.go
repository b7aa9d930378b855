package identity

import (
	"context"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/catalog"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles user management. Deleting a user enforces the ownership
// policy: accounts, leads and products block deletion, everything else has
// its owner unset.
type UserService struct {
	userRepo     identity.UserRepository
	accountRepo  crm.AccountRepository
	contactRepo  crm.ContactRepository
	leadRepo     crm.LeadRepository
	oppRepo      crm.OpportunityRepository
	orderRepo    billing.OrderRepository
	contractRepo billing.ContractRepository
	productRepo  catalog.ProductRepository
	txManager    shared.TxManager
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo identity.UserRepository,
	accountRepo crm.AccountRepository,
	contactRepo crm.ContactRepository,
	leadRepo crm.LeadRepository,
	oppRepo crm.OpportunityRepository,
	orderRepo billing.OrderRepository,
	contractRepo billing.ContractRepository,
	productRepo catalog.ProductRepository,
	txManager shared.TxManager,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		accountRepo:  accountRepo,
		contactRepo:  contactRepo,
		leadRepo:     leadRepo,
		oppRepo:      oppRepo,
		orderRepo:    orderRepo,
		contractRepo: contractRepo,
		productRepo:  productRepo,
		txManager:    txManager,
	}
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	}

	user, err := identity.NewUser(req.Email, req.FirstName, req.LastName, req.Password, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List retrieves users with filtering and pagination
func (s *UserService) List(ctx context.Context, filter ListFilter) (*shared.Paginated[UserResponse], error) {
	domainFilter := toDomainFilter(filter)

	users, total, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = ToUserResponse(&users[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a version-guarded update to a user
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.UpdateWithVersion(ctx, id, req.Version, func(u *identity.User) error {
		if req.FirstName != nil {
			if *req.FirstName == "" {
				return shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
			}
			u.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			if *req.LastName == "" {
				return shared.NewDomainError("INVALID_NAME", "Last name cannot be empty")
			}
			u.LastName = *req.LastName
		}
		if req.Role != nil {
			role := identity.Role(*req.Role)
			if !role.IsValid() {
				return shared.NewDomainError("INVALID_ROLE", "Invalid role")
			}
			u.Role = role
		}
		if req.Password != nil {
			if err := u.ChangePassword(*req.Password); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete soft-deletes a user. Deletion is blocked while the user owns
// accounts, leads or products; ownership on contacts, opportunities, orders
// and contracts is unset in the same transaction.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID, clientVersion int) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return err
	}

	for _, count := range []func(context.Context, uuid.UUID) (int64, error){
		s.accountRepo.CountOwnedBy,
		s.leadRepo.CountOwnedBy,
		s.productRepo.CountOwnedBy,
	} {
		n, err := count(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return shared.ErrOwnerProtected
		}
	}

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		for _, clear := range []func(context.Context, uuid.UUID) error{
			s.contactRepo.ClearOwner,
			s.oppRepo.ClearOwner,
			s.orderRepo.ClearOwner,
			s.contractRepo.ClearOwner,
		} {
			if err := clear(ctx, id); err != nil {
				return err
			}
		}
		return s.userRepo.DeactivateWithVersion(ctx, id, clientVersion)
	})
	if err != nil {
		return err
	}

	logger.L(ctx).Info("user deactivated", zap.String("user_id", id.String()))
	return nil
}
