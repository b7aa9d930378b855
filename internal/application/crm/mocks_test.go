package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// stubTxManager runs the function directly, without a database transaction.
type stubTxManager struct{}

func (stubTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockLeadRepository is a mock implementation of crm.LeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.Lead, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *MockLeadRepository) Save(ctx context.Context, lead *crm.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*crm.Lead) error) (*crm.Lead, error) {
	args := m.Called(ctx, id, clientVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	lead := args.Get(0).(*crm.Lead)
	if mutate != nil {
		if err := mutate(lead); err != nil {
			return nil, err
		}
	}
	return lead, args.Error(1)
}

func (m *MockLeadRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	args := m.Called(ctx, id, clientVersion)
	return args.Error(0)
}

func (m *MockLeadRepository) CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAccountRepository is a mock implementation of crm.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByName(ctx context.Context, name string) (*crm.Account, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.Account, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) FindAllActive(ctx context.Context) ([]crm.Account, error) {
	args := m.Called(ctx)
	return args.Get(0).([]crm.Account), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *crm.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*crm.Account) error) (*crm.Account, error) {
	args := m.Called(ctx, id, clientVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	account := args.Get(0).(*crm.Account)
	if mutate != nil {
		if err := mutate(account); err != nil {
			return nil, err
		}
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	args := m.Called(ctx, id, clientVersion)
	return args.Error(0)
}

func (m *MockAccountRepository) CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockContactRepository is a mock implementation of crm.ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByEmail(ctx context.Context, email string) (*crm.Contact, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]crm.Contact, int64, error) {
	args := m.Called(ctx, accountID, filter)
	return args.Get(0).([]crm.Contact), args.Get(1).(int64), args.Error(2)
}

func (m *MockContactRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.Contact, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.Contact), args.Get(1).(int64), args.Error(2)
}

func (m *MockContactRepository) Save(ctx context.Context, contact *crm.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*crm.Contact) error) (*crm.Contact, error) {
	args := m.Called(ctx, id, clientVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	contact := args.Get(0).(*crm.Contact)
	if mutate != nil {
		if err := mutate(contact); err != nil {
			return nil, err
		}
	}
	return contact, args.Error(1)
}

func (m *MockContactRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	args := m.Called(ctx, id, clientVersion)
	return args.Error(0)
}

func (m *MockContactRepository) ClearOwner(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

// MockOpportunityRepository is a mock implementation of crm.OpportunityRepository
type MockOpportunityRepository struct {
	mock.Mock
}

func (m *MockOpportunityRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Opportunity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.Opportunity, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.Opportunity), args.Get(1).(int64), args.Error(2)
}

func (m *MockOpportunityRepository) Save(ctx context.Context, opportunity *crm.Opportunity) error {
	args := m.Called(ctx, opportunity)
	return args.Error(0)
}

func (m *MockOpportunityRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*crm.Opportunity) error) (*crm.Opportunity, error) {
	args := m.Called(ctx, id, clientVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	opportunity := args.Get(0).(*crm.Opportunity)
	if mutate != nil {
		if err := mutate(opportunity); err != nil {
			return nil, err
		}
	}
	return opportunity, args.Error(1)
}

func (m *MockOpportunityRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	args := m.Called(ctx, id, clientVersion)
	return args.Error(0)
}

func (m *MockOpportunityRepository) ClearOwner(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

func (m *MockOpportunityRepository) FindLineItem(ctx context.Context, opportunityID, itemID uuid.UUID) (*crm.OpportunityLineItem, error) {
	args := m.Called(ctx, opportunityID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.OpportunityLineItem), args.Error(1)
}

func (m *MockOpportunityRepository) SaveLineItem(ctx context.Context, item *crm.OpportunityLineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockOpportunityRepository) UpdateLineItemWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*crm.OpportunityLineItem) error) (*crm.OpportunityLineItem, error) {
	args := m.Called(ctx, id, clientVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	item := args.Get(0).(*crm.OpportunityLineItem)
	if mutate != nil {
		if err := mutate(item); err != nil {
			return nil, err
		}
	}
	return item, args.Error(1)
}

func (m *MockOpportunityRepository) DeleteLineItemWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	args := m.Called(ctx, id, clientVersion)
	return args.Error(0)
}
