package billing

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/catalog"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// stubTxManager runs the function directly; the services under test only need
// the callback executed, not a real transaction.
type stubTxManager struct{}

func (stubTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockOrderRepository is a mock implementation of billing.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) ExistsForOpportunity(ctx context.Context, opportunityID uuid.UUID) (bool, error) {
	args := m.Called(ctx, opportunityID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *billing.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*billing.Order) error) (*billing.Order, error) {
	args := m.Called(ctx, id, clientVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	order := args.Get(0).(*billing.Order)
	if mutate != nil {
		if err := mutate(order); err != nil {
			return nil, err
		}
	}
	return order, args.Error(1)
}

func (m *MockOrderRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	args := m.Called(ctx, id, clientVersion)
	return args.Error(0)
}

func (m *MockOrderRepository) ClearOwner(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

// MockContractRepository is a mock implementation of billing.ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Contract), args.Error(1)
}

func (m *MockContractRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Contract, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Contract), args.Get(1).(int64), args.Error(2)
}

func (m *MockContractRepository) ExistsForOpportunity(ctx context.Context, opportunityID uuid.UUID) (bool, error) {
	args := m.Called(ctx, opportunityID)
	return args.Bool(0), args.Error(1)
}

func (m *MockContractRepository) Save(ctx context.Context, contract *billing.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockContractRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*billing.Contract) error) (*billing.Contract, error) {
	args := m.Called(ctx, id, clientVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	contract := args.Get(0).(*billing.Contract)
	if mutate != nil {
		if err := mutate(contract); err != nil {
			return nil, err
		}
	}
	return contract, args.Error(1)
}

func (m *MockContractRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	args := m.Called(ctx, id, clientVersion)
	return args.Error(0)
}

func (m *MockContractRepository) ClearOwner(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsForContractInWindow(ctx context.Context, contractID uuid.UUID, start, end time.Time) (bool, error) {
	args := m.Called(ctx, contractID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) NextInvoiceNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*billing.Invoice) error) (*billing.Invoice, error) {
	args := m.Called(ctx, id, clientVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	invoice := args.Get(0).(*billing.Invoice)
	if mutate != nil {
		if err := mutate(invoice); err != nil {
			return nil, err
		}
	}
	return invoice, args.Error(1)
}

func (m *MockInvoiceRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	args := m.Called(ctx, id, clientVersion)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of billing.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Payment, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*billing.Payment) error) (*billing.Payment, error) {
	args := m.Called(ctx, id, clientVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	payment := args.Get(0).(*billing.Payment)
	if mutate != nil {
		if err := mutate(payment); err != nil {
			return nil, err
		}
	}
	return payment, args.Error(1)
}

func (m *MockPaymentRepository) DeleteWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	args := m.Called(ctx, id, clientVersion)
	return args.Error(0)
}

func (m *MockPaymentRepository) MonthlyTotalsByAccount(ctx context.Context, year int) ([]billing.AccountMonthTotal, error) {
	args := m.Called(ctx, year)
	return args.Get(0).([]billing.AccountMonthTotal), args.Error(1)
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

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*catalog.Product) error) (*catalog.Product, error) {
	args := m.Called(ctx, id, clientVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	product := args.Get(0).(*catalog.Product)
	if mutate != nil {
		if err := mutate(product); err != nil {
			return nil, err
		}
	}
	return product, args.Error(1)
}

func (m *MockProductRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	args := m.Called(ctx, id, clientVersion)
	return args.Error(0)
}

func (m *MockProductRepository) CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
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
