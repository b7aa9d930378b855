package report

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func testAccount(t *testing.T, name string) crm.Account {
	t.Helper()
	account, err := crm.NewAccount(name, crm.AccountTypeCustomer, uuid.New())
	require.NoError(t, err)
	return *account
}

func TestPaymentMatrixGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects years outside 2000-2100", func(t *testing.T) {
		service := NewPaymentMatrixService(new(MockPaymentRepository), new(MockAccountRepository))

		for _, year := range []int{1999, 2101, 0, -5} {
			_, err := service.Generate(ctx, year)
			require.Error(t, err, "year %d", year)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "INVALID_YEAR", domainErr.Code)
		}
	})

	t.Run("accepts the boundary years", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		accountRepo := new(MockAccountRepository)
		service := NewPaymentMatrixService(paymentRepo, accountRepo)

		accountRepo.On("FindAllActive", ctx).Return([]crm.Account{}, nil)
		paymentRepo.On("MonthlyTotalsByAccount", ctx, mock.Anything).Return([]billing.AccountMonthTotal{}, nil)

		for _, year := range []int{2000, 2100} {
			resp, err := service.Generate(ctx, year)
			require.NoError(t, err, "year %d", year)
			assert.Equal(t, year, resp.Year)
		}
	})

	t.Run("zero-fills every active account", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		accountRepo := new(MockAccountRepository)
		service := NewPaymentMatrixService(paymentRepo, accountRepo)

		accounts := []crm.Account{testAccount(t, "Acme"), testAccount(t, "Globex")}
		accountRepo.On("FindAllActive", ctx).Return(accounts, nil)
		paymentRepo.On("MonthlyTotalsByAccount", ctx, 2026).Return([]billing.AccountMonthTotal{}, nil)

		resp, err := service.Generate(ctx, 2026)
		require.NoError(t, err)

		require.Len(t, resp.Rows, 2)
		for _, row := range resp.Rows {
			for m, total := range row.MonthlyTotals {
				assert.True(t, total.IsZero(), "month %d should be zero", m+1)
			}
			assert.True(t, row.YearTotal.IsZero())
		}
		assert.True(t, resp.GrandTotal.IsZero())
	})

	t.Run("aggregates rows, columns and grand total", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		accountRepo := new(MockAccountRepository)
		service := NewPaymentMatrixService(paymentRepo, accountRepo)

		acme := testAccount(t, "Acme")
		globex := testAccount(t, "Globex")
		accountRepo.On("FindAllActive", ctx).Return([]crm.Account{acme, globex}, nil)
		paymentRepo.On("MonthlyTotalsByAccount", ctx, 2026).Return([]billing.AccountMonthTotal{
			{AccountID: acme.ID, Month: 1, Total: decimal.NewFromInt(100)},
			{AccountID: acme.ID, Month: 3, Total: decimal.NewFromFloat(50.50)},
			{AccountID: globex.ID, Month: 3, Total: decimal.NewFromInt(200)},
		}, nil)

		resp, err := service.Generate(ctx, 2026)
		require.NoError(t, err)

		require.Len(t, resp.Rows, 2)
		assert.True(t, resp.Rows[0].MonthlyTotals[0].Equal(decimal.NewFromInt(100)))
		assert.True(t, resp.Rows[0].MonthlyTotals[2].Equal(decimal.NewFromFloat(50.50)))
		assert.True(t, resp.Rows[0].YearTotal.Equal(decimal.NewFromFloat(150.50)))
		assert.True(t, resp.Rows[1].YearTotal.Equal(decimal.NewFromInt(200)))

		assert.True(t, resp.MonthlyTotals[0].Equal(decimal.NewFromInt(100)))
		assert.True(t, resp.MonthlyTotals[2].Equal(decimal.NewFromFloat(250.50)))
		assert.True(t, resp.GrandTotal.Equal(decimal.NewFromFloat(350.50)))
	})

	t.Run("skips totals for deactivated accounts", func(t *testing.T) {
		paymentRepo := new(MockPaymentRepository)
		accountRepo := new(MockAccountRepository)
		service := NewPaymentMatrixService(paymentRepo, accountRepo)

		acme := testAccount(t, "Acme")
		accountRepo.On("FindAllActive", ctx).Return([]crm.Account{acme}, nil)
		paymentRepo.On("MonthlyTotalsByAccount", ctx, 2026).Return([]billing.AccountMonthTotal{
			{AccountID: acme.ID, Month: 2, Total: decimal.NewFromInt(10)},
			{AccountID: uuid.New(), Month: 2, Total: decimal.NewFromInt(999)},
		}, nil)

		resp, err := service.Generate(ctx, 2026)
		require.NoError(t, err)
		assert.True(t, resp.GrandTotal.Equal(decimal.NewFromInt(10)))
	})
}
