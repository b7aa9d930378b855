package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContract(t *testing.T) {
	accountID := uuid.New()
	oppID := uuid.New()
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	t.Run("creates contract with valid inputs", func(t *testing.T) {
		contract, err := NewContract(accountID, oppID, start, end, BillingCycleMonthly, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusAwaitingPayment, contract.Status)
		assert.Equal(t, accountID, contract.AccountID)
		require.NotNil(t, contract.OpportunityID)
		assert.Equal(t, oppID, *contract.OpportunityID)
	})

	t.Run("rejects invalid billing cycle", func(t *testing.T) {
		_, err := NewContract(accountID, oppID, start, end, "Weekly", nil)
		require.Error(t, err)
	})

	t.Run("rejects end date not after start date", func(t *testing.T) {
		_, err := NewContract(accountID, oppID, start, start, BillingCycleMonthly, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "end date must be after start date")
	})
}

func TestContractCurrentBillingWindow(t *testing.T) {
	accountID := uuid.New()
	oppID := uuid.New()
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(2, 0, 0)

	t.Run("monthly window spans the calendar month", func(t *testing.T) {
		contract, err := NewContract(accountID, oppID, start, end, BillingCycleMonthly, nil)
		require.NoError(t, err)

		now := time.Date(2026, time.February, 14, 12, 30, 0, 0, time.UTC)
		windowStart, windowEnd := contract.CurrentBillingWindow(now)

		assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), windowStart)
		assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), windowEnd)
	})

	t.Run("monthly window handles 31-day months", func(t *testing.T) {
		contract, err := NewContract(accountID, oppID, start, end, BillingCycleMonthly, nil)
		require.NoError(t, err)

		now := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
		_, windowEnd := contract.CurrentBillingWindow(now)
		assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), windowEnd)
	})

	t.Run("a timestamp late on the last day stays inside the window", func(t *testing.T) {
		contract, err := NewContract(accountID, oppID, start, end, BillingCycleMonthly, nil)
		require.NoError(t, err)

		now := time.Date(2026, time.March, 31, 15, 0, 0, 0, time.UTC)
		windowStart, windowEnd := contract.CurrentBillingWindow(now)

		assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), windowStart)
		assert.True(t, now.Before(windowEnd), "window end %s must be after %s", windowEnd, now)
	})

	t.Run("annual window spans the calendar year", func(t *testing.T) {
		contract, err := NewContract(accountID, oppID, start, end, BillingCycleAnnually, nil)
		require.NoError(t, err)

		now := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
		windowStart, windowEnd := contract.CurrentBillingWindow(now)

		assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), windowStart)
		assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), windowEnd)
	})
}

func TestContractLineItems(t *testing.T) {
	contract, err := NewContract(uuid.New(), uuid.New(),
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		BillingCycleMonthly, nil)
	require.NoError(t, err)

	require.NoError(t, contract.AddLineItem(uuid.New(), 3, decimal.NewFromInt(200)))
	require.NoError(t, contract.AddLineItem(uuid.New(), 1, decimal.NewFromFloat(99.50)))

	assert.True(t, contract.TotalAmountPerCycle().Equal(decimal.NewFromFloat(699.50)),
		"total was %s", contract.TotalAmountPerCycle())
}
