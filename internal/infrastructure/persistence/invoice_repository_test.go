package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBillingTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&billing.Invoice{}, &billing.InvoiceLineItem{}))
	return &Database{DB: db}
}

func savedContractInvoice(t *testing.T, ctx context.Context, repo *GormInvoiceRepository, number string, contractID uuid.UUID, issueDate time.Time) *billing.Invoice {
	t.Helper()
	invoice, err := billing.NewInvoice(number, issueDate, issueDate.AddDate(0, 0, 30))
	require.NoError(t, err)
	invoice.ContractID = &contractID
	require.NoError(t, repo.Save(ctx, invoice))
	return invoice
}

func TestExistsForContractInWindow(t *testing.T) {
	ctx := context.Background()
	windowStart := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	t.Run("finds an invoice issued late on the last day of the window", func(t *testing.T) {
		repo := NewGormInvoiceRepository(newBillingTestDatabase(t))
		contractID := uuid.New()
		savedContractInvoice(t, ctx, repo, "INV-00001", contractID,
			time.Date(2026, time.March, 31, 15, 0, 0, 0, time.UTC))

		exists, err := repo.ExistsForContractInWindow(ctx, contractID, windowStart, windowEnd)
		require.NoError(t, err)
		assert.True(t, exists, "an invoice with a time-of-day on the last day belongs to the window")
	})

	t.Run("ignores an invoice issued in the next window", func(t *testing.T) {
		repo := NewGormInvoiceRepository(newBillingTestDatabase(t))
		contractID := uuid.New()
		savedContractInvoice(t, ctx, repo, "INV-00002", contractID,
			time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))

		exists, err := repo.ExistsForContractInWindow(ctx, contractID, windowStart, windowEnd)
		require.NoError(t, err)
		assert.False(t, exists, "the window end is exclusive")
	})

	t.Run("ignores invoices of other contracts", func(t *testing.T) {
		repo := NewGormInvoiceRepository(newBillingTestDatabase(t))
		savedContractInvoice(t, ctx, repo, "INV-00003", uuid.New(),
			time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC))

		exists, err := repo.ExistsForContractInWindow(ctx, uuid.New(), windowStart, windowEnd)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
