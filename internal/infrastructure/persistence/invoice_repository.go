package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(database *Database) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: database.DB, lockTimeout: database.LockTimeout}
}

// FindByID finds an invoice with its line items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := dbFrom(ctx, r.db).
		Preload("LineItems").
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAll finds invoices matching the filter together with the total count
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, int64, error) {
	query := dbFrom(ctx, r.db).Model(&billing.Invoice{})
	query = applySearch(query, filter.Search, "invoice_number")
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if accountID, ok := filter.Filters["account_id"]; ok {
		query = query.Where("account_id = ?", accountID)
	}
	if active, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", active)
	}
	// Invoice visibility follows the owner of the billed account; invoices
	// without an account are visible to everyone.
	if userID, ok := filter.Filters["visible_to"]; ok {
		query = query.
			Joins("LEFT JOIN accounts ON accounts.id = invoices.account_id").
			Where("accounts.owner_id = ? OR invoices.account_id IS NULL", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []billing.Invoice
	if err := applyPagination(query, filter).Preload("LineItems").Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// ExistsForOrder reports whether an invoice was already generated from the order
func (r *GormInvoiceRepository) ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).
		Model(&billing.Invoice{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsForContractInWindow reports whether the contract already has an
// invoice issued inside the half-open billing window [start, end). The
// exclusive end keeps invoices issued with a time-of-day on the last day of
// the window from slipping past the check.
func (r *GormInvoiceRepository) ExistsForContractInWindow(ctx context.Context, contractID uuid.UUID, start, end time.Time) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).
		Model(&billing.Invoice{}).
		Where("contract_id = ? AND issue_date >= ? AND issue_date < ?", contractID, start, end).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextInvoiceNumber allocates the next number in the INV-NNNNN sequence
func (r *GormInvoiceRepository) NextInvoiceNumber(ctx context.Context) (string, error) {
	var last string
	err := dbFrom(ctx, r.db).
		Model(&billing.Invoice{}).
		Select("invoice_number").
		Order("invoice_number DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	next := 1
	if last != "" {
		var n int
		if _, err := fmt.Sscanf(last, "INV-%d", &n); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("INV-%05d", next), nil
}

// Save creates or updates an invoice together with its line items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return dbFrom(ctx, r.db).Save(invoice).Error
}

// UpdateWithVersion applies mutate to the locked row under the version guard
func (r *GormInvoiceRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*billing.Invoice) error) (*billing.Invoice, error) {
	var invoice *billing.Invoice
	err := transact(ctx, r.db, func(tx *gorm.DB) error {
		var err error
		invoice, err = updateGuarded[billing.Invoice](tx, r.lockTimeout, id, clientVersion, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// DeactivateWithVersion soft-deletes under the version guard
func (r *GormInvoiceRepository) DeactivateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	return transact(ctx, r.db, func(tx *gorm.DB) error {
		return deactivateGuarded[billing.Invoice](tx, r.lockTimeout, id, clientVersion)
	})
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
