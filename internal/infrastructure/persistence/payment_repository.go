package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(database *Database) *GormPaymentRepository {
	return &GormPaymentRepository{db: database.DB, lockTimeout: database.LockTimeout}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var payment billing.Payment
	if err := dbFrom(ctx, r.db).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByInvoice finds all payments logged against an invoice
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var payments []billing.Payment
	if err := dbFrom(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindAll finds payments matching the filter together with the total count
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Payment, int64, error) {
	query := dbFrom(ctx, r.db).Model(&billing.Payment{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if accountID, ok := filter.Filters["account_id"]; ok {
		query = query.Where("account_id = ?", accountID)
	}
	if method, ok := filter.Filters["payment_method"]; ok {
		query = query.Where("payment_method = ?", method)
	}
	// Payment visibility follows the owner of the paying account.
	if userID, ok := filter.Filters["visible_to"]; ok {
		query = query.
			Joins("JOIN accounts ON accounts.id = payments.account_id").
			Where("accounts.owner_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []billing.Payment
	if err := applyPagination(query, filter).Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	return dbFrom(ctx, r.db).Save(payment).Error
}

// UpdateWithVersion applies mutate to the locked row under the version guard
func (r *GormPaymentRepository) UpdateWithVersion(ctx context.Context, id uuid.UUID, clientVersion int, mutate func(*billing.Payment) error) (*billing.Payment, error) {
	var payment *billing.Payment
	err := transact(ctx, r.db, func(tx *gorm.DB) error {
		var err error
		payment, err = updateGuarded[billing.Payment](tx, r.lockTimeout, id, clientVersion, mutate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// DeleteWithVersion hard-deletes under the version guard
func (r *GormPaymentRepository) DeleteWithVersion(ctx context.Context, id uuid.UUID, clientVersion int) error {
	return transact(ctx, r.db, func(tx *gorm.DB) error {
		return deleteGuarded[billing.Payment](tx, r.lockTimeout, id, clientVersion)
	})
}

// MonthlyTotalsByAccount sums non-failed payments per account and calendar
// month for the given year. Failed payments never count toward revenue.
func (r *GormPaymentRepository) MonthlyTotalsByAccount(ctx context.Context, year int) ([]billing.AccountMonthTotal, error) {
	db := dbFrom(ctx, r.db)

	monthExpr := "CAST(EXTRACT(MONTH FROM payment_date) AS INTEGER)"
	if db.Dialector.Name() == "sqlite" {
		monthExpr = "CAST(strftime('%m', payment_date) AS INTEGER)"
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var rows []billing.AccountMonthTotal
	err := db.Model(&billing.Payment{}).
		Select("account_id AS account_id, "+monthExpr+" AS month, SUM(amount) AS total").
		Where("status <> ? AND payment_date >= ? AND payment_date < ?", billing.PaymentStatusFailed, from, to).
		Group("account_id, " + monthExpr).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
