package report

import (
	"context"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	minReportYear = 2000
	maxReportYear = 2100
)

// PaymentMatrixRow is one account's received payments broken down by month
type PaymentMatrixRow struct {
	AccountID     uuid.UUID           `json:"account_id"`
	AccountName   string              `json:"account_name"`
	MonthlyTotals [12]decimal.Decimal `json:"monthly_totals"`
	YearTotal     decimal.Decimal     `json:"year_total"`
}

// PaymentMatrixResponse is the account-by-month payment report for one year.
// Every active account appears, zero-filled when it received nothing.
type PaymentMatrixResponse struct {
	Year          int                 `json:"year"`
	Rows          []PaymentMatrixRow  `json:"rows"`
	MonthlyTotals [12]decimal.Decimal `json:"monthly_totals"`
	GrandTotal    decimal.Decimal     `json:"grand_total"`
}

// PaymentMatrixService builds the account-by-month payment report
type PaymentMatrixService struct {
	paymentRepo billing.PaymentRepository
	accountRepo crm.AccountRepository
}

// NewPaymentMatrixService creates a new PaymentMatrixService
func NewPaymentMatrixService(paymentRepo billing.PaymentRepository, accountRepo crm.AccountRepository) *PaymentMatrixService {
	return &PaymentMatrixService{paymentRepo: paymentRepo, accountRepo: accountRepo}
}

// Generate builds the payment matrix for the given year. Pending and
// completed payments count; failed payments do not. Accounts are ordered by
// name as returned by the account repository.
func (s *PaymentMatrixService) Generate(ctx context.Context, year int) (*PaymentMatrixResponse, error) {
	if year < minReportYear || year > maxReportYear {
		return nil, shared.NewDomainError("INVALID_YEAR", "Report year must be between 2000 and 2100")
	}

	accounts, err := s.accountRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.paymentRepo.MonthlyTotalsByAccount(ctx, year)
	if err != nil {
		return nil, err
	}

	byAccount := make(map[uuid.UUID]*[12]decimal.Decimal, len(accounts))
	resp := &PaymentMatrixResponse{
		Year: year,
		Rows: make([]PaymentMatrixRow, len(accounts)),
	}
	for i := range accounts {
		row := &resp.Rows[i]
		row.AccountID = accounts[i].ID
		row.AccountName = accounts[i].Name
		for m := range row.MonthlyTotals {
			row.MonthlyTotals[m] = decimal.Zero
		}
		row.YearTotal = decimal.Zero
		byAccount[accounts[i].ID] = &row.MonthlyTotals
	}
	for m := range resp.MonthlyTotals {
		resp.MonthlyTotals[m] = decimal.Zero
	}
	resp.GrandTotal = decimal.Zero

	for _, t := range totals {
		months, ok := byAccount[t.AccountID]
		if !ok {
			// payment against a deactivated account, not reported
			continue
		}
		if t.Month < 1 || t.Month > 12 {
			continue
		}
		months[t.Month-1] = months[t.Month-1].Add(t.Total)
	}

	for i := range resp.Rows {
		row := &resp.Rows[i]
		for m := range row.MonthlyTotals {
			row.YearTotal = row.YearTotal.Add(row.MonthlyTotals[m])
			resp.MonthlyTotals[m] = resp.MonthlyTotals[m].Add(row.MonthlyTotals[m])
		}
		resp.GrandTotal = resp.GrandTotal.Add(row.YearTotal)
	}
	return resp, nil
}
