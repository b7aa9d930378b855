package billing

import (
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateOrderRequest derives an order from a closed-won opportunity. The
// opportunity ID comes from the URL path.
type GenerateOrderRequest struct {
	OpportunityID uuid.UUID `json:"-"`
}

// UpdateOrderRequest carries a version-guarded order patch
type UpdateOrderRequest struct {
	Version int     `json:"version" binding:"required,min=1"`
	Status  *string `json:"status" binding:"omitempty,oneof='Awaiting Payment' 'Partially Paid' 'Paid in Full' Fulfilled Cancelled"`
}

// OrderLineItemResponse is a line item in order responses
type OrderLineItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	Amount          decimal.Decimal `json:"amount"`
}

// OrderResponse is the order representation returned by the API
type OrderResponse struct {
	ID            uuid.UUID               `json:"id"`
	OrderDate     time.Time               `json:"order_date"`
	Status        string                  `json:"status"`
	AccountID     uuid.UUID               `json:"account_id"`
	OpportunityID *uuid.UUID              `json:"opportunity_id,omitempty"`
	OwnerID       *uuid.UUID              `json:"owner_id,omitempty"`
	TotalAmount   decimal.Decimal         `json:"total_amount"`
	LineItems     []OrderLineItemResponse `json:"line_items"`
	IsActive      bool                    `json:"is_active"`
	Version       int                     `json:"version"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// GenerateContractRequest derives a contract from a closed-won opportunity.
// The opportunity ID comes from the URL path.
type GenerateContractRequest struct {
	OpportunityID uuid.UUID `json:"-"`
	StartDate     time.Time `json:"start_date" binding:"required"`
	EndDate       time.Time `json:"end_date" binding:"required"`
	BillingCycle  string    `json:"billing_cycle" binding:"required,oneof=Monthly Annually"`
}

// UpdateContractRequest carries a version-guarded contract patch
type UpdateContractRequest struct {
	Version   int        `json:"version" binding:"required,min=1"`
	Status    *string    `json:"status" binding:"omitempty,oneof='Awaiting Payment' 'Partially Paid' 'Paid in Full' Fulfilled Cancelled"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// ContractLineItemResponse is a line item in contract responses
type ContractLineItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      int             `json:"quantity"`
	PricePerCycle decimal.Decimal `json:"price_per_cycle"`
	Amount        decimal.Decimal `json:"amount"`
}

// ContractResponse is the contract representation returned by the API
type ContractResponse struct {
	ID             uuid.UUID                  `json:"id"`
	Status         string                     `json:"status"`
	StartDate      time.Time                  `json:"start_date"`
	EndDate        time.Time                  `json:"end_date"`
	BillingCycle   string                     `json:"billing_cycle"`
	AccountID      uuid.UUID                  `json:"account_id"`
	OpportunityID  *uuid.UUID                 `json:"opportunity_id,omitempty"`
	OwnerID        *uuid.UUID                 `json:"owner_id,omitempty"`
	AmountPerCycle decimal.Decimal            `json:"amount_per_cycle"`
	LineItems      []ContractLineItemResponse `json:"line_items"`
	IsActive       bool                       `json:"is_active"`
	Version        int                        `json:"version"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// GenerateInvoiceFromOrderRequest derives an invoice from an order. The
// order ID comes from the URL path.
type GenerateInvoiceFromOrderRequest struct {
	OrderID uuid.UUID `json:"-"`
}

// GenerateInvoiceFromContractRequest derives an invoice for the current
// billing window of a contract. The contract ID comes from the URL path;
// DueDate overrides the default due date (the last day of the window) and
// must not be before the issue date.
type GenerateInvoiceFromContractRequest struct {
	ContractID uuid.UUID  `json:"-"`
	DueDate    *time.Time `json:"due_date"`
}

// UpdateInvoiceRequest carries a version-guarded invoice patch
type UpdateInvoiceRequest struct {
	Version int        `json:"version" binding:"required,min=1"`
	DueDate *time.Time `json:"due_date"`
	Notes   *string    `json:"notes"`
}

// InvoiceLineItemResponse is a line item in invoice responses
type InvoiceLineItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// InvoiceResponse is the invoice representation returned by the API
type InvoiceResponse struct {
	ID            uuid.UUID                 `json:"id"`
	InvoiceNumber string                    `json:"invoice_number"`
	IssueDate     time.Time                 `json:"issue_date"`
	DueDate       time.Time                 `json:"due_date"`
	TotalAmount   decimal.Decimal           `json:"total_amount"`
	BalanceDue    decimal.Decimal           `json:"balance_due"`
	Status        string                    `json:"status"`
	AccountID     *uuid.UUID                `json:"account_id,omitempty"`
	OrderID       *uuid.UUID                `json:"order_id,omitempty"`
	ContractID    *uuid.UUID                `json:"contract_id,omitempty"`
	Notes         string                    `json:"notes"`
	LineItems     []InvoiceLineItemResponse `json:"line_items"`
	IsActive      bool                      `json:"is_active"`
	Version       int                       `json:"version"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// LogPaymentRequest records money against an invoice. Version is the client's
// invoice version; the payment and the invoice balance adjustment commit
// together.
type LogPaymentRequest struct {
	Version       int             `json:"version" binding:"required,min=1"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate   *time.Time      `json:"payment_date"`
	Method        string          `json:"payment_method" binding:"required,oneof=CREDIT_CARD CASH CHECK WIRE OTHER"`
	Status        *string         `json:"status" binding:"omitempty,oneof=PENDING COMPLETED FAILED"`
	TransactionID string          `json:"transaction_id"`
	Notes         string          `json:"notes"`
}

// UpdatePaymentRequest carries a version-guarded payment patch. Changing the
// status does not readjust the invoice balance.
type UpdatePaymentRequest struct {
	Version       int     `json:"version" binding:"required,min=1"`
	Status        *string `json:"status" binding:"omitempty,oneof=PENDING COMPLETED FAILED"`
	TransactionID *string `json:"transaction_id"`
	Notes         *string `json:"notes"`
}

// PaymentResponse is the payment representation returned by the API
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	Method        string          `json:"payment_method"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
	Notes         string          `json:"notes"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ListFilter carries the common list query parameters
type ListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Search   string `form:"search"`
}

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

// ToOrderResponse converts a domain order to its API representation
func ToOrderResponse(order *billing.Order) OrderResponse {
	items := make([]OrderLineItemResponse, len(order.LineItems))
	for i := range order.LineItems {
		item := &order.LineItems[i]
		items[i] = OrderLineItemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			Amount:          item.Amount(),
		}
	}
	return OrderResponse{
		ID:            order.ID,
		OrderDate:     order.OrderDate,
		Status:        order.Status.String(),
		AccountID:     order.AccountID,
		OpportunityID: order.OpportunityID,
		OwnerID:       order.OwnerID,
		TotalAmount:   order.TotalAmount(),
		LineItems:     items,
		IsActive:      order.Active,
		Version:       order.Version,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

// ToContractResponse converts a domain contract to its API representation
func ToContractResponse(contract *billing.Contract) ContractResponse {
	items := make([]ContractLineItemResponse, len(contract.LineItems))
	for i := range contract.LineItems {
		item := &contract.LineItems[i]
		items[i] = ContractLineItemResponse{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			PricePerCycle: item.PricePerCycle,
			Amount:        item.Amount(),
		}
	}
	return ContractResponse{
		ID:             contract.ID,
		Status:         contract.Status.String(),
		StartDate:      contract.StartDate,
		EndDate:        contract.EndDate,
		BillingCycle:   string(contract.BillingCycle),
		AccountID:      contract.AccountID,
		OpportunityID:  contract.OpportunityID,
		OwnerID:        contract.OwnerID,
		AmountPerCycle: contract.TotalAmountPerCycle(),
		LineItems:      items,
		IsActive:       contract.Active,
		Version:        contract.Version,
		CreatedAt:      contract.CreatedAt,
		UpdatedAt:      contract.UpdatedAt,
	}
}

// ToInvoiceResponse converts a domain invoice to its API representation
func ToInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	items := make([]InvoiceLineItemResponse, len(invoice.LineItems))
	for i := range invoice.LineItems {
		item := &invoice.LineItems[i]
		items[i] = InvoiceLineItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Amount:    item.Amount(),
		}
	}
	return InvoiceResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		IssueDate:     invoice.IssueDate,
		DueDate:       invoice.DueDate,
		TotalAmount:   invoice.TotalAmount(),
		BalanceDue:    invoice.BalanceDue,
		Status:        invoice.Status.String(),
		AccountID:     invoice.AccountID,
		OrderID:       invoice.OrderID,
		ContractID:    invoice.ContractID,
		Notes:         invoice.Notes,
		LineItems:     items,
		IsActive:      invoice.Active,
		Version:       invoice.Version,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}
}

// ToPaymentResponse converts a domain payment to its API representation
func ToPaymentResponse(payment *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            payment.ID,
		Amount:        payment.Amount,
		PaymentDate:   payment.PaymentDate,
		Method:        string(payment.Method),
		Status:        string(payment.Status),
		TransactionID: payment.TransactionID,
		Notes:         payment.Notes,
		InvoiceID:     payment.InvoiceID,
		AccountID:     payment.AccountID,
		Version:       payment.Version,
		CreatedAt:     payment.CreatedAt,
		UpdatedAt:     payment.UpdatedAt,
	}
}
