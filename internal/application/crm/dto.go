package crm

import (
	"time"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Account DTOs
// =============================================================================

// CreateAccountRequest represents a request to create a new account
type CreateAccountRequest struct {
	Name            string     `json:"name" binding:"required,min=1,max=255"`
	Phone           string     `json:"phone" binding:"max=50"`
	Website         string     `json:"website" binding:"max=255"`
	Type            string     `json:"type" binding:"omitempty,oneof=prospect customer partner competitor"`
	BillingAddress  string     `json:"billing_address"`
	ShippingAddress string     `json:"shipping_address"`
	ParentAccountID *uuid.UUID `json:"parent_account_id"`
	OwnerID         uuid.UUID  `json:"-"` // Set from JWT context, not from request body
}

// UpdateAccountRequest represents a version-guarded account update
type UpdateAccountRequest struct {
	Version         int        `json:"version" binding:"required,min=1"`
	Name            *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Phone           *string    `json:"phone" binding:"omitempty,max=50"`
	Website         *string    `json:"website" binding:"omitempty,max=255"`
	Type            *string    `json:"type" binding:"omitempty,oneof=prospect customer partner competitor"`
	BillingAddress  *string    `json:"billing_address"`
	ShippingAddress *string    `json:"shipping_address"`
	ParentAccountID *uuid.UUID `json:"parent_account_id"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Website         string     `json:"website"`
	Type            string     `json:"type"`
	BillingAddress  string     `json:"billing_address"`
	ShippingAddress string     `json:"shipping_address"`
	ParentAccountID *uuid.UUID `json:"parent_account_id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	IsActive        bool       `json:"is_active"`
	Version         int        `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToAccountResponse converts a domain account to a response
func ToAccountResponse(a *crm.Account) AccountResponse {
	return AccountResponse{
		ID:              a.ID,
		Name:            a.Name,
		Phone:           a.Phone,
		Website:         a.Website,
		Type:            a.Type.String(),
		BillingAddress:  a.BillingAddress,
		ShippingAddress: a.ShippingAddress,
		ParentAccountID: a.ParentAccountID,
		OwnerID:         a.OwnerID,
		IsActive:        a.Active,
		Version:         a.Version,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// =============================================================================
// Contact DTOs
// =============================================================================

// CreateContactRequest represents a request to create a new contact
type CreateContactRequest struct {
	AccountID   uuid.UUID  `json:"account_id" binding:"required"`
	FirstName   string     `json:"first_name" binding:"max=100"`
	LastName    string     `json:"last_name" binding:"required,min=1,max=100"`
	Title       string     `json:"title" binding:"max=100"`
	Email       string     `json:"email" binding:"omitempty,email,max=255"`
	Phone       string     `json:"phone" binding:"max=50"`
	Description string     `json:"description"`
	ReportsToID *uuid.UUID `json:"reports_to_id"`
	OwnerID     uuid.UUID  `json:"-"`
}

// UpdateContactRequest represents a version-guarded contact update
type UpdateContactRequest struct {
	Version     int        `json:"version" binding:"required,min=1"`
	FirstName   *string    `json:"first_name" binding:"omitempty,max=100"`
	LastName    *string    `json:"last_name" binding:"omitempty,min=1,max=100"`
	Title       *string    `json:"title" binding:"omitempty,max=100"`
	Email       *string    `json:"email" binding:"omitempty,email,max=255"`
	Phone       *string    `json:"phone" binding:"omitempty,max=50"`
	Description *string    `json:"description"`
	ReportsToID *uuid.UUID `json:"reports_to_id"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	Title       string     `json:"title"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Description string     `json:"description"`
	ReportsToID *uuid.UUID `json:"reports_to_id"`
	AccountID   uuid.UUID  `json:"account_id"`
	OwnerID     *uuid.UUID `json:"owner_id"`
	IsActive    bool       `json:"is_active"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToContactResponse converts a domain contact to a response
func ToContactResponse(c *crm.Contact) ContactResponse {
	return ContactResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		FullName:    c.FullName(),
		Title:       c.Title,
		Email:       c.Email,
		Phone:       c.Phone,
		Description: c.Description,
		ReportsToID: c.ReportsToID,
		AccountID:   c.AccountID,
		OwnerID:     c.OwnerID,
		IsActive:    c.Active,
		Version:     c.Version,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// =============================================================================
// Lead DTOs
// =============================================================================

// CreateLeadRequest represents a request to create a new lead
type CreateLeadRequest struct {
	FirstName       string    `json:"first_name" binding:"max=255"`
	LastName        string    `json:"last_name" binding:"required,min=1,max=255"`
	Company         string    `json:"company" binding:"required,min=1,max=255"`
	Title           string    `json:"title" binding:"max=100"`
	Email           string    `json:"email" binding:"omitempty,email,max=255"`
	Phone           string    `json:"phone" binding:"max=50"`
	Website         string    `json:"website" binding:"max=255"`
	BillingAddress  string    `json:"billing_address"`
	ShippingAddress string    `json:"shipping_address"`
	Source          string    `json:"lead_source" binding:"omitempty,oneof=Website Referral Partner 'Cold Call' Other"`
	Industry        string    `json:"industry" binding:"max=100"`
	OwnerID         uuid.UUID `json:"-"`
}

// UpdateLeadRequest represents a version-guarded lead update
type UpdateLeadRequest struct {
	Version         int     `json:"version" binding:"required,min=1"`
	FirstName       *string `json:"first_name" binding:"omitempty,max=255"`
	LastName        *string `json:"last_name" binding:"omitempty,min=1,max=255"`
	Company         *string `json:"company" binding:"omitempty,min=1,max=255"`
	Title           *string `json:"title" binding:"omitempty,max=100"`
	Email           *string `json:"email" binding:"omitempty,email,max=255"`
	Phone           *string `json:"phone" binding:"omitempty,max=50"`
	Website         *string `json:"website" binding:"omitempty,max=255"`
	BillingAddress  *string `json:"billing_address"`
	ShippingAddress *string `json:"shipping_address"`
	Status          *string `json:"status" binding:"omitempty,oneof=New Contacted Qualified"`
	Source          *string `json:"lead_source" binding:"omitempty,oneof=Website Referral Partner 'Cold Call' Other"`
	Industry        *string `json:"industry" binding:"omitempty,max=100"`
}

// ConvertLeadRequest represents a request to convert a lead
type ConvertLeadRequest struct {
	Version              int        `json:"version" binding:"required,min=1"`
	CreateOpportunity    bool       `json:"create_opportunity"`
	OpportunityName      string     `json:"opportunity_name" binding:"max=255"`
	OpportunityCloseDate *time.Time `json:"opportunity_close_date"`
}

// LeadResponse represents a lead in API responses
type LeadResponse struct {
	ID              uuid.UUID `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Company         string    `json:"company"`
	Title           string    `json:"title"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Website         string    `json:"website"`
	BillingAddress  string    `json:"billing_address"`
	ShippingAddress string    `json:"shipping_address"`
	Status          string    `json:"status"`
	Source          string    `json:"lead_source"`
	Industry        string    `json:"industry"`
	OwnerID         uuid.UUID `json:"owner_id"`
	IsActive        bool      `json:"is_active"`
	Version         int       `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToLeadResponse converts a domain lead to a response
func ToLeadResponse(l *crm.Lead) LeadResponse {
	return LeadResponse{
		ID:              l.ID,
		FirstName:       l.FirstName,
		LastName:        l.LastName,
		Company:         l.Company,
		Title:           l.Title,
		Email:           l.Email,
		Phone:           l.Phone,
		Website:         l.Website,
		BillingAddress:  l.BillingAddress,
		ShippingAddress: l.ShippingAddress,
		Status:          l.Status.String(),
		Source:          string(l.Source),
		Industry:        l.Industry,
		OwnerID:         l.OwnerID,
		IsActive:        l.Active,
		Version:         l.Version,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// ConvertLeadResponse carries the records spawned by a lead conversion
type ConvertLeadResponse struct {
	Lead        LeadResponse         `json:"lead"`
	Account     AccountResponse      `json:"account"`
	Contact     ContactResponse      `json:"contact"`
	Opportunity *OpportunityResponse `json:"opportunity,omitempty"`
}

// =============================================================================
// Opportunity DTOs
// =============================================================================

// CreateOpportunityRequest represents a request to create a new opportunity
type CreateOpportunityRequest struct {
	AccountID   uuid.UUID  `json:"account_id" binding:"required"`
	Name        string     `json:"name" binding:"required,min=1,max=255"`
	CloseDate   *time.Time `json:"close_date"`
	NextStep    string     `json:"next_step"`
	Description string     `json:"description"`
	OwnerID     uuid.UUID  `json:"-"`
}

// UpdateOpportunityRequest represents a version-guarded opportunity update
type UpdateOpportunityRequest struct {
	Version     int        `json:"version" binding:"required,min=1"`
	Name        *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Stage       *string    `json:"stage" binding:"omitempty,oneof=qualification meet_present proposal negotiation closed_won closed_lost"`
	CloseDate   *time.Time `json:"close_date"`
	NextStep    *string    `json:"next_step"`
	Description *string    `json:"description"`
}

// AddLineItemRequest represents a request to add a product to an opportunity
type AddLineItemRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	Price     *decimal.Decimal `json:"price"` // Defaults to the product's standard list price
}

// UpdateLineItemRequest represents a version-guarded line item update
type UpdateLineItemRequest struct {
	Version  int              `json:"version" binding:"required,min=1"`
	Quantity *int             `json:"quantity" binding:"omitempty,min=1"`
	Price    *decimal.Decimal `json:"price"`
}

// LineItemResponse represents an opportunity line item in API responses
type LineItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	OpportunityID uuid.UUID       `json:"opportunity_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Amount        decimal.Decimal `json:"amount"`
	Version       int             `json:"version"`
}

// ToLineItemResponse converts a domain line item to a response
func ToLineItemResponse(i *crm.OpportunityLineItem) LineItemResponse {
	return LineItemResponse{
		ID:            i.ID,
		OpportunityID: i.OpportunityID,
		ProductID:     i.ProductID,
		Quantity:      i.Quantity,
		Price:         i.Price,
		Amount:        i.Amount(),
		Version:       i.Version,
	}
}

// OpportunityResponse represents an opportunity in API responses
type OpportunityResponse struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Stage       string             `json:"stage"`
	CloseDate   *time.Time         `json:"close_date"`
	NextStep    string             `json:"next_step"`
	Description string             `json:"description"`
	AccountID   uuid.UUID          `json:"account_id"`
	OwnerID     *uuid.UUID         `json:"owner_id"`
	Amount      decimal.Decimal    `json:"amount"`
	LineItems   []LineItemResponse `json:"line_items"`
	IsActive    bool               `json:"is_active"`
	Version     int                `json:"version"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ToOpportunityResponse converts a domain opportunity to a response
func ToOpportunityResponse(o *crm.Opportunity) OpportunityResponse {
	items := make([]LineItemResponse, len(o.LineItems))
	for i := range o.LineItems {
		items[i] = ToLineItemResponse(&o.LineItems[i])
	}
	return OpportunityResponse{
		ID:          o.ID,
		Name:        o.Name,
		Stage:       o.Stage.String(),
		CloseDate:   o.CloseDate,
		NextStep:    o.NextStep,
		Description: o.Description,
		AccountID:   o.AccountID,
		OwnerID:     o.OwnerID,
		Amount:      o.TotalAmount(),
		LineItems:   items,
		IsActive:    o.Active,
		Version:     o.Version,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// =============================================================================
// Activity DTOs
// =============================================================================

// CreateActivityRequest represents a request to create a new activity
type CreateActivityRequest struct {
	Type        string `json:"type" binding:"required,oneof=Task Event"`
	Subject     string `json:"subject" binding:"required,min=1,max=255"`
	Description string `json:"description"`

	Status   string     `json:"status" binding:"omitempty,oneof='Not Started' 'In Progress' Completed 'Waiting on someone else' Deferred"`
	Priority string     `json:"priority" binding:"omitempty,oneof=High Normal Low"`
	DueDate  *time.Time `json:"due_date"`

	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	IsAllDayEvent bool       `json:"is_all_day_event"`
	Location      string     `json:"location" binding:"max=255"`

	AccountID     *uuid.UUID `json:"account_id"`
	OpportunityID *uuid.UUID `json:"opportunity_id"`
	ContractID    *uuid.UUID `json:"contract_id"`
	OrderID       *uuid.UUID `json:"order_id"`
	InvoiceID     *uuid.UUID `json:"invoice_id"`

	ContactID  *uuid.UUID  `json:"contact_id"`
	LeadID     *uuid.UUID  `json:"lead_id"`
	ContactIDs []uuid.UUID `json:"contact_ids"`
	LeadIDs    []uuid.UUID `json:"lead_ids"`

	AssignedToID uuid.UUID `json:"-"`
}

// UpdateActivityRequest represents a version-guarded activity update
type UpdateActivityRequest struct {
	Version     int     `json:"version" binding:"required,min=1"`
	Subject     *string `json:"subject" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`

	Status   *string    `json:"status" binding:"omitempty,oneof='Not Started' 'In Progress' Completed 'Waiting on someone else' Deferred"`
	Priority *string    `json:"priority" binding:"omitempty,oneof=High Normal Low"`
	DueDate  *time.Time `json:"due_date"`

	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Location  *string    `json:"location" binding:"omitempty,max=255"`
}

// RelationRef names one end of a resolved activity association
type RelationRef struct {
	Kind string    `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

// ActivityResponse represents an activity in API responses. What and Who are
// the resolved associations; the raw foreign keys stay internal.
type ActivityResponse struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`

	Status   string     `json:"status,omitempty"`
	Priority string     `json:"priority,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`

	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	IsAllDayEvent bool       `json:"is_all_day_event"`
	Location      string     `json:"location,omitempty"`

	AssignedToID uuid.UUID     `json:"assigned_to_id"`
	What         *RelationRef  `json:"what,omitempty"`
	Who          *RelationRef  `json:"who,omitempty"`
	ContactIDs   []uuid.UUID   `json:"contact_ids,omitempty"`
	LeadIDs      []uuid.UUID   `json:"lead_ids,omitempty"`
	Version      int           `json:"version"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ToActivityResponse converts a domain activity to a response
func ToActivityResponse(a *crm.Activity) ActivityResponse {
	resp := ActivityResponse{
		ID:            a.ID,
		Type:          string(a.Type),
		Subject:       a.Subject,
		Description:   a.Description,
		Status:        string(a.Status),
		Priority:      string(a.Priority),
		DueDate:       a.DueDate,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		IsAllDayEvent: a.IsAllDayEvent,
		Location:      a.Location,
		AssignedToID:  a.AssignedToID,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if what := a.What(); !what.IsZero() {
		resp.What = &RelationRef{Kind: string(what.Kind), ID: what.ID}
	}
	if who := a.Who(); !who.IsZero() {
		resp.Who = &RelationRef{Kind: string(who.Kind), ID: who.ID}
	}
	for i := range a.Contacts {
		resp.ContactIDs = append(resp.ContactIDs, a.Contacts[i].ID)
	}
	for i := range a.Leads {
		resp.LeadIDs = append(resp.LeadIDs, a.Leads[i].ID)
	}
	return resp
}

// =============================================================================
// Listing
// =============================================================================

// ListFilter carries common listing query parameters
type ListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Search   string `form:"search"`
}
