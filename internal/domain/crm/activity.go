package crm

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActivityType distinguishes tasks from calendar events
type ActivityType string

const (
	ActivityTypeTask  ActivityType = "Task"
	ActivityTypeEvent ActivityType = "Event"
)

// IsValid checks if the type is a valid ActivityType
func (t ActivityType) IsValid() bool {
	return t == ActivityTypeTask || t == ActivityTypeEvent
}

// TaskStatus is the progress state of a task activity
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "Not Started"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusWaiting    TaskStatus = "Waiting on someone else"
	TaskStatusDeferred   TaskStatus = "Deferred"
)

// TaskPriority is the urgency of a task activity
type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "High"
	TaskPriorityNormal TaskPriority = "Normal"
	TaskPriorityLow    TaskPriority = "Low"
)

// WhatKind identifies the business object an activity relates to
type WhatKind string

const (
	WhatAccount     WhatKind = "account"
	WhatOpportunity WhatKind = "opportunity"
	WhatContract    WhatKind = "contract"
	WhatOrder       WhatKind = "order"
	WhatInvoice     WhatKind = "invoice"
)

// WhatRef is the resolved "related to" association of an activity. The zero
// value means the activity is personal (no business object attached).
type WhatRef struct {
	Kind WhatKind
	ID   uuid.UUID
}

// IsZero reports whether no business object is attached
func (r WhatRef) IsZero() bool {
	return r.Kind == ""
}

// WhoKind identifies the person an activity relates to
type WhoKind string

const (
	WhoContact WhoKind = "contact"
	WhoLead    WhoKind = "lead"
)

// WhoRef is the resolved "name" association of an activity
type WhoRef struct {
	Kind WhoKind
	ID   uuid.UUID
}

// IsZero reports whether no person is attached
func (r WhoRef) IsZero() bool {
	return r.Kind == ""
}

// Activity represents a task or event. It links to at most one business
// object ("what") and at most one person association style ("who"); both
// constraints are enforced here and again by check constraints in the schema.
// Activities are hard-deleted under the version guard.
type Activity struct {
	shared.BaseAggregateRoot
	Type        ActivityType `gorm:"size:10;not null" json:"type"`
	Subject     string       `gorm:"size:255;not null" json:"subject"`
	Description string       `json:"description"`

	// Task fields
	Status   TaskStatus   `gorm:"size:50" json:"status"`
	Priority TaskPriority `gorm:"size:10" json:"priority"`
	DueDate  *time.Time   `json:"due_date"`

	// Event fields
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	IsAllDayEvent bool       `gorm:"not null;default:false" json:"is_all_day_event"`
	Location      string     `gorm:"size:255" json:"location"`

	AssignedToID uuid.UUID `gorm:"type:uuid;not null;index" json:"assigned_to_id"`

	// "What" relationship: at most one set
	AccountID     *uuid.UUID `gorm:"type:uuid;index" json:"account_id"`
	OpportunityID *uuid.UUID `gorm:"type:uuid;index" json:"opportunity_id"`
	ContractID    *uuid.UUID `gorm:"type:uuid;index" json:"contract_id"`
	OrderID       *uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	InvoiceID     *uuid.UUID `gorm:"type:uuid;index" json:"invoice_id"`

	// "Who" relationship, single-valued form: at most one set
	ContactID *uuid.UUID `gorm:"type:uuid;index" json:"contact_id"`
	LeadID    *uuid.UUID `gorm:"type:uuid;index" json:"lead_id"`

	// "Who" relationship, set-valued form: mutually exclusive with the
	// single-valued form and with each other
	Contacts []Contact `gorm:"many2many:activity_contacts" json:"contacts,omitempty"`
	Leads    []Lead    `gorm:"many2many:activity_leads" json:"leads,omitempty"`
}

// NewActivity creates a new activity assigned to a user
func NewActivity(activityType ActivityType, subject string, assignedTo uuid.UUID) (*Activity, error) {
	if !activityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Activity type must be Task or Event")
	}
	if subject == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot be empty")
	}
	if assignedTo == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ASSIGNEE", "Assigned user cannot be empty")
	}
	return &Activity{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              activityType,
		Subject:           subject,
		AssignedToID:      assignedTo,
	}, nil
}

// What resolves the business-object association with fixed priority:
// account, opportunity, contract, order, invoice. First non-null wins.
func (a *Activity) What() WhatRef {
	switch {
	case a.AccountID != nil:
		return WhatRef{Kind: WhatAccount, ID: *a.AccountID}
	case a.OpportunityID != nil:
		return WhatRef{Kind: WhatOpportunity, ID: *a.OpportunityID}
	case a.ContractID != nil:
		return WhatRef{Kind: WhatContract, ID: *a.ContractID}
	case a.OrderID != nil:
		return WhatRef{Kind: WhatOrder, ID: *a.OrderID}
	case a.InvoiceID != nil:
		return WhatRef{Kind: WhatInvoice, ID: *a.InvoiceID}
	}
	return WhatRef{}
}

// Who resolves the single-valued person association; contact wins over lead
func (a *Activity) Who() WhoRef {
	switch {
	case a.ContactID != nil:
		return WhoRef{Kind: WhoContact, ID: *a.ContactID}
	case a.LeadID != nil:
		return WhoRef{Kind: WhoLead, ID: *a.LeadID}
	}
	return WhoRef{}
}

// Validate enforces the association and event-time invariants
func (a *Activity) Validate() error {
	whatCount := 0
	for _, id := range []*uuid.UUID{a.AccountID, a.OpportunityID, a.ContractID, a.OrderID, a.InvoiceID} {
		if id != nil {
			whatCount++
		}
	}
	if whatCount > 1 {
		return shared.NewDomainError("INVALID_RELATION",
			"Only one 'Related To' relationship can be set (account, opportunity, contract, order, or invoice).")
	}

	whoForms := 0
	if a.ContactID != nil || a.LeadID != nil {
		whoForms++
	}
	if len(a.Contacts) > 0 || len(a.Leads) > 0 {
		whoForms++
	}
	if whoForms > 1 {
		return shared.NewDomainError("INVALID_RELATION",
			"The single-valued and set-valued 'Name' forms are mutually exclusive.")
	}
	if a.ContactID != nil && a.LeadID != nil {
		return shared.NewDomainError("INVALID_RELATION",
			"Only one 'Name' relationship can be set (contact or lead).")
	}
	if len(a.Contacts) > 0 && len(a.Leads) > 0 {
		return shared.NewDomainError("INVALID_RELATION",
			"An activity may reference a contact set or a lead set, not both.")
	}

	if a.Type == ActivityTypeEvent && a.StartTime != nil && a.EndTime != nil {
		if !a.EndTime.After(*a.StartTime) {
			return shared.NewDomainError("INVALID_TIME_RANGE",
				"End time must be after start time for events.")
		}
	}
	return nil
}
