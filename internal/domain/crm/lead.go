package crm

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadStatus is a one-way state machine; Converted is terminal.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "New"
	LeadStatusContacted LeadStatus = "Contacted"
	LeadStatusQualified LeadStatus = "Qualified"
	LeadStatusConverted LeadStatus = "Converted"
)

// IsValid checks if the status is a valid LeadStatus
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted:
		return true
	}
	return false
}

// String returns the string representation of LeadStatus
func (s LeadStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can move forward to the target status.
// The machine only advances; Converted accepts no further transitions.
func (s LeadStatus) CanTransitionTo(target LeadStatus) bool {
	rank := map[LeadStatus]int{
		LeadStatusNew:       0,
		LeadStatusContacted: 1,
		LeadStatusQualified: 2,
		LeadStatusConverted: 3,
	}
	from, ok := rank[s]
	if !ok {
		return false
	}
	to, ok := rank[target]
	if !ok {
		return false
	}
	return to > from
}

// LeadSource records how the lead was acquired
type LeadSource string

const (
	LeadSourceWebsite  LeadSource = "Website"
	LeadSourceReferral LeadSource = "Referral"
	LeadSourcePartner  LeadSource = "Partner"
	LeadSourceColdCall LeadSource = "Cold Call"
	LeadSourceOther    LeadSource = "Other"
)

// Lead represents a potential client. Conversion spawns an Account, a Contact
// and optionally an Opportunity, then deactivates the lead permanently.
type Lead struct {
	shared.SoftDeletableAggregateRoot
	FirstName       string     `gorm:"size:255" json:"first_name"`
	LastName        string     `gorm:"size:255;not null;index" json:"last_name"`
	Company         string     `gorm:"size:255;not null;index" json:"company"`
	Title           string     `gorm:"size:100" json:"title"`
	Email           string     `gorm:"size:255" json:"email"`
	Phone           string     `gorm:"size:50" json:"phone"`
	Website         string     `gorm:"size:255" json:"website"`
	BillingAddress  string     `json:"billing_address"`
	ShippingAddress string     `json:"shipping_address"`
	Status          LeadStatus `gorm:"size:20;not null;default:'New';index" json:"status"`
	Source          LeadSource `gorm:"column:lead_source;size:20" json:"lead_source"`
	Industry        string     `gorm:"size:100" json:"industry"`
	OwnerID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
}

// NewLead creates a new lead in the New status
func NewLead(lastName, company string, ownerID uuid.UUID) (*Lead, error) {
	if lastName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Last name cannot be empty")
	}
	if company == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company cannot be empty")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}

	return &Lead{
		SoftDeletableAggregateRoot: shared.NewSoftDeletableAggregateRoot(),
		LastName:                   lastName,
		Company:                    company,
		Status:                     LeadStatusNew,
		OwnerID:                    ownerID,
	}, nil
}

// IsConverted reports whether this lead reached the terminal status
func (l *Lead) IsConverted() bool {
	return l.Status == LeadStatusConverted
}

// AdvanceStatus moves the lead forward in its state machine
func (l *Lead) AdvanceStatus(target LeadStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid lead status")
	}
	if !l.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Lead status can only move forward, and converted leads are immutable")
	}
	l.Status = target
	l.Touch()
	return nil
}

// MarkConverted flips the lead to its terminal state and deactivates it.
// Called only by the conversion pipeline, inside its transaction.
func (l *Lead) MarkConverted() error {
	if l.IsConverted() {
		return shared.NewBusinessRuleError("This lead has already been converted.")
	}
	l.Status = LeadStatusConverted
	l.Deactivate()
	l.Touch()
	return nil
}

// IsOwnedBy reports whether the given user owns this lead
func (l *Lead) IsOwnedBy(userID uuid.UUID) bool {
	return l.OwnerID == userID
}
