package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActivityService handles tasks and events with their polymorphic associations
type ActivityService struct {
	activityRepo crm.ActivityRepository
	contactRepo  crm.ContactRepository
	leadRepo     crm.LeadRepository
}

// NewActivityService creates a new ActivityService
func NewActivityService(activityRepo crm.ActivityRepository, contactRepo crm.ContactRepository, leadRepo crm.LeadRepository) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		contactRepo:  contactRepo,
		leadRepo:     leadRepo,
	}
}

// Create creates a new activity. Association invariants are validated before
// anything is written.
func (s *ActivityService) Create(ctx context.Context, req CreateActivityRequest) (*ActivityResponse, error) {
	activity, err := crm.NewActivity(crm.ActivityType(req.Type), req.Subject, req.AssignedToID)
	if err != nil {
		return nil, err
	}
	activity.Description = req.Description
	activity.Status = crm.TaskStatus(req.Status)
	activity.Priority = crm.TaskPriority(req.Priority)
	activity.DueDate = req.DueDate
	activity.StartTime = req.StartTime
	activity.EndTime = req.EndTime
	activity.IsAllDayEvent = req.IsAllDayEvent
	activity.Location = req.Location

	activity.AccountID = req.AccountID
	activity.OpportunityID = req.OpportunityID
	activity.ContractID = req.ContractID
	activity.OrderID = req.OrderID
	activity.InvoiceID = req.InvoiceID
	activity.ContactID = req.ContactID
	activity.LeadID = req.LeadID

	if len(req.ContactIDs) > 0 {
		contacts, err := s.resolveContacts(ctx, req.ContactIDs)
		if err != nil {
			return nil, err
		}
		activity.Contacts = contacts
	}
	if len(req.LeadIDs) > 0 {
		leads, err := s.resolveLeads(ctx, req.LeadIDs)
		if err != nil {
			return nil, err
		}
		activity.Leads = leads
	}

	if err := activity.Validate(); err != nil {
		return nil, err
	}
	if err := s.activityRepo.Save(ctx, activity); err != nil {
		return nil, err
	}
	resp := ToActivityResponse(activity)
	return &resp, nil
}

// GetByID retrieves an activity with its resolved associations
func (s *ActivityService) GetByID(ctx context.Context, id uuid.UUID) (*ActivityResponse, error) {
	activity, err := s.activityRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToActivityResponse(activity)
	return &resp, nil
}

// List retrieves activities assigned to a user
func (s *ActivityService) List(ctx context.Context, userID uuid.UUID, filter ListFilter, activityType string) (*shared.Paginated[ActivityResponse], error) {
	domainFilter := toDomainFilter(filter)
	if activityType != "" {
		domainFilter.Filters["type"] = activityType
	}

	activities, total, err := s.activityRepo.FindByAssignee(ctx, userID, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]ActivityResponse, len(activities))
	for i := range activities {
		items[i] = ToActivityResponse(&activities[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a version-guarded update to an activity
func (s *ActivityService) Update(ctx context.Context, id uuid.UUID, req UpdateActivityRequest) (*ActivityResponse, error) {
	activity, err := s.activityRepo.UpdateWithVersion(ctx, id, req.Version, func(a *crm.Activity) error {
		if req.Subject != nil {
			if *req.Subject == "" {
				return shared.NewDomainError("INVALID_SUBJECT", "Subject cannot be empty")
			}
			a.Subject = *req.Subject
		}
		if req.Description != nil {
			a.Description = *req.Description
		}
		if req.Status != nil {
			a.Status = crm.TaskStatus(*req.Status)
		}
		if req.Priority != nil {
			a.Priority = crm.TaskPriority(*req.Priority)
		}
		if req.DueDate != nil {
			a.DueDate = req.DueDate
		}
		if req.StartTime != nil {
			a.StartTime = req.StartTime
		}
		if req.EndTime != nil {
			a.EndTime = req.EndTime
		}
		if req.Location != nil {
			a.Location = *req.Location
		}
		return a.Validate()
	})
	if err != nil {
		return nil, err
	}
	resp := ToActivityResponse(activity)
	return &resp, nil
}

// Delete hard-deletes an activity under the version guard
func (s *ActivityService) Delete(ctx context.Context, id uuid.UUID, clientVersion int) error {
	return s.activityRepo.DeleteWithVersion(ctx, id, clientVersion)
}

func (s *ActivityService) resolveContacts(ctx context.Context, ids []uuid.UUID) ([]crm.Contact, error) {
	contacts := make([]crm.Contact, 0, len(ids))
	for _, id := range ids {
		contact, err := s.contactRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *contact)
	}
	return contacts, nil
}

func (s *ActivityService) resolveLeads(ctx context.Context, ids []uuid.UUID) ([]crm.Lead, error) {
	leads := make([]crm.Lead, 0, len(ids))
	for _, id := range ids {
		lead, err := s.leadRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, nil
}
