package handler

import (
	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// ActivityHandler handles task and event endpoints
type ActivityHandler struct {
	BaseHandler
	activityService *crmapp.ActivityService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService *crmapp.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// Create handles POST /crm/activities
func (h *ActivityHandler) Create(c *gin.Context) {
	var req crmapp.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	req.AssignedToID = userID

	activity, err := h.activityService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, activity)
}

// Get handles GET /crm/activities/:id
func (h *ActivityHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid activity ID")
		return
	}

	activity, err := h.activityService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, activity)
}

// List handles GET /crm/activities, scoped to the authenticated user
func (h *ActivityHandler) List(c *gin.Context) {
	var filter crmapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	page, err := h.activityService.List(c.Request.Context(), userID, filter, c.Query("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PUT /crm/activities/:id
func (h *ActivityHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid activity ID")
		return
	}
	var req crmapp.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	activity, err := h.activityService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, activity)
}

// Delete handles DELETE /crm/activities/:id
func (h *ActivityHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid activity ID")
		return
	}
	version, err := bindVersion(c)
	if err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.activityService.Delete(c.Request.Context(), id, version); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
