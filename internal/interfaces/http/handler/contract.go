package handler

import (
	billingapp "github.com/crm/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// ContractHandler handles contract endpoints, including generation from won
// opportunities
type ContractHandler struct {
	BaseHandler
	contractService *billingapp.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *billingapp.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// Generate handles POST /crm/opportunities/:id/generate-contract
func (h *ContractHandler) Generate(c *gin.Context) {
	opportunityID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID")
		return
	}
	var req billingapp.GenerateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.OpportunityID = opportunityID

	contract, err := h.contractService.GenerateFromOpportunity(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contract)
}

// Get handles GET /billing/contracts/:id
func (h *ContractHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	contract, err := h.contractService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// List handles GET /billing/contracts
func (h *ContractHandler) List(c *gin.Context) {
	var filter billingapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	accountID, err := parseOptionalUUIDQuery(c, "account_id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	page, err := h.contractService.List(c.Request.Context(), actor, filter, c.Query("status"), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PUT /billing/contracts/:id
func (h *ContractHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}
	var req billingapp.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	contract, err := h.contractService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// Delete handles DELETE /billing/contracts/:id
func (h *ContractHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}
	version, err := bindVersion(c)
	if err != nil {
		h.BindError(c, err)
		return
	}
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.contractService.Delete(c.Request.Context(), actor, id, version); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
