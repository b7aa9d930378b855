package handler

import (
	"strconv"

	reportapp "github.com/crm/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles reporting endpoints
type ReportHandler struct {
	BaseHandler
	matrixService *reportapp.PaymentMatrixService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(matrixService *reportapp.PaymentMatrixService) *ReportHandler {
	return &ReportHandler{matrixService: matrixService}
}

// PaymentMatrix handles GET /reports/payment-matrix?year=YYYY
func (h *ReportHandler) PaymentMatrix(c *gin.Context) {
	yearStr := c.Query("year")
	if yearStr == "" {
		h.BadRequest(c, "Query parameter 'year' is required")
		return
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		h.BadRequest(c, "Query parameter 'year' must be an integer")
		return
	}

	matrix, err := h.matrixService.Generate(c.Request.Context(), year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, matrix)
}
