package handlers

import (
	"github.com/gin-gonic/gin"

	"tradebook/internal/core/apperror"
	"tradebook/internal/domain/reports"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// PartyLedger handles GET /reports/ledger?partyId&from&to
func (h *ReportsHandler) PartyLedger(c *gin.Context) {
	partyID, ok := h.QueryID(c, "partyId")
	if !ok {
		return
	}
	if partyID == nil {
		h.Error(c, apperror.NewValidation("partyId is required").WithDetail("field", "partyId"))
		return
	}

	dates, err := dto.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		h.Error(c, err)
		return
	}

	ledger, err := h.service.PartyLedger(c.Request.Context(), *partyID, dates)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ledger)
}

// Outstanding handles GET /reports/outstanding
func (h *ReportsHandler) Outstanding(c *gin.Context) {
	report, err := h.service.Outstanding(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Dashboard handles GET /reports/dashboard
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	report, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}
