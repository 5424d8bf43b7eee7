package handlers

import (
	"github.com/gin-gonic/gin"

	"tradebook/internal/core/apperror"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler serves /invoices. Invoices are immutable, so there is no
// update or delete route.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service}
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, inv)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, ok := h.PathID(c)
	if !ok {
		return
	}

	inv, err := h.service.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// List handles GET /invoices?partyId&type&from&to&limit&offset
func (h *InvoiceHandler) List(c *gin.Context) {
	filter := invoice.ListFilter{ListFilter: h.ParseListFilter(c)}

	partyID, ok := h.QueryID(c, "partyId")
	if !ok {
		return
	}
	filter.PartyID = partyID

	if v := c.Query("type"); v != "" {
		t := invoice.Type(v)
		if !t.Valid() {
			h.Error(c, apperror.NewValidation("type must be SALES or PURCHASE").WithDetail("value", v))
			return
		}
		filter.Type = &t
	}

	dates, err := dto.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		h.Error(c, err)
		return
	}
	filter.Dates = dates

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result, func(inv *invoice.Invoice) any { return inv }))
}
