package handlers

import (
	"github.com/gin-gonic/gin"

	"tradebook/internal/domain/documents/payment"
	"tradebook/internal/infrastructure/http/v1/dto"
	"tradebook/internal/infrastructure/metrics"
)

// PaymentHandler serves /payments.
type PaymentHandler struct {
	*BaseHandler
	service *payment.Service
	metrics *metrics.Metrics
}

// NewPaymentHandler creates a new payment handler. m may be nil.
func NewPaymentHandler(base *BaseHandler, service *payment.Service, m *metrics.Metrics) *PaymentHandler {
	return &PaymentHandler{BaseHandler: base, service: service, metrics: m}
}

// Record handles POST /payments
func (h *PaymentHandler) Record(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.Record(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.PaymentsRecorded.Inc()
	}
	h.Created(c, p)
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	paymentID, ok := h.PathID(c)
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// List handles GET /payments?partyId
func (h *PaymentHandler) List(c *gin.Context) {
	partyID, ok := h.QueryID(c, "partyId")
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), payment.ListFilter{
		ListFilter: h.ParseListFilter(c),
		PartyID:    partyID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result, func(p *payment.Payment) any { return p }))
}
