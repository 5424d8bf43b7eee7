package handlers

import (
	"github.com/gin-gonic/gin"

	"tradebook/internal/domain/registers/stock"
	"tradebook/internal/infrastructure/http/v1/dto"
	"tradebook/internal/infrastructure/metrics"
)

// StockHandler handles the stock register endpoints.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
	metrics *metrics.Metrics
}

// NewStockHandler creates a new stock register handler. m may be nil.
func NewStockHandler(base *BaseHandler, service *stock.Service, m *metrics.Metrics) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
		metrics:     m,
	}
}

// Adjust handles POST /items/:id/adjustments
func (h *StockHandler) Adjust(c *gin.Context) {
	itemID, ok := h.PathID(c)
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.Adjust(c.Request.Context(), stock.AdjustInput{
		ItemID: itemID,
		Delta:  req.Delta,
		Reason: req.Reason,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.StockAdjustments.Inc()
	}
	h.Created(c, m)
}

// Movements handles GET /items/:id/movements
func (h *StockHandler) Movements(c *gin.Context) {
	itemID, ok := h.PathID(c)
	if !ok {
		return
	}

	result, err := h.service.Movements(c.Request.Context(), stock.MovementFilter{
		ListFilter:  h.ParseListFilter(c),
		ItemID:      &itemID,
		ReferenceID: c.Query("referenceId"),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result, func(m stock.Movement) any { return m }))
}

// Valuation handles GET /reports/stock
func (h *StockHandler) Valuation(c *gin.Context) {
	report, err := h.service.Valuation(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}
