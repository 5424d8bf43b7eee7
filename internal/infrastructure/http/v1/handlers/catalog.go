package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// CatalogService is the master-data surface shared by parties and items.
type CatalogService[T any, F any] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, id id.ID) (T, error)
	List(ctx context.Context, filter F) (domain.ListResult[T], error)
	Update(ctx context.Context, entity T) error
}

// CatalogHandler provides generic HTTP handlers for catalog entities.
type CatalogHandler[T any, F any, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service CatalogService[T, F]

	parseFilter  func(c *gin.Context, base domain.ListFilter) (F, error)
	mapCreateDTO func(dto *CreateDTO) T
	mapUpdateDTO func(dto *UpdateDTO, existing T) T
}

// CatalogHandlerConfig configures the catalog handler.
type CatalogHandlerConfig[T any, F any, CreateDTO any, UpdateDTO any] struct {
	Service      CatalogService[T, F]
	ParseFilter  func(c *gin.Context, base domain.ListFilter) (F, error)
	MapCreateDTO func(dto *CreateDTO) T
	MapUpdateDTO func(dto *UpdateDTO, existing T) T
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler[T any, F any, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg CatalogHandlerConfig[T, F, CreateDTO, UpdateDTO],
) *CatalogHandler[T, F, CreateDTO, UpdateDTO] {
	return &CatalogHandler[T, F, CreateDTO, UpdateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		parseFilter:  cfg.ParseFilter,
		mapCreateDTO: cfg.MapCreateDTO,
		mapUpdateDTO: cfg.MapUpdateDTO,
	}
}

// List handles GET /{entity} - list with search and pagination.
func (h *CatalogHandler[T, F, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	filter, err := h.parseFilter(c, h.ParseListFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result, func(e T) any { return e }))
}

// Get handles GET /{entity}/:id.
func (h *CatalogHandler[T, F, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	entityID, ok := h.PathID(c)
	if !ok {
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entity)
}

// Create handles POST /{entity}.
func (h *CatalogHandler[T, F, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	entity := h.mapCreateDTO(&req)
	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, entity)
}

// Update handles PUT /{entity}/:id. The body carries the version it was
// based on; a stale version yields 409.
func (h *CatalogHandler[T, F, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.PathID(c)
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated := h.mapUpdateDTO(&req, existing)
	if err := h.service.Update(ctx, updated); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}
