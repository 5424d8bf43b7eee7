package handlers

import (
	"github.com/gin-gonic/gin"

	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// ItemHTTPHandler serves /items master data.
type ItemHTTPHandler = CatalogHandler[
	*item.Item,
	domain.ListFilter,
	dto.CreateItemRequest,
	dto.UpdateItemRequest,
]

// NewItemHandler wires the generic catalog handler for items.
func NewItemHandler(base *BaseHandler, service *item.Service) *ItemHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*item.Item,
		domain.ListFilter,
		dto.CreateItemRequest,
		dto.UpdateItemRequest,
	]{
		Service: service,
		ParseFilter: func(_ *gin.Context, base domain.ListFilter) (domain.ListFilter, error) {
			return base, nil
		},
		MapCreateDTO: func(req *dto.CreateItemRequest) *item.Item {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req *dto.UpdateItemRequest, existing *item.Item) *item.Item {
			req.ApplyTo(existing)
			return existing
		},
	})
}
