package handlers

import (
	"github.com/gin-gonic/gin"

	"tradebook/internal/core/apperror"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// PartyHTTPHandler serves /parties.
type PartyHTTPHandler = CatalogHandler[
	*party.Party,
	party.ListFilter,
	dto.CreatePartyRequest,
	dto.UpdatePartyRequest,
]

// NewPartyHandler wires the generic catalog handler for parties.
func NewPartyHandler(base *BaseHandler, service *party.Service) *PartyHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*party.Party,
		party.ListFilter,
		dto.CreatePartyRequest,
		dto.UpdatePartyRequest,
	]{
		Service: service,
		ParseFilter: func(c *gin.Context, base domain.ListFilter) (party.ListFilter, error) {
			filter := party.ListFilter{ListFilter: base}
			if v := c.Query("type"); v != "" {
				t := party.Type(v)
				if !t.Valid() {
					return filter, apperror.NewValidation("type must be Customer or Supplier").
						WithDetail("value", v)
				}
				filter.Type = &t
			}
			return filter, nil
		},
		MapCreateDTO: func(req *dto.CreatePartyRequest) *party.Party {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req *dto.UpdatePartyRequest, existing *party.Party) *party.Party {
			req.ApplyTo(existing)
			return existing
		},
	})
}
