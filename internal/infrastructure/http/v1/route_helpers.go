package v1

import (
	"github.com/gin-gonic/gin"
)

// CatalogRouteHandler defines the interface for master-data handlers.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
}

// RegisterCatalogRoutes registers the standard master-data routes.
// Catalog records are never deleted: documents keep referring to them.
//
// Usage:
//
//	handler := handlers.NewPartyHandler(base, services.Parties)
//	RegisterCatalogRoutes(api.Group("/parties"), handler)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
}
