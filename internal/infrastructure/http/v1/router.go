// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"

	"tradebook/internal/app"
	"tradebook/internal/core/idempotency"
	"tradebook/internal/infrastructure/http/v1/handlers"
	"tradebook/internal/infrastructure/http/v1/middleware"
	"tradebook/internal/infrastructure/metrics"
	"tradebook/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Services *app.Services

	// Storage is pinged by the readiness probe.
	Storage handlers.Pinger

	// StorageDriver names the backend in health output.
	StorageDriver string

	Logger  *logger.Logger
	Metrics *metrics.Metrics

	// JWTValidator enables bearer-token auth on /api/v1 when set.
	JWTValidator middleware.JWTValidator

	// Idempotency is applied to mutating routes when set.
	Idempotency idempotency.Store

	// Release switches gin to release mode.
	Release bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Storage, cfg.StorageDriver)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	if cfg.JWTValidator != nil {
		api.Use(middleware.Auth(cfg.JWTValidator))
	}
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()
	registerCatalogRoutes(api, base, cfg)
	registerDocumentRoutes(api, base, cfg)
	registerReportRoutes(api, base, cfg)

	return router
}

// NewHandler wraps the router with gzip response compression.
func NewHandler(cfg RouterConfig) http.Handler {
	return gzhttp.GzipHandler(NewRouter(cfg))
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	RegisterCatalogRoutes(rg.Group("/parties"), handlers.NewPartyHandler(base, cfg.Services.Parties))

	items := rg.Group("/items")
	RegisterCatalogRoutes(items, handlers.NewItemHandler(base, cfg.Services.Items))

	stockHandler := handlers.NewStockHandler(base, cfg.Services.Stock, cfg.Metrics)
	items.POST("/:id/adjustments", stockHandler.Adjust)
	items.GET("/:id/movements", stockHandler.Movements)
}

func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	invoiceHandler := handlers.NewInvoiceHandler(base, cfg.Services.Invoices)
	invoices := rg.Group("/invoices")
	{
		invoices.GET("", invoiceHandler.List)
		invoices.POST("", invoiceHandler.Create)
		invoices.GET("/:id", invoiceHandler.Get)
	}

	paymentHandler := handlers.NewPaymentHandler(base, cfg.Services.Payments, cfg.Metrics)
	payments := rg.Group("/payments")
	{
		payments.GET("", paymentHandler.List)
		payments.POST("", paymentHandler.Record)
		payments.GET("/:id", paymentHandler.Get)
	}
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	reportsHandler := handlers.NewReportsHandler(base, cfg.Services.Reports)
	stockHandler := handlers.NewStockHandler(base, cfg.Services.Stock, cfg.Metrics)

	reports := rg.Group("/reports")
	{
		reports.GET("/stock", stockHandler.Valuation)
		reports.GET("/ledger", reportsHandler.PartyLedger)
		reports.GET("/outstanding", reportsHandler.Outstanding)
		reports.GET("/dashboard", reportsHandler.Dashboard)
	}
}
