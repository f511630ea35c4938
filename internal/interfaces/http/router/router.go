package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/potting/backend/internal/infrastructure/config"
	"github.com/potting/backend/internal/infrastructure/logger"
	"github.com/potting/backend/internal/interfaces/http/handler"
	"github.com/potting/backend/internal/interfaces/http/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Campaign     *handler.CampaignHandler
	Confirmation *handler.ConfirmationHandler
	Order        *handler.CustomerOrderHandler
	Formula      *handler.FormulaHandler
	TransitOrder *handler.TransitOrderHandler
	Lot          *handler.LotHandler
	Container    *handler.ContainerHandler
	Parameter    *handler.ParameterHandler
}

// New builds the gin engine with the full middleware chain and all API
// routes mounted under /api/v1.
func New(cfg *config.Config, log *zap.Logger, h Handlers) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	registerCampaignRoutes(api, h.Campaign)
	registerConfirmationRoutes(api, h.Confirmation)
	registerOrderRoutes(api, h.Order)
	registerFormulaRoutes(api, h.Formula)
	registerTransitOrderRoutes(api, h.TransitOrder)
	registerLotRoutes(api, h.Lot)
	registerContainerRoutes(api, h.Container)
	registerParameterRoutes(api, h.Parameter)

	return engine, nil
}

func registerCampaignRoutes(rg *gin.RouterGroup, h *handler.CampaignHandler) {
	g := rg.Group("/campaigns")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/current", h.GetCurrent)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id/duty-rate", h.SetDutyRate)
	g.PUT("/:id/prices", h.SetOfficialPrice)
	g.POST("/:id/activate", h.Activate)
	g.POST("/:id/close", h.Close)
	g.POST("/:id/reset", h.ResetToDraft)
	g.DELETE("/:id", h.Delete)
}

func registerConfirmationRoutes(rg *gin.RouterGroup, h *handler.ConfirmationHandler) {
	g := rg.Group("/confirmations")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.POST("/sweep", h.Sweep)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/activate", h.Activate)
	g.POST("/:id/cancel", h.Cancel)
	g.POST("/:id/extend", h.ExtendValidity)
	g.POST("/:id/reset", h.ResetToDraft)
	g.POST("/:id/duplicate", h.Duplicate)
	g.DELETE("/:id", h.Delete)
}

func registerOrderRoutes(rg *gin.RouterGroup, h *handler.CustomerOrderHandler) {
	g := rg.Group("/orders")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/allocations", h.AddAllocation)
	g.DELETE("/:id/allocations/:confirmation_id", h.RemoveAllocation)
	g.POST("/:id/confirm", h.Confirm)
	g.POST("/:id/done", h.MarkDone)
	g.POST("/:id/cancel", h.Cancel)
	g.POST("/:id/reset", h.ResetToDraft)
	g.DELETE("/:id", h.Delete)
}

func registerFormulaRoutes(rg *gin.RouterGroup, h *handler.FormulaHandler) {
	g := rg.Group("/formulas")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/taxes", h.AddTaxLine)
	g.DELETE("/:id/taxes/:line_id", h.RemoveTaxLine)
	g.POST("/:id/validate", h.Validate)
	g.POST("/:id/pay-avant-vente", h.MarkAvantVentePaid)
	g.POST("/:id/pay-apres-vente", h.MarkApresVentePaid)
	g.POST("/:id/cancel", h.Cancel)
	g.DELETE("/:id", h.Delete)
}

func registerTransitOrderRoutes(rg *gin.RouterGroup, h *handler.TransitOrderHandler) {
	g := rg.Group("/transit-orders")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/allocations", h.AddContractAllocation)
	g.POST("/:id/formule", h.LinkFormule)
	g.POST("/:id/taxes", h.ConfirmTaxesPaid)
	g.POST("/:id/lots", h.GenerateLots)
	g.POST("/:id/start", h.StartProduction)
	g.POST("/:id/ready", h.MarkReady)
	g.POST("/:id/collect-duty", h.CollectExportDuty)
	g.POST("/:id/validate", h.Validate)
	g.POST("/:id/sold", h.MarkSold)
	g.POST("/:id/dus", h.ConfirmDusPaid)
	g.POST("/:id/complete", h.Complete)
	g.PUT("/:id/premium", h.SetCertificationPremium)
	g.POST("/:id/deliveries", h.RegisterDelivery)
	g.POST("/:id/invoices", h.RegisterInvoice)
	g.POST("/:id/cancel", h.Cancel)
	g.POST("/:id/reset", h.ResetToDraft)
	g.DELETE("/:id", h.Delete)
}

func registerLotRoutes(rg *gin.RouterGroup, h *handler.LotHandler) {
	g := rg.Group("/lots")
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/production", h.AddProduction)
	g.POST("/:id/ready", h.MarkReady)
	g.POST("/:id/force-ready", h.ForceReady)
	g.POST("/:id/pot", h.ConfirmPotting)
	g.POST("/:id/reset", h.ResetToDraft)
	g.DELETE("/:id", h.Delete)
}

func registerContainerRoutes(rg *gin.RouterGroup, h *handler.ContainerHandler) {
	g := rg.Group("/containers")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/start-loading", h.StartLoading)
	g.POST("/:id/finish-loading", h.FinishLoading)
	g.PUT("/:id/seal", h.SetSeal)
	g.POST("/:id/ship", h.Ship)
	g.POST("/:id/reopen", h.Reopen)
	g.DELETE("/:id", h.Delete)
}

func registerParameterRoutes(rg *gin.RouterGroup, h *handler.ParameterHandler) {
	g := rg.Group("/parameters")
	g.GET("", h.List)
	g.GET("/:key", h.Get)
	g.PUT("/:key", h.Set)
}
