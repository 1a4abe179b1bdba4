package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/mamadbah2/poultryops/internal/auth"
	"github.com/mamadbah2/poultryops/internal/domain/models"
	"github.com/mamadbah2/poultryops/internal/server/handlers"
	"github.com/mamadbah2/poultryops/internal/server/middleware"
)

// Handlers groups the HTTP handlers. Webhook is nil when WhatsApp is not
// configured.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Batches    *handlers.BatchHandler
	Registry   *handlers.RegistryHandler
	MasterData *handlers.MasterDataHandler
	Inventory  *handlers.InventoryHandler
	Export     *handlers.ExportHandler
	Snapshots  *handlers.SnapshotHandler
	Webhook    *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, tokens *auth.JWTManager, users middleware.UserLookup, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.Logger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
	}

	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", h.Auth.Login)

	api := v1.Group("")
	api.Use(middleware.Authenticate(tokens, users))

	supervisor := middleware.RequireRole(models.RoleSupervisor)
	marketing := middleware.RequireRole(models.RoleMarketing)
	admin := middleware.RequireRole(models.RoleAdmin)

	api.GET("/auth/me", h.Auth.Me)

	api.GET("/batches", h.Batches.List)
	api.POST("/batches", supervisor, h.Batches.Create)
	api.GET("/batches/:id", h.Batches.Get)
	api.GET("/batches/:id/metrics", h.Batches.Metrics)
	api.POST("/batches/:id/complete", supervisor, h.Batches.Complete)
	api.POST("/batches/:id/daily", supervisor, h.Batches.AddDaily())
	api.POST("/batches/:id/feed", supervisor, h.Batches.AddFeed())
	api.POST("/batches/:id/medicine", supervisor, h.Batches.AddMedicine())
	api.POST("/batches/:id/expenses", supervisor, h.Batches.AddExpense())
	api.POST("/batches/:id/eggs", supervisor, h.Batches.AddEggs())
	api.POST("/batches/:id/sales", marketing, h.Batches.AddSale())
	api.POST("/batches/:id/sales/quote", marketing, h.Batches.Quote)
	api.GET("/batches/:id/report", h.Export.BatchReport)
	api.POST("/batches/:id/report/archive", admin, h.Export.ArchiveReport)
	api.GET("/batches/:id/snapshots", h.Snapshots.History)

	api.GET("/activities/:kind", h.Batches.Activities)

	api.GET("/farmers", h.Registry.ListFarmers)
	api.POST("/farmers", supervisor, h.Registry.CreateFarmer)
	api.GET("/farmers/:id", h.Registry.GetFarmer)
	api.PUT("/farmers/:id", supervisor, h.Registry.UpdateFarmer)
	api.POST("/farmers/:id/sheds", supervisor, h.Registry.AddShed)

	api.GET("/traders", h.Registry.ListTraders)
	api.POST("/traders", marketing, h.Registry.CreateTrader)
	api.GET("/traders/:id", h.Registry.GetTrader)
	api.PUT("/traders/:id", marketing, h.Registry.UpdateTrader)
	api.GET("/traders/:id/stats", h.Registry.TraderStats)

	api.GET("/users", admin, h.Registry.ListUsers)
	api.POST("/users", admin, h.Registry.CreateUser)
	api.PATCH("/users/:id/status", admin, h.Registry.SetUserStatus)

	api.GET("/pincode/:pin", h.Registry.Pincode)

	api.GET("/masterdata/bird-types", h.MasterData.ListBirdTypes)
	api.POST("/masterdata/bird-types", admin, h.MasterData.CreateBirdType)
	api.PUT("/masterdata/bird-types/:id", admin, h.MasterData.UpdateBirdType)
	api.GET("/masterdata/prices", h.MasterData.ListPriceBands)
	api.POST("/masterdata/prices", admin, h.MasterData.CreatePriceBand)
	api.PUT("/masterdata/prices/:id", admin, h.MasterData.UpdatePriceBand)
	api.GET("/masterdata/price", h.MasterData.Price)
	api.GET("/masterdata/rates", h.MasterData.Rates)

	api.GET("/inventory", h.Inventory.Stock)
	api.GET("/purchases", h.Inventory.Purchases)
	api.GET("/dashboard", h.Inventory.Dashboard)

	api.GET("/export/batches", h.Export.Batches)
	api.GET("/export/activities/:kind", h.Export.Activities)
	api.GET("/export/farmers", h.Export.Farmers)
	api.GET("/export/traders", h.Export.Traders)

	if h.Webhook != nil {
		api.POST("/messages", admin, h.Webhook.SendMessage)
	}

	logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	return r
}

// WithCORS lets the dashboard origins call the API from the browser.
func WithCORS(next http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler(next)
}
