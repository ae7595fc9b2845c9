package routes

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phillip/nft-ticketing-go/config"
	"github.com/phillip/nft-ticketing-go/controllers"
	"github.com/phillip/nft-ticketing-go/middleware"
	"github.com/phillip/nft-ticketing-go/monitoring"
	"github.com/phillip/nft-ticketing-go/services"
	"github.com/phillip/nft-ticketing-go/utils"
)

// Deps is everything the handlers need, assembled once in main.
type Deps struct {
	Events     *services.EventService
	Tickets    *services.TicketService
	Auth       *services.AuthService
	Metrics    *services.MetricsService
	Reconciler *services.Reconciler
	Images     controllers.ImageStore
	Identity   *utils.IdentityVerifier
	Checks     map[string]controllers.HealthCheck
	Logger     *slog.Logger
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, d Deps) {
	controllers.RegisterValidation()

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		monitoring.HTTPMetrics(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader, middleware.AdminTokenHeader},
			ExposeHeaders:    []string{"ETag", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	// public
	r.GET("/health", controllers.Health(cfg, d.Checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ticket-types", controllers.ListTicketTypes())
	r.POST("/auth/callback", controllers.AuthCallback(cfg, d.Auth, d.Identity))

	// identity is optional unless AUTH_REQUIRED is set
	api := r.Group("")
	api.Use(middleware.AuthMiddleware(cfg))
	required := middleware.RequireIdentity(cfg)

	events := api.Group("/events")
	{
		events.GET("", controllers.ListEvents(cfg, d.Events))
		events.GET("/:id", controllers.GetEvent(cfg, d.Events))
		events.GET("/:id/attendees", controllers.ListAttendees(cfg, d.Tickets))
		events.POST("", required, controllers.CreateEvent(cfg, d.Events, d.Images))
		events.PUT("", required, controllers.UpdateEvent(cfg, d.Events, d.Images))
		events.PATCH("/:id/status", required, controllers.SetEventStatus(cfg, d.Events))
	}

	api.POST("/tickets", required, controllers.PurchaseTicket(cfg, d.Tickets))
	api.GET("/organizers/:id/metrics", controllers.OrganizerMetrics(cfg, d.Metrics))

	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdminToken(cfg))
	{
		admin.POST("/reconcile", controllers.Reconcile(cfg, d.Reconciler))
	}
}
