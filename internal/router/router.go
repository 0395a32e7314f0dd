package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"restau/internal/domain"
	"restau/internal/handler"
	"restau/internal/middleware"
	"restau/internal/service"
)

// Options carries the non-handler settings of the engine.
type Options struct {
	Logger          logrus.FieldLogger
	AllowedOrigins  []string
	IsDevelopment   bool
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// Handlers groups every HTTP handler mounted by Setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Report     *handler.ReportHandler
	Restaurant *handler.RestaurantHandler
	Audit      *handler.AuditHandler
	Health     *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(authSvc service.AuthService, auditSvc service.AuditService, h Handlers, opts Options) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.SecureHeaders(opts.IsDevelopment))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", middleware.RateLimit(opts.LoginRateLimit, opts.LoginRateWindow), h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc, auditSvc))

	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/auth/me", h.Auth.Me)

	readers := middleware.RequireRole(auditSvc, domain.RoleReadonly, domain.RoleManager, domain.RoleAdmin)
	writers := middleware.RequireRole(auditSvc, domain.RoleManager, domain.RoleAdmin)
	admins := middleware.RequireRole(auditSvc, domain.RoleAdmin)

	restaurants := protected.Group("/restaurants")
	restaurants.GET("/mine", h.Restaurant.Mine)
	restaurants.GET("", admins, h.Restaurant.List)

	protected.GET("/audit/latest", admins, h.Audit.Latest)

	// Daily report routes
	reports := protected.Group("/reports/bk")
	reports.POST("/upload", writers, h.Report.Upload)
	reports.GET("", readers, h.Report.List)
	reports.GET("/monthly", readers, h.Report.Monthly)
	reports.GET("/monthly/export", readers, h.Report.ExportMonthly)
	reports.GET("/:id", readers, h.Report.Get)
	reports.PUT("/:id/kpi", writers, h.Report.UpdateKPI)
	reports.DELETE("/:id", admins, h.Report.Delete)

	return r
}
