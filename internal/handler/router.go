package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/civic-desk-api/internal/middleware"
	"github.com/noah-isme/civic-desk-api/internal/models"
	"github.com/noah-isme/civic-desk-api/internal/service"
	"github.com/noah-isme/civic-desk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/civic-desk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/civic-desk-api/pkg/middleware/requestid"
	securemiddleware "github.com/noah-isme/civic-desk-api/pkg/middleware/secure"
)

// RouterConfig carries the settings the route table depends on.
type RouterConfig struct {
	APIPrefix      string
	Production     bool
	AllowedOrigins []string
	EnableDocs     bool
}

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth          *AuthHandler
	Requests      *RequestHandler
	Attachments   *AttachmentHandler
	Categories    *CategoryHandler
	Assignments   *AssignmentHandler
	Notifications *NotificationHandler
	Users         *UserHandler
	Ops           *MetricsHandler
}

// NewRouter builds the gin engine with the global middleware chain and every route.
func NewRouter(cfg RouterConfig, gate middleware.PrincipalResolver, metrics *service.MetricsService, h Handlers, logr *zap.Logger) *gin.Engine {
	if logr == nil {
		logr = zap.NewNop()
	}
	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(securemiddleware.New(cfg.Production))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())

	r.GET("/ready", h.Ops.Ready)
	r.GET("/metrics", h.Ops.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(prefix)
	api.GET("/health", h.Ops.Health)

	auth := middleware.Auth(gate)
	staffOnly := middleware.RequireRoles(models.RoleStaff, models.RoleDeputy, models.RoleAdmin)
	managers := middleware.RequireRoles(models.RoleDeputy, models.RoleAdmin)

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.Auth.Signup)
	authGroup.POST("/signin", h.Auth.Signin)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/signout", auth, h.Auth.SignOut)
	authGroup.GET("/me", auth, h.Auth.Me)
	authGroup.PUT("/profile", auth, h.Auth.UpdateProfile)

	requests := api.Group("/requests", auth)
	requests.GET("", h.Requests.List)
	requests.POST("", h.Requests.Create)
	requests.GET("/statistics", h.Requests.Statistics)
	requests.GET("/export", h.Requests.Export)
	requests.GET("/track/:code", h.Requests.Track)
	requests.GET("/:id", h.Requests.Get)
	requests.PUT("/:id", h.Requests.Update)
	requests.DELETE("/:id", h.Requests.Delete)
	requests.GET("/:id/history", h.Requests.History)
	requests.GET("/:id/attachments", h.Attachments.List)
	requests.POST("/:id/attachments", h.Attachments.Upload)

	api.GET("/attachments/download", h.Attachments.Download)
	api.DELETE("/attachments/:id", auth, h.Attachments.Delete)

	categories := api.Group("/categories")
	categories.GET("", middleware.OptionalAuth(gate), h.Categories.List)
	categories.GET("/:id", middleware.OptionalAuth(gate), h.Categories.Get)
	categories.POST("", auth, managers, h.Categories.Create)
	categories.PUT("/:id", auth, managers, h.Categories.Update)

	assignments := api.Group("/assignments", auth, staffOnly)
	assignments.GET("", h.Assignments.List)
	assignments.POST("", h.Assignments.Create)
	assignments.GET("/:id", h.Assignments.Get)
	assignments.PUT("/:id", h.Assignments.Update)
	assignments.POST("/:id/accept", h.Assignments.Accept)
	assignments.POST("/:id/reject", h.Assignments.Reject)
	assignments.POST("/:id/complete", h.Assignments.Complete)

	notifications := api.Group("/notifications", auth)
	notifications.GET("", h.Notifications.List)
	notifications.GET("/unread-count", h.Notifications.UnreadCount)
	notifications.PUT("/read-all", h.Notifications.MarkAllRead)
	notifications.PUT("/:id/read", h.Notifications.MarkRead)
	notifications.DELETE("/:id", h.Notifications.Delete)

	users := api.Group("/users", auth)
	users.GET("", managers, h.Users.List)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id/role", middleware.RequireRoles(models.RoleAdmin), h.Users.SetRole)

	return r
}
