// Package api assembles the gin engine: middleware chain and route table.
package api

import (
	"civicdesk/backend/internal/api/handler"
	"civicdesk/backend/internal/api/middleware"
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires every route. The handler's dependencies must be set.
func NewRouter(h *handler.Handler, authn *middleware.Authenticator, frontendURL string, logger *zap.Logger) *gin.Engine {
	validation.Setup()

	r := gin.New()
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		middleware.CORS(frontendURL),
	)

	adminOnly := middleware.RequireRole(config.RoleAdmin)

	apiGroup := r.Group("/api")
	apiGroup.GET("/health", h.Health)

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", authn.RequireAuth(), h.Me)
	}

	apiGroup.PUT("/users/me", authn.RequireAuth(), h.UpdateMe)

	complaints := apiGroup.Group("/complaints")
	{
		complaints.POST("", authn.OptionalAuth(), h.CreateComplaint)
		complaints.GET("/feed", authn.RequireAuthOrQuery(), h.ServeFeed)

		private := complaints.Group("", authn.RequireAuth())
		private.GET("", h.ListComplaints)
		private.GET("/my-complaints", h.MyComplaints)
		private.GET("/stats", h.ComplaintStats)
		private.GET("/status-counts", h.ComplaintStats)
		private.GET("/export", adminOnly, h.ExportComplaints)
		private.GET("/:id", h.GetComplaint)
		private.PUT("/:id", adminOnly, h.UpdateComplaint)
		private.PATCH("/:id", adminOnly, h.UpdateComplaint)
	}

	departments := apiGroup.Group("/departments", authn.RequireAuth())
	{
		departments.GET("", h.ListDepartments)
		departments.GET("/:id", h.GetDepartment)
		departments.POST("", adminOnly, h.CreateDepartment)
		departments.PUT("/:id", adminOnly, h.UpdateDepartment)
	}

	return r
}
