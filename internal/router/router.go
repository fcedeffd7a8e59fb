package router

import (
	"github.com/gin-gonic/gin"

	"reqsmith/internal/auth"
	"reqsmith/internal/handler"
	"reqsmith/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	tokens *auth.TokenManager,
	extractionH *handler.ExtractionHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Protected routes - require valid bearer token
	protected := v1.Group("")
	protected.Use(middleware.Auth(tokens))

	extractions := protected.Group("/extractions")
	extractions.POST("", extractionH.Submit)
	extractions.GET("/:id", extractionH.Get)
	extractions.GET("/:id/export", extractionH.Export)

	return r
}
