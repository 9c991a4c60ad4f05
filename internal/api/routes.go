package api

import (
	"github.com/gin-gonic/gin"
	"github.com/laststanding/backend/internal/api/handlers"
)

// SetupRoutes configures the HTTP surface. The bot itself runs over long
// polling; HTTP exists only for platform health checks.
func SetupRoutes(router *gin.Engine) {
	router.GET("/", handlers.HealthCheck)
	router.GET("/health", handlers.HealthCheck)
}
