package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-token-sweeper/internal/api/middleware"
	"github.com/feral-file/ff-token-sweeper/internal/metrics"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, auth *middleware.Authenticator) {
	// Health check and metrics endpoints (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Token discovery (public read access)
		v1.GET("/wallets/:address/tokens", handler.GetWalletTokens)

		// Batch building (requires authentication)
		v1.POST("/transfers/build", middleware.Auth(auth), handler.BuildTransfers)

		// Cache invalidation (requires API key authentication only)
		v1.POST("/cache/invalidate", middleware.APIKeyAuth(auth), handler.InvalidateCaches)
	}
}
