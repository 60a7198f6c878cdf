package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/MADANW/MuhsinAI/internal/handler"
	"github.com/MADANW/MuhsinAI/internal/middleware"
)

// Setup sets up all routes
func Setup(
	h *server.Hertz,
	userHandler *handler.UserHandler,
	chatHandler *handler.ChatHandler,
	healthHandler *handler.HealthHandler,
) {
	// Global middleware
	h.Use(middleware.Recovery())
	h.Use(middleware.Logger())
	h.Use(middleware.CORS())

	// Health check routes (no authentication required)
	h.GET("/ping", healthHandler.Ping)
	h.GET("/health/ready", healthHandler.Readiness)
	h.GET("/health/live", healthHandler.Liveness)

	// API v1 routes
	apiV1 := h.Group("/api/v1")
	{
		// ============ Public routes (no authentication required) ============
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
			auth.POST("/refresh", userHandler.RefreshToken)
		}

		// ============ Protected routes (JWT authentication required) ============
		authorized := apiV1.Group("")
		authorized.Use(userHandler.AuthMiddleware())
		{
			authorized.POST("/auth/logout", userHandler.Logout)
			authorized.GET("/auth/me", userHandler.GetCurrentUser)

			// Conversational scheduling
			chat := authorized.Group("/chat")
			{
				chat.POST("", chatHandler.Send)
				chat.GET("/history", chatHandler.History)
				chat.GET("/history/:id", chatHandler.Show)
				chat.DELETE("/history/:id", chatHandler.Delete)
				chat.GET("/probe", chatHandler.Probe)
			}

			// Account management and activity
			authorized.PUT("/users/me", userHandler.UpdateProfile)
			authorized.DELETE("/users/me", userHandler.DeleteAccount)
			authorized.GET("/users/me/stats", chatHandler.Stats)
		}
	}
}
