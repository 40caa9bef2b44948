package routes

import (
	"aneka-keramik/config"
	"aneka-keramik/internal/di"

	"github.com/gin-gonic/gin"
)

func SetupAuthRoutes(router *gin.Engine) {
	authHandler, err := di.GetAuthHandler()
	if err != nil {
		config.Logger.Fatalf("Failed to get auth handler: %v", err)
	}
	authMiddleware, err := di.GetAuthMiddleware()
	if err != nil {
		config.Logger.Fatalf("Failed to get auth middleware: %v", err)
	}

	auth := router.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	protected := router.Group("/api/auth")
	protected.Use(authMiddleware)
	{
		protected.POST("/register", authHandler.Register)
		protected.GET("/me", authHandler.GetUser)
		protected.POST("/logout", authHandler.Logout)
	}
}
