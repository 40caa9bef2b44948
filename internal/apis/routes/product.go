package routes

import (
	"aneka-keramik/config"
	"aneka-keramik/internal/di"

	"github.com/gin-gonic/gin"
)

func SetupProductRoutes(router *gin.Engine) {
	productHandler, err := di.GetProductHandler()
	if err != nil {
		config.Logger.Fatalf("Failed to get product handler: %v", err)
	}
	authMiddleware, err := di.GetAuthMiddleware()
	if err != nil {
		config.Logger.Fatalf("Failed to get auth middleware: %v", err)
	}

	public := router.Group("/api/products")
	{
		public.GET("", productHandler.List)
		public.GET("/filter-options", productHandler.FilterOptions)
		public.GET("/:id", productHandler.Get)
	}

	protected := router.Group("/api/products")
	protected.Use(authMiddleware)
	{
		protected.POST("", productHandler.Create)
		protected.PUT("/:id", productHandler.Update)
		protected.PATCH("/:id/flags", productHandler.UpdateFlags)
		protected.PATCH("/:id/discount", productHandler.UpdateDiscount)
		protected.DELETE("/:id", productHandler.Delete)
	}
}
