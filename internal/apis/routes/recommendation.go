package routes

import (
	"aneka-keramik/config"
	"aneka-keramik/internal/di"

	"github.com/gin-gonic/gin"
)

func SetupRecommendationRoutes(router *gin.Engine) {
	recommendationHandler, err := di.GetRecommendationHandler()
	if err != nil {
		config.Logger.Fatalf("Failed to get recommendation handler: %v", err)
	}
	rateLimit, err := di.GetRateLimitMiddleware()
	if err != nil {
		config.Logger.Fatalf("Failed to get rate limit middleware: %v", err)
	}

	recommendations := router.Group("/api/recommendations")
	{
		// only the LLM-backed endpoint is rate limited
		recommendations.POST("", rateLimit, recommendationHandler.Recommend)
		recommendations.GET("/:sessionId/history", recommendationHandler.GetHistory)
		recommendations.DELETE("/:sessionId", recommendationHandler.DeleteSession)
	}
}
