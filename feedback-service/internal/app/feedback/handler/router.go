package handler

import (
	"guestvoice/pkg/logger"
	"guestvoice/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter настраивает маршруты сервиса отзывов
// Приём отзывов публичный, всё остальное за basic auth
func SetupRouter(feedbackHandler *FeedbackHandler, adminAuth *AdminAuthMiddleware) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("feedback-service"))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", feedbackHandler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/feedback", feedbackHandler.SubmitFeedback)

	admin := router.Group("/admin")
	admin.Use(adminAuth.Authenticate())
	{
		admin.GET("/feedback", feedbackHandler.GetFeedback)
		admin.GET("/stats", feedbackHandler.GetStats)
		admin.GET("/alerts/recent", feedbackHandler.GetRecentAlerts)
		admin.GET("/export/csv", feedbackHandler.ExportFeedbackCSV)
		admin.GET("/export/alerts/csv", feedbackHandler.ExportAlertsCSV)
		admin.POST("/test-email", feedbackHandler.TestEmail)
	}

	return router
}
