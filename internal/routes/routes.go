package routes

import (
	"searchapp_backend/internal/handlers"
	"searchapp_backend/internal/logger"
	"searchapp_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
// Все, кроме /health, требуют Bearer-токен.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	jwtSecret []byte,
) {
	ginRouter.GET("/health", appHandlers.HealthHandler.Health)

	// Регистрация HTTP API v1
	api := ginRouter.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtSecret))
	{
		appHandlers.SearchHandler.RegisterRoutes(api)
		appHandlers.ReportHandler.RegisterRoutes(api)
		appHandlers.CompanyHandler.RegisterRoutes(api)
	}

	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
