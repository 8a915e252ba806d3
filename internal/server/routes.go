package server

import (
	"github.com/labstack/echo/v4"

	"example.com/learning-path/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	aiHandler *handlers.AIHandler,
	courseHandler *handlers.CourseHandler,
	recommendationHandler *handlers.RecommendationHandler,
	exportHandler *handlers.ExportHandler,
	adminHandler *handlers.AdminHandler,
	eventHandler *handlers.EventHandler,
	authMiddleware echo.MiddlewareFunc,
	adminMiddleware echo.MiddlewareFunc,
	aiRateLimiter echo.MiddlewareFunc,
	metricsHandler echo.HandlerFunc,
) {
	e.GET("/health", handlers.Health)
	e.GET("/metrics", metricsHandler)

	var protected []echo.MiddlewareFunc
	if authMiddleware != nil {
		protected = append(protected, authMiddleware)
	}

	api := e.Group("/api/v1", protected...)

	api.GET("/courses", courseHandler.List)
	api.GET("/courses/:id", courseHandler.Get)
	api.GET("/tags", courseHandler.Tags)
	api.POST("/recommendations", recommendationHandler.Recommend)
	api.POST("/plans/export", exportHandler.Export)

	aiGroup := api.Group("/ai", aiRateLimiter)
	aiGroup.POST("/extract", aiHandler.Extract)
	aiGroup.POST("/plan", aiHandler.Plan)

	if eventHandler != nil && authMiddleware != nil {
		api.GET("/events/stream", eventHandler.Stream)
	}

	// Админка требует и журнал в базе, и токены.
	if adminHandler != nil && authMiddleware != nil {
		admin := api.Group("/admin", adminMiddleware)
		admin.GET("/ai-requests", adminHandler.ListAIRequests)
		admin.GET("/usage", adminHandler.Usage)
	}
}
