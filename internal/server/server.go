package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"example.com/learning-path/backend/internal/ai"
	"example.com/learning-path/backend/internal/auth"
	"example.com/learning-path/backend/internal/catalog"
	"example.com/learning-path/backend/internal/config"
	"example.com/learning-path/backend/internal/handlers"
	"example.com/learning-path/backend/internal/metrics"
	"example.com/learning-path/backend/internal/notifications"
	"example.com/learning-path/backend/internal/repository"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
// db может быть nil: тогда каталог читается из файла, а журнал AI-запросов отключен.
// Возвращаемая функция закрывает клиент провайдера и вызывается после остановки сервера.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) (*echo.Echo, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(metrics.Middleware())
	if len(cfg.Server.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	aiService, err := NewAIService(ctx, cfg.AI)
	if err != nil {
		return nil, nil, err
	}

	courses, err := NewCatalog(cfg.Catalog, db)
	if err != nil {
		_ = aiService.Close()
		return nil, nil, err
	}

	var requestLog handlers.RequestLogger
	var adminHandler *handlers.AdminHandler
	if db != nil {
		requestLog = repository.NewAIRepository(db)
		adminHandler = handlers.NewAdminHandler(repository.NewAdminRepository(db))
	}

	// События адресуются пользователю из токена, без JWT хаб не нужен.
	var events *notifications.Hub
	var eventHandler *handlers.EventHandler
	if cfg.Auth.JWTSecret != "" {
		events = notifications.NewHub()
		eventHandler = handlers.NewEventHandler(events)
	}

	aiHandler := handlers.NewAIHandler(aiService, courses, requestLog, events, cfg.AI.Provider, cfg.AI.Model)
	courseHandler := handlers.NewCourseHandler(courses)
	recommendationHandler := handlers.NewRecommendationHandler(courses)
	exportHandler := handlers.NewExportHandler(courses)

	var authMiddleware echo.MiddlewareFunc
	if cfg.Auth.JWTSecret != "" {
		tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
		authMiddleware = auth.JWTMiddleware(tokenManager)
	} else {
		logger.Warn("JWT_SECRET is empty, api is served without authentication")
	}

	registerRoutes(
		e,
		aiHandler,
		courseHandler,
		recommendationHandler,
		exportHandler,
		adminHandler,
		eventHandler,
		authMiddleware,
		handlers.AdminMiddleware(cfg.Admin.UserIDs),
		aiRateLimiter(cfg.AI),
		echo.WrapHandler(promhttp.Handler()),
	)

	return e, aiService.Close, nil
}

// NewAIService создает клиент провайдера и сервис генерации по конфигурации.
// Без ключа используется UnavailableClient: разбор цели уходит в эвристику, план возвращает ошибку.
func NewAIService(ctx context.Context, cfg config.AIConfig) (*ai.Service, error) {
	extractor, err := ai.ExtractorByName(cfg.JSONExtractor)
	if err != nil {
		return nil, err
	}

	var client ai.Client
	if cfg.APIKey == "" {
		slog.Warn("ai api key is empty, generation is disabled", slog.String("provider", cfg.Provider))
		client = ai.UnavailableClient{Reason: fmt.Errorf("%s api key is missing", cfg.Provider)}
	} else {
		client, err = ai.NewClient(ctx, ai.ClientConfig{
			Provider:       cfg.Provider,
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			Timeout:        cfg.Timeout,
			CircuitBreaker: cfg.CircuitBreaker,
		})
		if err != nil {
			return nil, err
		}
	}

	return ai.NewService(client,
		ai.WithExtractor(extractor),
		ai.WithPlanGeneration(cfg.PlanTemperature, cfg.PlanMaxTokens),
		ai.WithExtractionGeneration(cfg.ExtractionTemperature, cfg.ExtractionMaxTokens),
	), nil
}

// NewCatalog выбирает источник каталога курсов.
func NewCatalog(cfg config.CatalogConfig, db *pgxpool.Pool) (catalog.Source, error) {
	switch cfg.Source {
	case config.CatalogSourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres catalog requires a database connection")
		}
		return repository.NewCourseRepository(db), nil
	default:
		return catalog.NewFileCatalog(cfg.Path), nil
	}
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func aiRateLimiter(cfg config.AIConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
