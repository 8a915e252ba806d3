package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"example.com/learning-path/backend/internal/ai"
	"example.com/learning-path/backend/internal/auth"
	"example.com/learning-path/backend/internal/catalog"
	"example.com/learning-path/backend/internal/metrics"
	"example.com/learning-path/backend/internal/models"
	"example.com/learning-path/backend/internal/notifications"
	"example.com/learning-path/backend/internal/repository"
)

const (
	operationExtraction = "extraction"
	operationPlan       = "plan"

	outcomeSuccess  = "success"
	outcomeFallback = "fallback"
)

// RequestLogger сохраняет журнал обращений к модели; nil отключает журнал.
type RequestLogger interface {
	LogRequest(ctx context.Context, log repository.AIRequestLog) error
}

type AIHandler struct {
	Service  *ai.Service
	Catalog  catalog.Source
	Requests RequestLogger
	Events   *notifications.Hub
	Provider string
	Model    string
}

// NewAIHandler создает обработчик AI-запросов.
func NewAIHandler(service *ai.Service, courses catalog.Source, requests RequestLogger, events *notifications.Hub, provider, model string) *AIHandler {
	return &AIHandler{
		Service:  service,
		Catalog:  courses,
		Requests: requests,
		Events:   events,
		Provider: provider,
		Model:    model,
	}
}

type ExtractRequest struct {
	Description    string   `json:"description" validate:"required,max=4000"`
	AvailableTags  []string `json:"availableTags" validate:"omitempty,max=500,dive,max=100"`
	UseCatalogTags bool     `json:"useCatalogTags"`
}

type PlanRequest struct {
	Profile    models.UserProfile `json:"profile"`
	Courses    []models.Course    `json:"courses"`
	UseCatalog bool               `json:"useCatalog"`
}

// Extract разбирает описание цели; сбой модели заменяется эвристикой, ответ всегда 200.
func (h *AIHandler) Extract(c echo.Context) error {
	var req ExtractRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()

	tags := req.AvailableTags
	if len(tags) == 0 && req.UseCatalogTags {
		catalogTags, err := h.Catalog.Tags(ctx)
		if err != nil {
			slog.Error("load catalog tags", slog.String("error", err.Error()))
			return serverError(c)
		}
		tags = catalogTags
	}

	started := time.Now()
	result, exchange := h.Service.GenerateExtraction(ctx, req.Description, tags)
	elapsed := time.Since(started)

	outcome := outcomeSuccess
	if result.Fallback {
		outcome = outcomeFallback
		slog.Warn("ai extraction fallback used",
			slog.String("request_id", requestID(c)),
			slog.String("kind", ai.KindName(exchange.Err)),
			slog.String("error", errorText(exchange.Err)),
		)
	} else {
		slog.Info("ai extraction completed",
			slog.String("request_id", requestID(c)),
			slog.String("domain", result.TargetDomain),
			slog.Int("tags", len(result.Tags)),
		)
	}
	metrics.ObserveAI(operationExtraction, outcome, started)

	userID := userIDFor(c, 0)
	h.logAIRequest(c, repository.RequestTypeExtraction, userID, req, result, exchange, result.Fallback, elapsed)
	publishExtraction(h.Events, userID, result)

	return c.JSON(http.StatusOK, result)
}

// Plan запрашивает у модели учебный план. Запасного плана нет: ошибка уходит клиенту.
func (h *AIHandler) Plan(c echo.Context) error {
	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()

	if userID, ok := auth.UserIDFromContext(c); ok && req.Profile.UserID == 0 {
		req.Profile.UserID = userID
	}

	courses := req.Courses
	if len(courses) == 0 && req.UseCatalog {
		loaded, err := h.Catalog.All(ctx)
		if err != nil {
			slog.Error("load catalog", slog.String("error", err.Error()))
			return serverError(c)
		}
		courses = loaded
	}

	started := time.Now()
	plan, exchange, err := h.Service.GeneratePlan(ctx, req.Profile, courses)
	elapsed := time.Since(started)

	if err != nil {
		kind := ai.KindName(err)
		metrics.ObserveAI(operationPlan, kind, started)
		slog.Warn("ai plan generation failed",
			slog.String("request_id", requestID(c)),
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)

		if !errors.Is(err, ai.ErrInput) {
			userID := userIDFor(c, req.Profile.UserID)
			h.logAIRequest(c, repository.RequestTypePlan, userID, req, nil, exchange, false, elapsed)
			publishPlanFailure(h.Events, userID, err)
		}
		return generationFailed(c, err)
	}

	metrics.ObserveAI(operationPlan, outcomeSuccess, started)
	slog.Info("ai plan generated",
		slog.String("request_id", requestID(c)),
		slog.Int("user_id", req.Profile.UserID),
		slog.Int("steps", len(plan.Steps)),
		slog.Int("total_hours", plan.TotalHours),
	)

	userID := userIDFor(c, req.Profile.UserID)
	h.logAIRequest(c, repository.RequestTypePlan, userID, req, plan, exchange, false, elapsed)
	publishPlan(h.Events, userID, plan)

	return c.JSON(http.StatusOK, plan)
}

func (h *AIHandler) logAIRequest(c echo.Context, requestType string, userID *int, request, response any, exchange ai.Exchange, fallback bool, elapsed time.Duration) {
	if h.Requests == nil {
		return
	}

	requestPayload, _ := json.Marshal(request)
	var responsePayload []byte
	if response != nil {
		responsePayload, _ = json.Marshal(response)
	}

	log := repository.AIRequestLog{
		RequestID:       requestID(c),
		UserID:          userID,
		RequestType:     requestType,
		Provider:        h.Provider,
		Model:           h.Model,
		Prompt:          exchange.Prompt,
		RequestPayload:  requestPayload,
		ResponsePayload: responsePayload,
		RawResponse:     exchange.Raw,
		Success:         exchange.Err == nil,
		Fallback:        fallback,
		Duration:        elapsed,
	}
	if exchange.Err != nil {
		kind := ai.KindName(exchange.Err)
		errMsg := exchange.Err.Error()
		log.ErrorKind = &kind
		log.ErrorMessage = &errMsg
	}

	if err := h.Requests.LogRequest(c.Request().Context(), log); err != nil {
		slog.Warn("ai request log failed", slog.String("error", err.Error()))
	}
}

// userIDFor предпочитает пользователя из токена, иначе берет id из профиля.
func userIDFor(c echo.Context, profileUserID int) *int {
	if userID, ok := auth.UserIDFromContext(c); ok {
		return &userID
	}
	if profileUserID > 0 {
		return &profileUserID
	}
	return nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
