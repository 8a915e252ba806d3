package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/learning-path/backend/internal/auth"
	"example.com/learning-path/backend/internal/catalog"
	"example.com/learning-path/backend/internal/metrics"
	"example.com/learning-path/backend/internal/models"
	"example.com/learning-path/backend/internal/recommender"
)

const operationRecommend = "recommend"

type RecommendationHandler struct {
	Catalog     catalog.Source
	Recommender recommender.Greedy
}

// NewRecommendationHandler создает обработчик локальных рекомендаций без обращения к модели.
func NewRecommendationHandler(courses catalog.Source) *RecommendationHandler {
	return &RecommendationHandler{Catalog: courses}
}

type ProfileRequest struct {
	UserID        int      `json:"userId" validate:"gte=0"`
	TargetDomain  string   `json:"targetDomain" validate:"required,max=100"`
	CurrentLevel  string   `json:"currentLevel" validate:"required,oneof=Beginner Intermediate Advanced"`
	Interests     []string `json:"interests" validate:"omitempty,max=50,dive,max=100"`
	HoursPerWeek  int      `json:"hoursPerWeek" validate:"gt=0,lte=168"`
	DeadlineWeeks int      `json:"deadlineWeeks" validate:"gt=0,lte=520"`
}

type RecommendRequest struct {
	Profile ProfileRequest `json:"profile"`
}

// Recommend строит план жадным алгоритмом по каталогу.
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	var req RecommendRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	profile := req.Profile.toModel()
	if userID, ok := auth.UserIDFromContext(c); ok && profile.UserID == 0 {
		profile.UserID = userID
	}

	courses, err := h.Catalog.All(c.Request().Context())
	if err != nil {
		slog.Error("load catalog", slog.String("error", err.Error()))
		return serverError(c)
	}

	started := time.Now()
	plan := h.Recommender.MakePlan(profile, courses)
	metrics.ObserveAI(operationRecommend, outcomeSuccess, started)

	return c.JSON(http.StatusOK, plan)
}

func (p ProfileRequest) toModel() models.UserProfile {
	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}

	return models.UserProfile{
		UserID:        p.UserID,
		TargetDomain:  p.TargetDomain,
		CurrentLevel:  p.CurrentLevel,
		Interests:     interests,
		HoursPerWeek:  p.HoursPerWeek,
		DeadlineWeeks: p.DeadlineWeeks,
	}
}
