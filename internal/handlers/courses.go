package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/learning-path/backend/internal/catalog"
	"example.com/learning-path/backend/internal/models"
)

type CourseHandler struct {
	Catalog catalog.Source
}

// NewCourseHandler создает обработчик каталога курсов.
func NewCourseHandler(courses catalog.Source) *CourseHandler {
	return &CourseHandler{Catalog: courses}
}

type CoursesResponse struct {
	Total   int             `json:"total"`
	Courses []models.Course `json:"courses"`
}

type TagsResponse struct {
	Tags []string `json:"tags"`
}

// List возвращает курсы каталога с фильтром по домену и уровню.
func (h *CourseHandler) List(c echo.Context) error {
	courses, err := h.Catalog.All(c.Request().Context())
	if err != nil {
		slog.Error("load catalog", slog.String("error", err.Error()))
		return serverError(c)
	}

	filtered := catalog.Filter(
		courses,
		strings.TrimSpace(c.QueryParam("domain")),
		strings.TrimSpace(c.QueryParam("level")),
	)

	return c.JSON(http.StatusOK, CoursesResponse{
		Total:   len(filtered),
		Courses: filtered,
	})
}

// Get возвращает курс по id.
func (h *CourseHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return badRequest(c, "invalid course id")
	}

	courses, err := h.Catalog.All(c.Request().Context())
	if err != nil {
		slog.Error("load catalog", slog.String("error", err.Error()))
		return serverError(c)
	}

	for _, course := range courses {
		if course.ID == id {
			return c.JSON(http.StatusOK, course)
		}
	}

	return notFound(c, "course not found")
}

// Tags возвращает уникальные теги каталога, пригодные как белый список для разбора цели.
func (h *CourseHandler) Tags(c echo.Context) error {
	tags, err := h.Catalog.Tags(c.Request().Context())
	if err != nil {
		slog.Error("load catalog tags", slog.String("error", err.Error()))
		return serverError(c)
	}

	return c.JSON(http.StatusOK, TagsResponse{Tags: tags})
}
