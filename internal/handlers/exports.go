package handlers

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/learning-path/backend/internal/catalog"
	"example.com/learning-path/backend/internal/models"
)

const (
	exportFormatCSV  = "csv"
	exportFormatJSON = "json"
)

type ExportHandler struct {
	Catalog catalog.Source
}

// NewExportHandler создает обработчик выгрузки планов.
func NewExportHandler(courses catalog.Source) *ExportHandler {
	return &ExportHandler{Catalog: courses}
}

type ExportRequest struct {
	Plan models.Plan `json:"plan"`
}

// Export выгружает готовый план файлом: CSV с названиями курсов из каталога или JSON как есть.
func (h *ExportHandler) Export(c echo.Context) error {
	var req ExportRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if len(req.Plan.Steps) == 0 {
		return badRequest(c, "plan has no steps")
	}

	format := strings.ToLower(strings.TrimSpace(c.QueryParam("format")))
	if format == "" {
		format = exportFormatCSV
	}

	filename := "learning-plan-" + time.Now().UTC().Format("20060102-150405") + "." + format

	switch format {
	case exportFormatJSON:
		c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
		return c.JSON(http.StatusOK, req.Plan)
	case exportFormatCSV:
	default:
		return badRequest(c, "invalid export format")
	}

	courses, err := h.Catalog.All(c.Request().Context())
	if err != nil {
		slog.Error("load catalog", slog.String("error", err.Error()))
		return serverError(c)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writePlanCSV(writer, req.Plan, courses); err != nil {
		return serverError(c)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// writePlanCSV пишет по строке на шаг; курсы, которых нет в каталоге, остаются без названия.
func writePlanCSV(writer *csv.Writer, plan models.Plan, courses []models.Course) error {
	header := []string{
		"step",
		"course_id",
		"course_title",
		"domain",
		"level",
		"hours",
		"cumulative_hours",
		"note",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	byID := make(map[int]models.Course, len(courses))
	for _, course := range courses {
		byID[course.ID] = course
	}

	cumulative := 0
	for _, step := range plan.Steps {
		cumulative += step.Hours
		course := byID[step.CourseID]

		record := []string{
			formatInt(step.Step),
			formatInt(step.CourseID),
			course.Title,
			course.Domain,
			course.Level,
			formatInt(step.Hours),
			formatInt(cumulative),
			step.Note,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func formatInt(value int) string {
	return strconv.Itoa(value)
}
