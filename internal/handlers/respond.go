package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/learning-path/backend/internal/ai"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

type GenerationErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}

// generationFailed отдает ошибку движка: 400 для неверного ввода, 502 для сбоев модели.
func generationFailed(c echo.Context, err error) error {
	response := GenerationErrorResponse{
		Error:     err.Error(),
		Kind:      ai.KindName(err),
		Retryable: true,
	}

	var genErr *ai.GenerationError
	if errors.As(err, &genErr) {
		response.Retryable = genErr.Retryable()
	}

	if errors.Is(err, ai.ErrInput) {
		response.Retryable = false
		return c.JSON(http.StatusBadRequest, response)
	}

	return c.JSON(http.StatusBadGateway, response)
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
