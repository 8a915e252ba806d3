package handlers

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"example.com/learning-path/backend/internal/ai"
	"example.com/learning-path/backend/internal/auth"
	"example.com/learning-path/backend/internal/models"
	"example.com/learning-path/backend/internal/notifications"
)

type EventHandler struct {
	Hub *notifications.Hub
}

// NewEventHandler создает SSE-обработчик событий генерации.
func NewEventHandler(hub *notifications.Hub) *EventHandler {
	return &EventHandler{Hub: hub}
}

// Stream открывает SSE-поток событий для пользователя.
func (h *EventHandler) Stream(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ch, unsubscribe := h.Hub.Subscribe(userID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{Type: notifications.EventConnected, Data: map[string]string{"user_id": strconv.Itoa(userID)}})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}

func publishExtraction(hub *notifications.Hub, userID *int, result ai.ExtractionResult) {
	if hub == nil || userID == nil {
		return
	}

	hub.Publish(*userID, notifications.Event{
		Type: notifications.EventExtraction,
		Data: map[string]interface{}{
			"target_domain": result.TargetDomain,
			"tags":          len(result.Tags),
			"fallback":      result.Fallback,
		},
	})
}

func publishPlan(hub *notifications.Hub, userID *int, plan models.Plan) {
	if hub == nil || userID == nil {
		return
	}

	hub.Publish(*userID, notifications.Event{
		Type: notifications.EventPlanGenerated,
		Data: map[string]interface{}{
			"steps":       len(plan.Steps),
			"total_hours": plan.TotalHours,
		},
	})
}

func publishPlanFailure(hub *notifications.Hub, userID *int, err error) {
	if hub == nil || userID == nil {
		return
	}

	hub.Publish(*userID, notifications.Event{
		Type: notifications.EventPlanFailed,
		Data: map[string]interface{}{
			"kind":  ai.KindName(err),
			"error": err.Error(),
		},
	})
}
