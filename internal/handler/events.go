package handler

import (
    "context"
    "log/slog"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/model"
)

// EventLister lists open events with their remaining capacity.
type EventLister interface {
    ListActive(ctx context.Context) ([]model.EventAvailability, error)
}

// EventHandler serves the public event catalogue.
type EventHandler struct {
    Events EventLister
}

func NewEventHandler(events EventLister) *EventHandler {
    if events == nil {
        panic("nil event lister passed to NewEventHandler")
    }
    return &EventHandler{Events: events}
}

// ListEvents handles GET /v1/events.  Remaining is null for events without
// a ticket limit.
func (h *EventHandler) ListEvents(c echo.Context) error {
    items, err := h.Events.ListActive(c.Request().Context())
    if err != nil {
        slog.ErrorContext(c.Request().Context(), "list events failed", "error", err)
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"events": items})
}
