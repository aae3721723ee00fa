package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "testing"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/model"
)

type stubLister struct {
    items []model.EventAvailability
    err   error
}

func (s stubLister) ListActive(context.Context) ([]model.EventAvailability, error) { return s.items, s.err }

func TestListEvents(t *testing.T) {
    t.Parallel()

    limit := int64(10)
    items := []model.EventAvailability{
        model.NewEventAvailability(model.Event{Name: "Chess", Price: 10000, TicketLimit: &limit, Active: true}, 4),
        model.NewEventAvailability(model.Event{Name: "Expo", Price: 0, Active: true}, 120),
    }
    c, rec := newContext(http.MethodGet, "/v1/events", "", "")
    if err := NewEventHandler(stubLister{items: items}).ListEvents(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    body := rec.Body.String()
    if rec.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rec.Code)
    }
    if !strings.Contains(body, `"remaining":6`) || !strings.Contains(body, `"remaining":null`) {
        t.Fatalf("expected derived remaining capacity, got %s", body)
    }

    c, rec = newContext(http.MethodGet, "/v1/events", "", "")
    _ = NewEventHandler(stubLister{err: errors.New("db down")}).ListEvents(c)
    if rec.Code != http.StatusInternalServerError {
        t.Fatalf("expected 500, got %d", rec.Code)
    }
}
