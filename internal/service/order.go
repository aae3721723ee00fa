package service

import (
    "context"
    "errors"
    "log/slog"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/database"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/model"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/payment"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/repository"
)

// OrderCreator opens a payment order with the gateway.
type OrderCreator interface {
    CreateOrder(ctx context.Context, total float64) (payment.Order, error)
}

// EventReader fetches events and their sold counts by name without locking.
type EventReader interface {
    AvailabilityByNames(ctx context.Context, names []string) (map[string]model.EventAvailability, error)
}

// OrderService creates gateway orders, optionally pricing them from the
// event catalogue.
type OrderService struct {
    gateway OrderCreator
    events  EventReader
}

// NewOrderService returns an OrderService.  events may be nil when only
// explicit amounts are used.
func NewOrderService(gateway OrderCreator, events EventReader) *OrderService {
    return &OrderService{gateway: gateway, events: events}
}

// Checkout is a priced order for a set of events.
type Checkout struct {
    Order  payment.Order `json:"order"`
    Total  model.Amount  `json:"total"`
    Events []model.Event `json:"events"`
}

// CreateOrder opens a gateway order for total, in major currency units.
func (s *OrderService) CreateOrder(ctx context.Context, total float64) (payment.Order, error) {
    o, err := s.gateway.CreateOrder(ctx, total)
    if err != nil {
        se := classify(err, database.Dialect{})
        attrs := []any{"kind", se.Kind, "error", err}
        var gwErr *payment.GatewayError
        if errors.As(err, &gwErr) {
            attrs = append(attrs, "gateway_status", gwErr.StatusCode, "gateway_body", string(gwErr.Body))
        }
        if se.Kind != KindInvalidInput {
            slog.ErrorContext(ctx, "create order failed", attrs...)
        }
        return payment.Order{}, se
    }
    return o, nil
}

// Checkout prices eventNames from the current catalogue and opens an order
// for the sum.  Missing, inactive and sold out events are rejected before
// the gateway is called so a client is never asked to pay for a ticket that
// is already gone.  The quote is advisory: availability and prices are
// checked again under lock when the reservation is made, and the
// registration records the price in force at that moment.
func (s *OrderService) Checkout(ctx context.Context, eventNames []string) (Checkout, error) {
    if s.events == nil {
        return Checkout{}, &Error{Kind: KindMisconfigured, Msg: "event pricing is not available"}
    }
    names, err := normalizeEventNames(eventNames)
    if err != nil {
        return Checkout{}, err
    }
    found, err := s.events.AvailabilityByNames(ctx, names)
    if err != nil {
        slog.ErrorContext(ctx, "checkout lookup failed", "error", err)
        return Checkout{}, &Error{Kind: KindInternal, Err: err}
    }

    view := make(map[string]repository.LockedEvent, len(found))
    for name, av := range found {
        view[name] = repository.LockedEvent{Event: av.Event, Sold: av.Sold}
    }
    if err := repository.CheckAvailability(names, view); err != nil {
        return Checkout{}, classify(err, database.Dialect{})
    }

    var total model.Amount
    events := make([]model.Event, 0, len(names))
    for _, name := range names {
        e := found[name].Event
        total += e.Price
        events = append(events, e)
    }
    if total <= 0 {
        return Checkout{}, invalidInput("selected events are free and cannot be paid for")
    }

    o, err := s.CreateOrder(ctx, total.Major())
    if err != nil {
        return Checkout{}, err
    }
    return Checkout{Order: o, Total: total, Events: events}, nil
}
