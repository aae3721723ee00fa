package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/payment"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/service"
)

// OrderService opens gateway orders.
type OrderService interface {
    CreateOrder(ctx context.Context, total float64) (payment.Order, error)
    Checkout(ctx context.Context, eventNames []string) (service.Checkout, error)
}

// OrderHandler exposes order creation to authenticated clients.
type OrderHandler struct {
    Orders OrderService
}

func NewOrderHandler(orders OrderService) *OrderHandler {
    if orders == nil {
        panic("nil order service passed to NewOrderHandler")
    }
    return &OrderHandler{Orders: orders}
}

type createOrderRequest struct {
    EventNames []string `json:"event_names"`
    Amount     *float64 `json:"amount"`
}

// CreateOrder handles POST /v1/orders.  With "event_names" the total is
// priced from the catalogue and the response includes the quote; with
// "amount" an order for exactly that many major units is opened.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return unauthorized(c)
    }
    var body createOrderRequest
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    ctx := c.Request().Context()
    switch {
    case len(body.EventNames) > 0:
        co, err := h.Orders.Checkout(ctx, body.EventNames)
        if err != nil {
            return writeError(c, err)
        }
        return c.JSON(http.StatusCreated, co)
    case body.Amount != nil:
        o, err := h.Orders.CreateOrder(ctx, *body.Amount)
        if err != nil {
            return writeError(c, err)
        }
        return c.JSON(http.StatusCreated, o)
    }
    return badRequest(c, "event_names or amount is required")
}
