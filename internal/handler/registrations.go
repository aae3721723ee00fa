package handler

import (
    "context"
    "log/slog"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/model"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/service"
)

// PaymentVerifier checks a gateway payment signature.
type PaymentVerifier interface {
    VerifyPayment(orderID, paymentID, signature string) error
}

// Reserver books events against a verified payment.
type Reserver interface {
    Reserve(ctx context.Context, in service.ReserveInput) (service.ReserveResult, error)
}

// RegistrationLister returns a user's registrations.
type RegistrationLister interface {
    ListByUser(ctx context.Context, userID string) ([]model.Registration, error)
}

// RegistrationHandler verifies payments and turns them into registrations.
// All methods assume JWTAuth has run.
type RegistrationHandler struct {
    Payments      PaymentVerifier
    Reservations  Reserver
    Registrations RegistrationLister
}

func NewRegistrationHandler(payments PaymentVerifier, reservations Reserver, registrations RegistrationLister) *RegistrationHandler {
    if payments == nil || reservations == nil || registrations == nil {
        panic("nil dependency passed to NewRegistrationHandler")
    }
    return &RegistrationHandler{Payments: payments, Reservations: reservations, Registrations: registrations}
}

type paymentProof struct {
    OrderID   string `json:"order_id"`
    PaymentID string `json:"payment_id"`
    Signature string `json:"signature"`
}

// VerifyPayment handles POST /v1/payments/verify.
func (h *RegistrationHandler) VerifyPayment(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return unauthorized(c)
    }
    var body paymentProof
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    if err := h.Payments.VerifyPayment(body.OrderID, body.PaymentID, body.Signature); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"verified": true})
}

// Register handles POST /v1/registrations.  The payment signature is
// verified first; only a genuine payment reaches the reservation
// transaction.  On success it returns 201 with the registrations and the
// total charged at the prices in force when they were made.
func (h *RegistrationHandler) Register(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var body struct {
        EventNames []string `json:"event_names"`
        paymentProof
    }
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    if err := h.Payments.VerifyPayment(body.OrderID, body.PaymentID, body.Signature); err != nil {
        slog.WarnContext(c.Request().Context(), "registration rejected: payment not verified",
            "user_id", userID, "order_id", body.OrderID, "kind", service.KindOf(err))
        return writeError(c, err)
    }
    res, err := h.Reservations.Reserve(c.Request().Context(), service.ReserveInput{
        UserID:     userID,
        EventNames: body.EventNames,
        OrderID:    body.OrderID,
        PaymentID:  body.PaymentID,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// ListMine handles GET /v1/my-registrations.
func (h *RegistrationHandler) ListMine(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    regs, err := h.Registrations.ListByUser(c.Request().Context(), userID)
    if err != nil {
        slog.ErrorContext(c.Request().Context(), "list registrations failed", "user_id", userID, "error", err)
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"registrations": regs})
}
