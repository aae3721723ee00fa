package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/middleware"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/service"
)

const codeUnauthorized = "unauthorized"

type errorResponse struct {
    Error string `json:"error"`
    Code  string `json:"code"`
    Event string `json:"event,omitempty"`
}

var statusByKind = map[service.Kind]int{
    service.KindInvalidInput:     http.StatusBadRequest,
    service.KindInvalidSignature: http.StatusUnauthorized,
    service.KindNotFound:         http.StatusNotFound,
    service.KindInactive:         http.StatusConflict,
    service.KindSoldOut:          http.StatusConflict,
    service.KindAlreadyProcessed: http.StatusConflict,
    service.KindGateway:          http.StatusBadGateway,
    service.KindMisconfigured:    http.StatusServiceUnavailable,
    service.KindTimeout:          http.StatusServiceUnavailable,
    service.KindInternal:         http.StatusInternalServerError,
}

// writeError renders err as the JSON error envelope.  Errors that did not
// come from the service layer are reported as internal without detail.
func writeError(c echo.Context, err error) error {
    var se *service.Error
    if !errors.As(err, &se) {
        se = &service.Error{Kind: service.KindInternal, Err: err}
    }
    status, ok := statusByKind[se.Kind]
    if !ok {
        status = http.StatusInternalServerError
    }
    if se.Kind == service.KindTimeout {
        c.Response().Header().Set("Retry-After", "1")
    }
    return c.JSON(status, errorResponse{Error: se.Error(), Code: string(se.Kind), Event: se.Event})
}

// badRequest reports a payload that could not be decoded or is missing
// required fields.  It shares the invalid_input code with validation
// failures raised by the services.
func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Code: string(service.KindInvalidInput)})
}

// getUserID returns the caller's id placed in the context by JWTAuth.
func getUserID(c echo.Context) (string, error) {
    uid, ok := middleware.UserID(c)
    if !ok {
        return "", echo.ErrUnauthorized
    }
    return uid, nil
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", Code: codeUnauthorized})
}
