// Package service holds the application use cases: reserving registrations
// against paid orders, creating gateway orders and verifying payment
// signatures.  Every failure leaving this package is an *Error carrying a
// Kind that the transport layer maps to a response.
package service

import (
    "context"
    "errors"
    "fmt"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/database"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/payment"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/repository"
)

// Kind classifies a service failure.
type Kind string

const (
    KindInvalidInput     Kind = "invalid_input"
    KindNotFound         Kind = "not_found"
    KindInactive         Kind = "inactive"
    KindSoldOut          Kind = "sold_out"
    KindAlreadyProcessed Kind = "already_processed"
    KindTimeout          Kind = "timeout"
    KindInternal         Kind = "internal"
    KindInvalidSignature Kind = "invalid_signature"
    KindGateway          Kind = "gateway_error"
    KindMisconfigured    Kind = "misconfigured"
)

// Retryable reports whether the same request may succeed if sent again.
func (k Kind) Retryable() bool {
    switch k {
    case KindTimeout, KindInternal, KindGateway:
        return true
    }
    return false
}

// Error is returned by every service operation.  Event names the offending
// event for per-event kinds.  Err holds the underlying cause and is never
// part of Error() for internal kinds so storage detail does not reach
// clients.
type Error struct {
    Kind  Kind
    Event string
    Msg   string
    Err   error
}

func (e *Error) Error() string {
    msg := e.Msg
    if msg == "" {
        msg = defaultMessage(e.Kind)
    }
    if e.Event != "" {
        return fmt.Sprintf("%s: %s", msg, e.Event)
    }
    return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
    var se *Error
    if errors.As(err, &se) {
        return se.Kind
    }
    return KindInternal
}

func invalidInput(msg string) *Error {
    return &Error{Kind: KindInvalidInput, Msg: msg}
}

func defaultMessage(k Kind) string {
    switch k {
    case KindInvalidInput:
        return "invalid input"
    case KindNotFound:
        return "event not found"
    case KindInactive:
        return "event is not open for registration"
    case KindSoldOut:
        return "event is sold out"
    case KindAlreadyProcessed:
        return "payment already processed"
    case KindTimeout:
        return "reservation timed out, please retry"
    case KindInvalidSignature:
        return "invalid payment signature"
    case KindGateway:
        return "payment gateway error"
    case KindMisconfigured:
        return "payment gateway is not configured"
    }
    return "internal error"
}

// classify turns a storage or gateway error into an *Error.  Errors that
// are already classified pass through unchanged.
func classify(err error, dialect database.Dialect) *Error {
    var se *Error
    if errors.As(err, &se) {
        return se
    }
    var evErr *repository.EventError
    if errors.As(err, &evErr) {
        switch {
        case errors.Is(evErr.Err, repository.ErrEventNotFound):
            return &Error{Kind: KindNotFound, Event: evErr.Event, Err: err}
        case errors.Is(evErr.Err, repository.ErrEventInactive):
            return &Error{Kind: KindInactive, Event: evErr.Event, Err: err}
        case errors.Is(evErr.Err, repository.ErrSoldOut):
            return &Error{Kind: KindSoldOut, Event: evErr.Event, Err: err}
        }
    }
    var gwErr *payment.GatewayError
    switch {
    case errors.Is(err, repository.ErrPaymentAlreadyUsed):
        return &Error{Kind: KindAlreadyProcessed, Err: err}
    case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), dialect.IsLockTimeout(err):
        return &Error{Kind: KindTimeout, Err: err}
    case errors.Is(err, payment.ErrMisconfigured):
        return &Error{Kind: KindMisconfigured, Err: err}
    case errors.Is(err, payment.ErrInvalidAmount):
        return &Error{Kind: KindInvalidInput, Msg: "amount must be a positive number", Err: err}
    case errors.As(err, &gwErr):
        return &Error{Kind: KindGateway, Err: err}
    }
    return &Error{Kind: KindInternal, Err: err}
}
