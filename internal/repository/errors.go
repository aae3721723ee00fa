// Package repository defines error types that are reused across multiple
// repositories.  The per-event sentinels below are wrapped in an EventError
// naming the offending event so higher layers can tell the caller which
// event to drop from a multi-event request.
package repository

import (
    "errors"
    "fmt"
)

// ErrEventNotFound is returned when a requested event name does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrEventInactive is returned when an event exists but is closed for
// registration.
var ErrEventInactive = errors.New("event inactive")

// ErrSoldOut is returned when an event has reached its ticket limit.
var ErrSoldOut = errors.New("sold out")

// ErrPaymentAlreadyUsed is returned when registrations already exist for an
// (order_id, payment_id) pair, either found by lookup or reported by the
// unique key on insert.
var ErrPaymentAlreadyUsed = errors.New("payment already recorded")

// ErrUserNotFound is returned when no user row matches the requested id.
var ErrUserNotFound = errors.New("user not found")

// EventError ties one of the per-event sentinels to the event name that
// triggered it.
type EventError struct {
    Event string
    Err   error
}

func (e *EventError) Error() string { return fmt.Sprintf("%v: %s", e.Err, e.Event) }

func (e *EventError) Unwrap() error { return e.Err }
