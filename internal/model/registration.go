package model

import "time"

// Registration records one user's booking of one event, tied to the
// payment that paid for it.  Price is a snapshot taken when the booking was
// made; later price changes on the event do not affect it.  Rows are
// written once and never updated.
type Registration struct {
    ID        uint64    `json:"id,omitempty"`
    EventName string    `json:"event_name"`
    OrderID   string    `json:"order_id"`
    PaymentID string    `json:"payment_id"`
    Price     Amount    `json:"price"`
    UserID    string    `json:"user_id"`
    CreatedAt time.Time `json:"created_at"`
}
