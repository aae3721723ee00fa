// Package queue defines message payloads exchanged over the message broker.
package queue

// DefaultQueue is the durable queue carrying registration confirmations.
const DefaultQueue = "registration.confirmed"

// RegistrationConfirmedEvent is published after a reservation commits.  It
// carries everything the mail consumer needs so it never has to query the
// primary database.
type RegistrationConfirmedEvent struct {
    RecipientEmail string   `json:"recipient_email"`
    RecipientName  string   `json:"recipient_name"`
    UserID         string   `json:"user_id"`
    EventNames     []string `json:"event_names"`
    OrderID        string   `json:"order_id"`
    PaymentID      string   `json:"payment_id"`
    Total          string   `json:"total"`
    ConfirmedAt    string   `json:"confirmed_at"`
}
