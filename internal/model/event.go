package model

// Event is a bookable, priced event.  Name is the identity: registrations
// reference events by name rather than by surrogate id.
//
// Fields:
//  Name        – unique human-chosen name.
//  Price       – current price per ticket.
//  TicketLimit – maximum number of registrations; nil means unlimited.
//  Active      – inactive events accept no new registrations.
type Event struct {
    Name        string `json:"name"`
    Price       Amount `json:"price"`
    TicketLimit *int64 `json:"ticket_limit"`
    Active      bool   `json:"active"`
}

// Unlimited reports whether the event has no ticket limit.
func (e Event) Unlimited() bool { return e.TicketLimit == nil }

// SoldOut reports whether sold registrations have reached the limit.
func (e Event) SoldOut(sold int64) bool {
    return e.TicketLimit != nil && sold >= *e.TicketLimit
}

// EventAvailability is an event together with its derived capacity.
// Remaining is nil for unlimited events.
type EventAvailability struct {
    Event
    Sold      int64  `json:"sold"`
    Remaining *int64 `json:"remaining"`
}

// NewEventAvailability derives the remaining capacity of e given sold.
func NewEventAvailability(e Event, sold int64) EventAvailability {
    av := EventAvailability{Event: e, Sold: sold}
    if e.TicketLimit != nil {
        left := *e.TicketLimit - sold
        if left < 0 {
            left = 0
        }
        av.Remaining = &left
    }
    return av
}
