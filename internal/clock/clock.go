// Package clock lets services take the current time as a dependency.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
    Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now, in UTC.
func NewSystem() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

type fixedClock struct{ now time.Time }

// NewFixed returns a clock frozen at t.
func NewFixed(t time.Time) Clock { return fixedClock{now: t.UTC()} }

func (f fixedClock) Now() time.Time { return f.now }
