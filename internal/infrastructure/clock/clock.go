// Package clock provides sources of the current instant.
//
// Every source returns UTC instants. Day-boundary arithmetic is done by the
// domain package against an explicit reference location.
package clock

import (
	"context"
	"time"
)

// Local reads the host clock.
type Local struct{}

// Now returns the host's current instant.
func (Local) Now(context.Context) time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant. Used by the admin CLI to
// evaluate the board at a chosen moment, and by tests.
type Fixed time.Time

// Now returns the fixed instant.
func (f Fixed) Now(context.Context) time.Time {
	return time.Time(f).UTC()
}
