// Package system provides the real clock used where "today" is a
// date fallback.
package system

import "time"

// Clock implements dates.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
