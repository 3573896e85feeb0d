package security

import "time"

// Clock is the time source used by the stateful security components.
// Injecting it keeps window arithmetic deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now
type SystemClock struct{}

// Now returns the current system time
func (SystemClock) Now() time.Time {
	return time.Now()
}
