// Package clock provides the injectable time source used by every
// decay and elapsed-time calculation.
package clock

import "time"

// Clock returns the current instant.
type Clock func() time.Time

// System returns a Clock backed by time.Now in UTC.
func System() Clock {
	return func() time.Time { return time.Now().UTC() }
}

// Fixed returns a Clock frozen at t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// Or returns c, or the system clock when c is nil.
func Or(c Clock) Clock {
	if c == nil {
		return System()
	}
	return c
}

// DaysBetween returns the fractional number of days from a to b.
// Negative spans are reported as zero.
func DaysBetween(a, b time.Time) float64 {
	d := b.Sub(a).Hours() / 24.0
	if d < 0 {
		return 0
	}
	return d
}
