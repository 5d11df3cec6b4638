package core

import (
	"time"
)

// =============================================================================
// CLOCK - Injected time source
// =============================================================================

// Clock is the single source of "now". Expiry and urgency computations are
// date-based derivations, so anything that needs the current time takes a
// Clock (or an explicit time.Time) rather than calling time.Now itself.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall-clock backed Clock used in production.
func SystemClock() Clock { return systemClock{} }

// FixedClock always reports the same instant. For tests.
type FixedClock struct {
	T time.Time
}

func (f FixedClock) Now() time.Time { return f.T }

// NewFixedClock builds a FixedClock pinned to midnight UTC of the given date.
func NewFixedClock(year int, month time.Month, day int) FixedClock {
	return FixedClock{T: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// =============================================================================
// DATE ARITHMETIC
// =============================================================================

// DateOf truncates t to midnight UTC. All expiry comparisons operate on
// calendar dates, not instants.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from one date to
// another. Negative when to is before from.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// DaysUntil returns how many calendar days remain from now until the given
// date. Zero means the date is today; negative means it has passed.
func DaysUntil(now, date time.Time) int {
	return DaysBetween(now, date)
}
