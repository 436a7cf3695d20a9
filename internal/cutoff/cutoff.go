// Package cutoff decides whether lunch submissions are still accepted.
//
// The deadline is a time of day. It is combined with the calendar date of
// "now" in a single configured location, so both sides of the comparison
// always use the same timezone.
package cutoff

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeOfDay is returned when a time of day cannot be parsed.
var ErrInvalidTimeOfDay = errors.New("invalid time of day, use HH:MM")

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// MustParse is ParseTimeOfDay for constants; it panics on bad input.
func MustParse(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

// String formats the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Deadline returns the instant on now's calendar day (in loc) at which
// submissions close.
func Deadline(now time.Time, cutoff TimeOfDay, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), cutoff.Hour, cutoff.Minute, 0, 0, loc)
}

// IsOpen reports whether now is strictly before the same-day deadline.
// A submission at exactly the deadline is closed.
func IsOpen(now time.Time, cutoff TimeOfDay, loc *time.Location) bool {
	return now.Before(Deadline(now, cutoff, loc))
}
