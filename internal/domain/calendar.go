package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DefaultReferenceLocation is China Standard Time (UTC+8, no daylight saving).
// All day-boundary arithmetic uses a reference location so results never
// depend on the zone of the machine doing the evaluation.
var DefaultReferenceLocation = time.FixedZone("CST", 8*60*60)

// Date is a calendar day with no time of day and no zone.
// The zero Date means "unset".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the normalized date for year, month and day.
// Out-of-range values roll over the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DateOf returns the calendar day that instant falls on in loc.
func DateOf(instant time.Time, loc *time.Location) Date {
	y, m, d := instant.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// StartOfDay truncates instant to 00:00:00 of its calendar day in loc.
// The result is identical for the same absolute instant on any machine.
func StartOfDay(instant time.Time, loc *time.Location) time.Time {
	return DateOf(instant, loc).In(loc)
}

// ParseDate accepts either a calendar date (YYYY-MM-DD) or an RFC 3339
// timestamp. Timestamps are reduced to their calendar day in loc.
func ParseDate(s string, loc *time.Location) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDueDate
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, s)
	}
	return DateOf(t, loc), nil
}

// In returns the first instant of the day in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// DaysSince returns the number of whole calendar days from other to d.
// Both days are anchored at UTC midnight, so the difference is exact even
// for locations that observe daylight saving. Seconds are used rather than
// time.Duration, which saturates after about 292 years.
func (d Date) DaysSince(other Date) int {
	const secondsPerDay = 24 * 60 * 60
	return int((d.In(time.UTC).Unix() - other.In(time.UTC).Unix()) / secondsPerDay)
}

// Before reports whether d is an earlier day than other.
func (d Date) Before(other Date) bool {
	return d.DaysSince(other) < 0
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.In(time.UTC).Format(DateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Only the YYYY-MM-DD form is accepted here; timestamps need a location.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(DateLayout, string(b))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDueDate, string(b))
	}
	*d = Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
	return nil
}
