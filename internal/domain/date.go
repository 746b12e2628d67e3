package domain

import (
	"fmt"
	"time"
)

// dateLayout is the calendar key format used everywhere in the system.
const dateLayout = "2006-01-02"

// Date is a plain calendar day key in YYYY-MM-DD form. It carries no time of
// day and no timezone; all arithmetic is simple calendar-day math. Dispatches
// are keyed by (user, Date), so two users in different timezones may well be
// on different Dates at the same instant and that is fine.
type Date struct {
	t time.Time
}

// ParseDate parses a YYYY-MM-DD calendar key.
// Returns ErrInvalidDate for anything else.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

// DateOf returns the calendar day containing t, read in t's own location.
// Storage layers use this to convert DATE columns back into keys.
func DateOf(t time.Time) Date {
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// MustParseDate is ParseDate for static inputs, typically in tests.
// It panics on malformed input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		// ALLOW-PANIC: static input helper
		panic(err)
	}
	return d
}

// String returns the YYYY-MM-DD key.
func (d Date) String() string {
	return d.t.Format(dateLayout)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// AddDays returns the date n calendar days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.t.Weekday()
}

// Month returns the calendar month.
func (d Date) Month() time.Month {
	return d.t.Month()
}

// Day returns the day of the month (1-31).
func (d Date) Day() int {
	return d.t.Day()
}

// Equal reports whether two dates name the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// MarshalJSON encodes the date as a JSON string in YYYY-MM-DD form.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a JSON string in YYYY-MM-DD form.
func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
