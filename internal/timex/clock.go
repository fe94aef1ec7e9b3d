package timex

import "time"

// Clock supplies the current instant. Ledgers take a Clock instead of
// calling time.Now so TTL and day-boundary logic can be tested.
type Clock interface {
	Now() time.Time
}

// SystemClock reports the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// DayOf returns midnight UTC of the calendar day containing t.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayKey formats the UTC calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
