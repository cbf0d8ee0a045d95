package types

import (
	"fmt"
	"strings"
	"time"
)

// DayHours describes one day's service window in "HH:MM" local time.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed,omitempty"`
}

// WeeklyHours maps lowercase weekday names to service windows.
type WeeklyHours map[string]DayHours

// For returns the hours configured for the given weekday.
func (w WeeklyHours) For(day time.Weekday) (DayHours, bool) {
	if w == nil {
		return DayHours{}, false
	}
	hours, ok := w[strings.ToLower(day.String())]
	return hours, ok
}

// Window resolves the day's open/close to concrete instants on the given date.
// Returns ok=false when the day is marked closed.
func (d DayHours) Window(date time.Time) (start, end time.Time, ok bool, err error) {
	if d.Closed {
		return time.Time{}, time.Time{}, false, nil
	}
	start, err = atClock(date, d.Open)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("opening hours: %w", err)
	}
	end, err = atClock(date, d.Close)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("opening hours: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, false, fmt.Errorf("opening hours: close %q not after open %q", d.Close, d.Open)
	}
	return start, end, true, nil
}

func atClock(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock value %q: %w", clock, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}
