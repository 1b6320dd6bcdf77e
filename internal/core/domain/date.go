package domain

import (
	"fmt"
	"time"
)

// DateLayout is the layout of every date key used by the engine.
const DateLayout = "2006-01-02"

// DateOf returns the date key of t in loc.
// A nil loc means time.Local.
func DateOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD key as midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", ErrInvalidInput, date, err)
	}
	return t, nil
}

// DayBounds returns [start of day, start of next day) for a date key.
func DayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 1), nil
}

// AddDays shifts a date key by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: date %q: %v", ErrInvalidInput, date, err)
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}
