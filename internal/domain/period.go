package domain

import (
	"fmt"
	"time"
)

// PeriodFunc maps a time to the start of the period containing it.
type PeriodFunc func(t time.Time) time.Time

// StartOfDay returns midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Monday of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// StartOfMonth returns midnight of the first day of the month containing t.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// ParsePeriod resolves "day", "week" or "month".
func ParsePeriod(name string) (PeriodFunc, error) {
	switch name {
	case "day":
		return StartOfDay, nil
	case "week":
		return StartOfWeek, nil
	case "month":
		return StartOfMonth, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, name)
	}
}
