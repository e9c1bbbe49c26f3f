package shared

import (
	"fmt"
	"strings"
	"time"
)

// Timespan represents the aggregation bucket unit used by the upstream
// aggregates api.
type Timespan string

const (
	Minute Timespan = "minute"
	Hour   Timespan = "hour"
	Day    Timespan = "day"
)

// Duration represents the requestable chart time windows.
type Duration int

const (
	OneHour Duration = iota
	OneDay
	OneWeek
	OneMonth
)

// String stringifies the provided duration.
func (d *Duration) String() string {
	switch *d {
	case OneHour:
		return "hour"
	case OneDay:
		return "day"
	case OneWeek:
		return "week"
	case OneMonth:
		return "month"
	default:
		return "unknown"
	}
}

// ParseDuration parses a duration keyword. Matching is case insensitive.
func ParseDuration(keyword string) (Duration, error) {
	switch strings.ToLower(keyword) {
	case "hour":
		return OneHour, nil
	case "day":
		return OneDay, nil
	case "week":
		return OneWeek, nil
	case "month":
		return OneMonth, nil
	default:
		return 0, NewValidationError(fmt.Sprintf("invalid duration: %s", keyword))
	}
}

// Window represents a concrete query window derived from a duration: the
// time range to fetch and the bar granularity to fetch it at.
type Window struct {
	Start      time.Time
	End        time.Time
	Timespan   Timespan
	Multiplier int
}

// Span returns the length of the window.
func (w *Window) Span() time.Duration {
	return w.End.Sub(w.Start)
}

// ResolveWindow maps a duration to its query window anchored at now.
func ResolveWindow(duration Duration, now time.Time) (Window, error) {
	switch duration {
	case OneHour:
		return Window{Start: now.Add(-time.Hour), End: now, Timespan: Minute, Multiplier: 1}, nil
	case OneDay:
		return Window{Start: now.AddDate(0, 0, -1), End: now, Timespan: Minute, Multiplier: 5}, nil
	case OneWeek:
		return Window{Start: now.AddDate(0, 0, -7), End: now, Timespan: Hour, Multiplier: 1}, nil
	case OneMonth:
		return Window{Start: now.AddDate(0, 0, -30), End: now, Timespan: Day, Multiplier: 1}, nil
	default:
		return Window{}, NewValidationError(fmt.Sprintf("invalid duration: %d", duration))
	}
}

// NewYorkTime returns the current time in new york (EST/EDT adjusted automatically).
func NewYorkTime() (time.Time, *time.Location, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("loading new york timezone: %w", err)
	}

	now := time.Now().In(loc)
	return now, loc, nil
}
