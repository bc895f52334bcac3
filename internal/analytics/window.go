package analytics

import "time"

// Window is a reporting period. Start is inclusive; completions with
// ended_at >= Start count.
type Window int

const (
	Today Window = iota
	Week
	Month
	AllTime
)

// allTimeEpoch predates every completion the system can hold.
var allTimeEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func (w Window) String() string {
	switch w {
	case Today:
		return "today"
	case Week:
		return "7 days"
	case Month:
		return "30 days"
	default:
		return "all time"
	}
}

// Start returns the inclusive lower bound of the window relative to now.
// Today starts at UTC midnight; the rolling windows look back whole days.
func (w Window) Start(now time.Time) time.Time {
	now = now.UTC()
	switch w {
	case Today:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case Week:
		return now.AddDate(0, 0, -7)
	case Month:
		return now.AddDate(0, 0, -30)
	default:
		return allTimeEpoch
	}
}

// StartString is Start formatted the way timestamps are stored, ready for a
// direct string comparison in SQL.
func (w Window) StartString(now time.Time) string {
	return w.Start(now).Format(time.RFC3339)
}
