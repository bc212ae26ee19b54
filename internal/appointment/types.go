package appointment

import (
	"time"
)

type Appointment struct {
	ID          string
	Title       string
	Description string
	Location    string
	Color       string // hex, e.g. "#3b82f6"; empty uses the theme default
	Start       time.Time
	End         time.Time
	AllDay      bool
	Tags        []string
	Source      string // file the appointment was read from
}

// Duration is End-Start. It may be zero or negative for malformed records.
func (a Appointment) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

// Intersects reports whether a falls inside [start, end). All-day
// appointments are compared by calendar date.
func (a Appointment) Intersects(start, end time.Time) bool {
	if a.AllDay {
		first := dateOf(a.Start)
		last := first
		if a.End.After(a.Start) {
			last = dateOf(a.End)
			if a.End.Equal(last) {
				// The end of an all-day record is exclusive.
				last = last.AddDate(0, 0, -1)
			}
			if last.Before(first) {
				last = first
			}
		}
		return !last.Before(dateOf(start)) && first.Before(end)
	}
	if !a.End.After(a.Start) {
		return !a.Start.Before(start) && a.Start.Before(end)
	}
	return a.Start.Before(end) && a.End.After(start)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
