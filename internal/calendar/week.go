package calendar

import (
	"time"

	"github.com/adam-palmer1/calview/internal/appointment"
)

// Week holds seven consecutive days starting on the configured first weekday.
type Week struct {
	Start time.Time
	Days  [7]Day
}

// WeekStart returns midnight of the first day of the week containing t.
func WeekStart(t time.Time, first time.Weekday) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) - int(first) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekLayout lays out each day of the week containing anyDay independently.
// Columns on one day never affect another.
func WeekLayout(appts []appointment.Appointment, anyDay time.Time, first time.Weekday) Week {
	w := Week{Start: WeekStart(anyDay, first)}
	for i := range w.Days {
		w.Days[i] = DayLayout(appts, w.Start.AddDate(0, 0, i))
	}
	return w
}

// End is the exclusive end of the week.
func (w Week) End() time.Time {
	return w.Start.AddDate(0, 0, 7)
}
