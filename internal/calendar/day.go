// Package calendar turns appointments into laid-out days and weeks.
package calendar

import (
	"time"

	"github.com/adam-palmer1/calview/internal/appointment"
	"github.com/adam-palmer1/calview/internal/layout"
)

// MinutesPerDay is the exclusive upper bound of a minute-of-day value.
const MinutesPerDay = 24 * 60

// Item is a timed appointment positioned on one day. Start and End are
// minutes since that day's local midnight.
type Item struct {
	Appt  appointment.Appointment
	Start int
	End   int
}

func (i Item) StartMinutes() int { return i.Start }
func (i Item) EndMinutes() int   { return i.End }

// Day is one rendered day: all-day appointments listed separately, timed
// appointments placed into columns.
type Day struct {
	Date   time.Time
	AllDay []appointment.Appointment
	Timed  []layout.Placement[Item]
}

// Columns is the widest column count used anywhere on the day.
func (d Day) Columns() int {
	return layout.Columns(d.Timed)
}

// StartOfDay returns local midnight of t in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayItems splits appts into the timed items on day and the all-day
// appointments covering it. A timed item that runs past midnight is cut off
// at the end of the day and continues from minute 0 on the days after.
func DayItems(appts []appointment.Appointment, day time.Time) ([]Item, []appointment.Appointment) {
	start := StartOfDay(day)
	end := start.AddDate(0, 0, 1)
	loc := start.Location()

	var timed []Item
	var allDay []appointment.Appointment
	for _, a := range appts {
		if a.AllDay {
			if a.Intersects(start, end) {
				allDay = append(allDay, a)
			}
			continue
		}

		s := a.Start.In(loc)
		e := a.End.In(loc)

		var item Item
		switch {
		case StartOfDay(s).Equal(start):
			item = Item{Appt: a, Start: minuteOfDay(s)}
		case s.Before(start) && e.After(start):
			item = Item{Appt: a, Start: 0}
		default:
			continue
		}

		switch {
		case !e.Before(end):
			item.End = MinutesPerDay
		case e.Before(start):
			// Ends before the day begins; keep it degenerate rather than wrap.
			item.End = item.Start
		default:
			item.End = minuteOfDay(e)
		}
		timed = append(timed, item)
	}

	return timed, allDay
}

// DayLayout lays out one day with a single engine call.
func DayLayout(appts []appointment.Appointment, day time.Time) Day {
	timed, allDay := DayItems(appts, day)
	return Day{
		Date:   StartOfDay(day),
		AllDay: allDay,
		Timed:  layout.Arrange(timed),
	}
}

// ActiveAt returns the placements on d that cover minute. Zero-length items
// count as active at their start minute.
func ActiveAt(d Day, minute int) []layout.Placement[Item] {
	var out []layout.Placement[Item]
	for _, p := range d.Timed {
		s, e := p.Item.Start, p.Item.End
		if (s <= minute && minute < e) || (e <= s && minute == s) {
			out = append(out, p)
		}
	}
	return out
}

// Between returns the placements on d overlapping [from, to). Zero-length
// items count when their start falls inside the range.
func Between(d Day, from, to int) []layout.Placement[Item] {
	var out []layout.Placement[Item]
	for _, p := range d.Timed {
		s, e := p.Item.Start, p.Item.End
		if e <= s {
			if from <= s && s < to {
				out = append(out, p)
			}
			continue
		}
		if s < to && e > from {
			out = append(out, p)
		}
	}
	return out
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
