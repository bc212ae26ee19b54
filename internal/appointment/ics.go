package appointment

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/sosodev/duration"

	appLog "github.com/adam-palmer1/calview/internal/log"
)

// ICSSource reads appointments from iCalendar files. Recurrence rules are not
// expanded; only the first instance of a recurring event is shown.
type ICSSource struct {
	*fileSource
	Location *time.Location
}

func NewICSSource(files ...string) *ICSSource {
	s := &ICSSource{Location: time.Local}
	s.fileSource = &fileSource{files: files, load: s.loadFile}
	return s
}

func (s *ICSSource) loadFile(path string) ([]Appointment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseICS(data, path, s.Location)
}

// ParseICS converts the VEVENTs in body into appointments. Events that cannot
// be read are logged and skipped.
func ParseICS(body []byte, path string, loc *time.Location) ([]Appointment, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var appts []Appointment
	for _, ve := range cal.Events() {
		a, err := veventToAppointment(ve, loc)
		if err != nil {
			appLog.Warn("skipping vevent", "path", path, "reason", err.Error())
			continue
		}
		a.Source = path
		appts = append(appts, a)
	}

	appLog.Debug("ics parse completed", "path", path, "count", len(appts))
	return appts, nil
}

func veventToAppointment(ve *ical.VEvent, loc *time.Location) (Appointment, error) {
	var a Appointment

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return a, errors.New("missing UID")
	}
	a.ID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		a.Title = strings.TrimSpace(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		a.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		a.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyColor); p != nil {
		a.Color = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, tag := range strings.Split(p.Value, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				a.Tags = append(a.Tags, tag)
			}
		}
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return a, errors.New("missing DTSTART")
	}
	a.AllDay = isDateValue(dtStart)

	if a.AllDay {
		start, err := ve.GetAllDayStartAt()
		if err != nil {
			return a, err
		}
		a.Start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		a.End = a.Start.AddDate(0, 0, 1)
		if end, err := ve.GetAllDayEndAt(); err == nil && end.After(start) {
			a.End = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
		} else if end, ok := durationEnd(ve, a.Start); ok && end.After(a.Start) {
			a.End = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
		}
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return a, err
		}
		a.Start = start.In(loc)
		a.End = a.Start
		if end, err := ve.GetEndAt(); err == nil {
			a.End = end.In(loc)
		} else if end, ok := durationEnd(ve, a.Start); ok {
			a.End = end
		}
	}

	if rrule := ve.GetProperty(ical.ComponentPropertyRrule); rrule != nil {
		appLog.Debug("recurrence not expanded", "uid", a.ID, "rrule", rrule.Value)
	}

	return a, nil
}

// durationEnd applies the event's DURATION to start. Weeks and days are added
// as calendar days so that an event keeps its wall-clock end across DST.
func durationEnd(ve *ical.VEvent, start time.Time) (time.Time, bool) {
	p := ve.GetProperty(ical.ComponentPropertyDuration)
	if p == nil || p.Value == "" {
		return start, false
	}
	d, err := duration.Parse(strings.TrimSpace(p.Value))
	if err != nil {
		appLog.Warn("ignoring DURATION", "value", p.Value, "reason", err.Error())
		return start, false
	}
	if d.Negative || d.Years != 0 || d.Months != 0 {
		appLog.Warn("ignoring DURATION", "value", p.Value, "reason", "not a positive week/day/time duration")
		return start, false
	}

	days := int(d.Weeks*7 + d.Days)
	clock := &duration.Duration{Hours: d.Hours, Minutes: d.Minutes, Seconds: d.Seconds}
	return start.AddDate(0, 0, days).Add(clock.ToTimeDuration()), true
}

// isDateValue detects VALUE=DATE or a date-only DTSTART.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}
