// Package parser reads the free-form dates typed into the goto prompt and the
// --date flag.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Target is where a navigation request points. Minutes is only meaningful
// when HasTime is set.
type Target struct {
	Date    time.Time // local midnight
	HasTime bool
	Minutes int // minutes since midnight
}

// At returns the target as a single instant.
func (t Target) At() time.Time {
	if !t.HasTime {
		return t.Date
	}
	return t.Date.Add(time.Duration(t.Minutes) * time.Minute)
}

type TimeParser struct {
	now      time.Time
	location *time.Location
}

var (
	weekdayRe   = regexp.MustCompile(`^(?:(next|this|last)\s+)?(mon|monday|tue|tues|tuesday|wed|wednesday|thu|thur|thurs|thursday|fri|friday|sat|saturday|sun|sunday)\b`)
	inRe        = regexp.MustCompile(`^in\s+(\d+)\s+(day|days|week|weeks|month|months)\b`)
	agoRe       = regexp.MustCompile(`^(\d+)\s+(day|days|week|weeks|month|months)\s+(from\s+(?:now|today)|ago)\b`)
	offsetRe    = regexp.MustCompile(`^([+-])(\d+)([dwm]?)\b`)
	isoRe       = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	dateRe      = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)
	shortDateRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})\b`)
	monthNameRe = regexp.MustCompile(`^(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december)\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	dayMonthRe  = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?\s+(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december)\b(?:,?\s+(\d{4}))?`)
	timeRe      = regexp.MustCompile(`^(\d{1,2})(?::?(\d{2}))?\s*(am|pm|a|p)?\b`)
)

var namedTimes = []struct {
	name   string
	minute int
}{
	{"midnight", 0},
	{"noon", 12 * 60},
	{"morning", 9 * 60},
	{"afternoon", 14 * 60},
	{"evening", 18 * 60},
	{"night", 21 * 60},
	{"now", -1},
}

func NewTimeParser() *TimeParser {
	return &TimeParser{
		now:      time.Now(),
		location: time.Local,
	}
}

func (p *TimeParser) SetNow(now time.Time) {
	p.now = now
	p.location = now.Location()
}

// Parse reads a date, a time, or both. With no date the target is today.
// Text left over after the date and time is an error.
func (p *TimeParser) Parse(input string) (Target, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Target{}, fmt.Errorf("empty input")
	}

	var target Target
	remaining := strings.ToLower(input)

	date, rest, ok, err := p.parseRelativeDate(remaining)
	if err == nil && !ok {
		date, rest, ok, err = p.parseAbsoluteDate(remaining)
	}
	if err != nil {
		return Target{}, err
	}
	if ok {
		target.Date = date
		remaining = rest
	} else {
		target.Date = p.today()
	}

	if minutes, rest, ok, err := p.parseTime(remaining); err != nil {
		return Target{}, err
	} else if ok {
		target.HasTime = true
		target.Minutes = minutes
		remaining = rest
	}

	if remaining != "" {
		return Target{}, fmt.Errorf("cannot understand %q", remaining)
	}
	return target, nil
}

func (p *TimeParser) parseRelativeDate(input string) (time.Time, string, bool, error) {
	for _, word := range []struct {
		prefix string
		days   int
	}{
		{"today", 0},
		{"tomorrow", 1},
		{"tmrw", 1},
		{"yesterday", -1},
	} {
		if rest, ok := cutWord(input, word.prefix); ok {
			return p.today().AddDate(0, 0, word.days), rest, true, nil
		}
	}

	if matches := weekdayRe.FindStringSubmatch(input); matches != nil {
		weekday := parseWeekday(matches[2])
		date := p.findWeekday(weekday, matches[1])
		return date, strings.TrimSpace(input[len(matches[0]):]), true, nil
	}

	if matches := inRe.FindStringSubmatch(input); matches != nil {
		n, _ := strconv.Atoi(matches[1])
		return p.shift(n, matches[2]), strings.TrimSpace(input[len(matches[0]):]), true, nil
	}

	if matches := agoRe.FindStringSubmatch(input); matches != nil {
		n, _ := strconv.Atoi(matches[1])
		if matches[3] == "ago" {
			n = -n
		}
		return p.shift(n, matches[2]), strings.TrimSpace(input[len(matches[0]):]), true, nil
	}

	// +3, -1w, +2m
	if matches := offsetRe.FindStringSubmatch(input); matches != nil {
		n, _ := strconv.Atoi(matches[2])
		if matches[1] == "-" {
			n = -n
		}
		unit := map[string]string{"": "day", "d": "day", "w": "week", "m": "month"}[matches[3]]
		return p.shift(n, unit), strings.TrimSpace(input[len(matches[0]):]), true, nil
	}

	return time.Time{}, input, false, nil
}

func (p *TimeParser) parseAbsoluteDate(input string) (time.Time, string, bool, error) {
	// YYYY-MM-DD
	if matches := isoRe.FindStringSubmatch(input); matches != nil {
		year, _ := strconv.Atoi(matches[1])
		month, _ := strconv.Atoi(matches[2])
		day, _ := strconv.Atoi(matches[3])
		date, err := p.date(year, month, day)
		return date, strings.TrimSpace(input[len(matches[0]):]), err == nil, err
	}

	// MM/DD/YYYY or MM-DD-YYYY
	if matches := dateRe.FindStringSubmatch(input); matches != nil {
		month, _ := strconv.Atoi(matches[1])
		day, _ := strconv.Atoi(matches[2])
		year, _ := strconv.Atoi(matches[3])
		date, err := p.date(year, month, day)
		return date, strings.TrimSpace(input[len(matches[0]):]), err == nil, err
	}

	// MM/DD or MM-DD (assume current year)
	if matches := shortDateRe.FindStringSubmatch(input); matches != nil {
		month, _ := strconv.Atoi(matches[1])
		day, _ := strconv.Atoi(matches[2])
		date, err := p.date(p.now.Year(), month, day)
		return date, strings.TrimSpace(input[len(matches[0]):]), err == nil, err
	}

	// Month DD, YYYY or Month DD
	if matches := monthNameRe.FindStringSubmatch(input); matches != nil {
		day, _ := strconv.Atoi(matches[2])
		year := p.now.Year()
		if matches[3] != "" {
			year, _ = strconv.Atoi(matches[3])
		}
		date, err := p.date(year, int(parseMonth(matches[1])), day)
		return date, strings.TrimSpace(input[len(matches[0]):]), err == nil, err
	}

	// DD Month YYYY or DD Month
	if matches := dayMonthRe.FindStringSubmatch(input); matches != nil {
		day, _ := strconv.Atoi(matches[1])
		year := p.now.Year()
		if matches[3] != "" {
			year, _ = strconv.Atoi(matches[3])
		}
		date, err := p.date(year, int(parseMonth(matches[2])), day)
		return date, strings.TrimSpace(input[len(matches[0]):]), err == nil, err
	}

	return time.Time{}, input, false, nil
}

// parseTime returns minutes since midnight.
func (p *TimeParser) parseTime(input string) (int, string, bool, error) {
	if rest, ok := cutWord(input, "at"); ok {
		input = rest
	}
	if input == "" {
		return 0, input, false, nil
	}

	// Single time (e.g., "2pm", "14:00", "2:30pm", "1430")
	if matches := timeRe.FindStringSubmatch(input); matches != nil {
		hour, _ := strconv.Atoi(matches[1])
		min := 0
		if matches[2] != "" {
			min, _ = strconv.Atoi(matches[2])
		}

		switch matches[3] {
		case "pm", "p":
			if hour < 1 || hour > 12 {
				return 0, input, false, fmt.Errorf("invalid time %q", matches[0])
			}
			if hour < 12 {
				hour += 12
			}
		case "am", "a":
			if hour < 1 || hour > 12 {
				return 0, input, false, fmt.Errorf("invalid time %q", matches[0])
			}
			if hour == 12 {
				hour = 0
			}
		}

		if hour > 23 || min > 59 {
			return 0, input, false, fmt.Errorf("invalid time %q", matches[0])
		}
		return hour*60 + min, strings.TrimSpace(input[len(matches[0]):]), true, nil
	}

	for _, named := range namedTimes {
		if rest, ok := cutWord(input, named.name); ok {
			minute := named.minute
			if minute < 0 {
				minute = p.now.Hour()*60 + p.now.Minute()
			}
			return minute, rest, true, nil
		}
	}

	return 0, input, false, nil
}

// cutWord strips word from the front of input when it is followed by a space
// or the end of input.
func cutWord(input, word string) (string, bool) {
	rest, ok := strings.CutPrefix(input, word)
	if !ok {
		return input, false
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return input, false
	}
	return strings.TrimSpace(rest), true
}

// date rejects values time.Date would silently normalise, like 02/30.
func (p *TimeParser) date(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month %d", month)
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, p.location)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}
	return d, nil
}

func (p *TimeParser) shift(n int, unit string) time.Time {
	date := p.today()
	switch {
	case strings.HasPrefix(unit, "day"):
		return date.AddDate(0, 0, n)
	case strings.HasPrefix(unit, "week"):
		return date.AddDate(0, 0, n*7)
	default:
		return date.AddDate(0, n, 0)
	}
}

func parseWeekday(s string) time.Weekday {
	switch s[:3] {
	case "mon":
		return time.Monday
	case "tue":
		return time.Tuesday
	case "wed":
		return time.Wednesday
	case "thu":
		return time.Thursday
	case "fri":
		return time.Friday
	case "sat":
		return time.Saturday
	default:
		return time.Sunday
	}
}

func parseMonth(s string) time.Month {
	switch s[:3] {
	case "jan":
		return time.January
	case "feb":
		return time.February
	case "mar":
		return time.March
	case "apr":
		return time.April
	case "may":
		return time.May
	case "jun":
		return time.June
	case "jul":
		return time.July
	case "aug":
		return time.August
	case "sep":
		return time.September
	case "oct":
		return time.October
	case "nov":
		return time.November
	default:
		return time.December
	}
}

// findWeekday resolves a weekday name. A bare name or "this" is the next
// occurrence including today. "next" adds a week to that, so it is never
// today. "last" is the most recent one before today.
func (p *TimeParser) findWeekday(target time.Weekday, qualifier string) time.Time {
	date := p.today()
	diff := int(target - date.Weekday())

	switch qualifier {
	case "next":
		diff += 7
	case "last":
		if diff >= 0 {
			diff -= 7
		}
	default:
		if diff < 0 {
			diff += 7
		}
	}

	return date.AddDate(0, 0, diff)
}

func (p *TimeParser) today() time.Time {
	y, m, d := p.now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.location)
}
