package appointment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	appLog "github.com/adam-palmer1/calview/internal/log"
)

// JSONRecord is one appointment as exported by the booking API. Times are
// RFC3339, or a bare date for all-day records.
type JSONRecord struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Color       string   `json:"color,omitempty"`
	Start       string   `json:"start"`
	End         string   `json:"end,omitempty"`
	Duration    *int     `json:"duration,omitempty"` // minutes, used when end is missing
	AllDay      bool     `json:"all_day,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// jsonEnvelope is the paginated API shape: {"appointments": [...]}.
type jsonEnvelope struct {
	Appointments []JSONRecord `json:"appointments"`
}

// JSONSource reads appointments from JSON files.
type JSONSource struct {
	*fileSource
	Location *time.Location
}

func NewJSONSource(files ...string) *JSONSource {
	s := &JSONSource{Location: time.Local}
	s.fileSource = &fileSource{files: files, load: s.loadFile}
	return s
}

func (s *JSONSource) loadFile(path string) ([]Appointment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	return ConvertRecords(records, path, s.Location), nil
}

// ParseJSON accepts either a bare array of records or an envelope object.
func ParseJSON(data []byte) ([]JSONRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var records []JSONRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to parse appointment JSON: %w", err)
		}
		return records, nil
	}

	var env jsonEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to parse appointment JSON: %w", err)
	}
	return env.Appointments, nil
}

// ConvertRecords turns records into appointments. Records with an unreadable
// start are skipped. Records without an ID get one derived from the file and
// position, so reloading the same file yields the same IDs.
func ConvertRecords(records []JSONRecord, path string, loc *time.Location) []Appointment {
	if loc == nil {
		loc = time.Local
	}

	var appts []Appointment
	for i, rec := range records {
		start, dateOnly, err := parseTimestamp(rec.Start, loc)
		if err != nil {
			appLog.Warn("skipping appointment with bad start", "path", path, "index", i, "start", rec.Start)
			continue
		}

		allDay := rec.AllDay || dateOnly
		if allDay {
			start = dateOf(start)
		}

		var end time.Time
		switch {
		case rec.End != "":
			end, _, err = parseTimestamp(rec.End, loc)
			if err != nil {
				appLog.Warn("appointment has bad end, treating as instant", "path", path, "index", i, "end", rec.End)
				end = start
			}
		case rec.Duration != nil:
			end = start.Add(time.Duration(*rec.Duration) * time.Minute)
		case allDay:
			end = start.AddDate(0, 0, 1)
		default:
			end = start
		}

		id := rec.ID
		if id == "" {
			id = uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+path+"#"+strconv.Itoa(i))).String()
		}

		appts = append(appts, Appointment{
			ID:          id,
			Title:       strings.TrimSpace(rec.Title),
			Description: rec.Description,
			Location:    rec.Location,
			Color:       rec.Color,
			Start:       start,
			End:         end,
			AllDay:      allDay,
			Tags:        rec.Tags,
			Source:      path,
		})
	}

	return appts
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseTimestamp reports dateOnly when value carried no time of day.
func parseTimestamp(value string, loc *time.Location) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc), false, nil
		}
	}

	t, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("unrecognised timestamp %q", value)
	}
	return t, true, nil
}
