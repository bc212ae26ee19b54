package appointment

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"bare array", `[{"title":"a","start":"2024-03-15T09:00:00Z"}]`, 1, false},
		{"envelope", `{"appointments":[{"title":"a","start":"2024-03-15"},{"title":"b","start":"2024-03-16"}]}`, 2, false},
		{"empty body", "   ", 0, false},
		{"broken", `[{"title":`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ParseJSON([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(records) != tt.want {
				t.Errorf("got %d records, want %d", len(records), tt.want)
			}
		})
	}
}

func TestConvertRecords(t *testing.T) {
	loc := time.UTC
	thirty := 30

	records := []JSONRecord{
		{ID: "a", Title: " Standup ", Start: "2024-03-15T09:00:00Z", End: "2024-03-15T09:15:00Z"},
		{Title: "Review", Start: "2024-03-15T10:00", Duration: &thirty},
		{Title: "Holiday", Start: "2024-03-15"},
		{Title: "Broken", Start: "yesterday-ish"},
		{Title: "Ping", Start: "2024-03-15 11:00"},
	}

	appts := ConvertRecords(records, "/tmp/cal.json", loc)
	if len(appts) != 4 {
		t.Fatalf("got %d appointments, want 4", len(appts))
	}

	if appts[0].ID != "a" || appts[0].Title != "Standup" {
		t.Errorf("first appointment = %q/%q", appts[0].ID, appts[0].Title)
	}

	if appts[1].ID == "" {
		t.Error("missing ID was not generated")
	}
	if got := appts[1].Duration(); got != 30*time.Minute {
		t.Errorf("duration record lasts %v, want 30m", got)
	}

	if !appts[2].AllDay {
		t.Error("date-only record should be all day")
	}
	if want := time.Date(2024, 3, 16, 0, 0, 0, 0, loc); !appts[2].End.Equal(want) {
		t.Errorf("all-day end = %v, want %v", appts[2].End, want)
	}

	if !appts[3].Start.Equal(appts[3].End) {
		t.Error("record without end or duration should be an instant")
	}

	again := ConvertRecords(records, "/tmp/cal.json", loc)
	if again[1].ID != appts[1].ID {
		t.Errorf("generated IDs differ between loads: %s vs %s", appts[1].ID, again[1].ID)
	}
	other := ConvertRecords(records, "/tmp/other.json", loc)
	if other[1].ID == appts[1].ID {
		t.Error("generated IDs should depend on the file")
	}
}

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//calview//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:timed-1\r\n" +
	"SUMMARY:Planning\r\n" +
	"LOCATION:Room 4\r\n" +
	"CATEGORIES:work,team\r\n" +
	"DTSTART:20240315T090000Z\r\n" +
	"DTEND:20240315T103000Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:allday-1\r\n" +
	"SUMMARY:Offsite\r\n" +
	"DTSTART;VALUE=DATE:20240315\r\n" +
	"DTEND;VALUE=DATE:20240317\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"SUMMARY:No uid\r\n" +
	"DTSTART:20240315T120000Z\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseICS(t *testing.T) {
	appts, err := ParseICS([]byte(sampleICS), "cal.ics", time.UTC)
	if err != nil {
		t.Fatalf("ParseICS() error: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("got %d appointments, want 2", len(appts))
	}

	timed := appts[0]
	if timed.ID != "timed-1" || timed.Title != "Planning" || timed.Location != "Room 4" {
		t.Errorf("timed appointment = %+v", timed)
	}
	if timed.Duration() != 90*time.Minute {
		t.Errorf("timed duration = %v, want 90m", timed.Duration())
	}
	if len(timed.Tags) != 2 || timed.Tags[0] != "work" || timed.Tags[1] != "team" {
		t.Errorf("tags = %v", timed.Tags)
	}
	if timed.Source != "cal.ics" {
		t.Errorf("source = %q", timed.Source)
	}

	allDay := appts[1]
	if !allDay.AllDay {
		t.Fatal("VALUE=DATE event should be all day")
	}
	if want := time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC); !allDay.End.Equal(want) {
		t.Errorf("all-day end = %v, want %v", allDay.End, want)
	}
}

const durationICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//calview//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:review\r\n" +
	"DTSTART:20240315T090000Z\r\n" +
	"DURATION:PT1H30M\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:conference\r\n" +
	"DTSTART;VALUE=DATE:20240318\r\n" +
	"DURATION:P2D\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:overnight\r\n" +
	"DTSTART:20240315T220000Z\r\n" +
	"DURATION:P1DT2H\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:sprint\r\n" +
	"DTSTART;VALUE=DATE:20240311\r\n" +
	"DURATION:P1W\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:garbled\r\n" +
	"DTSTART:20240315T120000Z\r\n" +
	"DURATION:soon\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:backwards\r\n" +
	"DTSTART:20240315T120000Z\r\n" +
	"DURATION:-PT1H\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseICSDuration(t *testing.T) {
	appts, err := ParseICS([]byte(durationICS), "cal.ics", time.UTC)
	if err != nil {
		t.Fatalf("ParseICS() error: %v", err)
	}

	tests := []struct {
		id      string
		allDay  bool
		wantEnd time.Time
	}{
		{"review", false, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"conference", true, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)},
		{"overnight", false, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)},
		{"sprint", true, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)},
		// Unusable durations leave an instant.
		{"garbled", false, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)},
		{"backwards", false, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)},
	}
	if len(appts) != len(tests) {
		t.Fatalf("got %d appointments, want %d", len(appts), len(tests))
	}

	for i, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			a := appts[i]
			if a.ID != tt.id {
				t.Fatalf("appointment %d is %q, want %q", i, a.ID, tt.id)
			}
			if a.AllDay != tt.allDay {
				t.Errorf("AllDay = %v, want %v", a.AllDay, tt.allDay)
			}
			if !a.End.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", a.End, tt.wantEnd)
			}
		})
	}

	if got := appts[0].Duration(); got != 90*time.Minute {
		t.Errorf("DURATION:PT1H30M lasts %v, want 90m", got)
	}
}

func TestParseICSEmpty(t *testing.T) {
	if _, err := ParseICS([]byte("  \n"), "x.ics", nil); err == nil {
		t.Error("expected error for empty body")
	}
}

func TestNewSource(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "a.json", `[
		{"id":"shared","title":"From JSON","start":"2024-03-15T09:00:00Z","end":"2024-03-15T10:00:00Z"},
		{"id":"late","title":"Late","start":"2024-03-15T16:00:00Z","end":"2024-03-15T17:00:00Z"},
		{"id":"other-day","title":"Tomorrow","start":"2024-03-16T09:00:00Z","end":"2024-03-16T10:00:00Z"}
	]`)
	icsPath := writeFile(t, dir, "b.ics", sampleICS)

	src, err := NewSource([]string{jsonPath, icsPath})
	if err != nil {
		t.Fatalf("NewSource() error: %v", err)
	}

	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	appts, err := src.Appointments(day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("Appointments() error: %v", err)
	}

	var ids []string
	for _, a := range appts {
		ids = append(ids, a.ID)
	}
	// ICS times land in time.Local, so only check membership and order by start.
	want := map[string]bool{"shared": true, "late": true, "timed-1": true, "allday-1": true}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %d appointments", ids, len(want))
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected appointment %q", id)
		}
	}
	for i := 1; i < len(appts); i++ {
		if appts[i].Start.Before(appts[i-1].Start) {
			t.Errorf("appointments not ordered by start: %v", ids)
		}
	}
}

func TestNewSourceErrors(t *testing.T) {
	if _, err := NewSource(nil); !errors.Is(err, ErrNoFiles) {
		t.Errorf("NewSource(nil) error = %v, want ErrNoFiles", err)
	}
	if _, err := NewSource([]string{"notes.txt"}); !errors.Is(err, ErrUnsupportedFile) {
		t.Errorf("NewSource(txt) error = %v, want ErrUnsupportedFile", err)
	}
}

func TestJSONSourceMissingFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `[{"id":"x","title":"X","start":"2024-03-15T09:00:00Z","end":"2024-03-15T10:00:00Z"}]`)
	missing := filepath.Join(dir, "missing.json")

	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	src := NewJSONSource(good, missing)
	appts, err := src.Appointments(day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("partial read should succeed, got %v", err)
	}
	if len(appts) != 1 {
		t.Errorf("got %d appointments, want 1", len(appts))
	}

	src.SetFiles([]string{missing})
	if _, err := src.Appointments(day, day.AddDate(0, 0, 1)); err == nil {
		t.Error("expected error when every file fails")
	}

	src.SetFiles(nil)
	if _, err := src.Appointments(day, day.AddDate(0, 0, 1)); !errors.Is(err, ErrNoFiles) {
		t.Errorf("error = %v, want ErrNoFiles", err)
	}
}

type stubSource struct {
	appts []Appointment
	files []string
}

func (s *stubSource) Appointments(start, end time.Time) ([]Appointment, error) {
	return s.appts, nil
}
func (s *stubSource) SetFiles(files []string)                     { s.files = files }
func (s *stubSource) WatchFiles() (<-chan FileChangeEvent, error) { return nil, nil }
func (s *stubSource) StopWatching() error                         { return nil }

func TestCompositeDeduplicates(t *testing.T) {
	base := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	first := &stubSource{appts: []Appointment{
		{ID: "b", Title: "first b", Start: base.Add(time.Hour)},
		{ID: "a", Title: "first a", Start: base},
	}}
	second := &stubSource{appts: []Appointment{
		{ID: "a", Title: "second a", Start: base},
		{ID: "c", Title: "second c", Start: base},
	}}

	c := NewCompositeSource(first, second)
	c.SetFiles([]string{"x.json"})
	if len(first.files) != 1 {
		t.Errorf("sources without a file filter should get every file")
	}

	appts, err := c.Appointments(base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Appointments() error: %v", err)
	}

	want := []string{"first a", "second c", "first b"}
	if len(appts) != len(want) {
		t.Fatalf("got %d appointments, want %d", len(appts), len(want))
	}
	for i, title := range want {
		if appts[i].Title != title {
			t.Errorf("appts[%d] = %q, want %q", i, appts[i].Title, title)
		}
	}
}

func TestFileWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cal.json", "[]")

	changes := make(chan string, 10)
	fw, err := NewFileWatcher(func(name string) {
		select {
		case changes <- name:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewFileWatcher() error: %v", err)
	}
	defer fw.Close()

	if err := fw.AddFile(path); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("[ ]"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case name := <-changes:
		abs, _ := filepath.Abs(path)
		if name != abs {
			t.Errorf("changed file = %q, want %q", name, abs)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case <-changes:
		t.Error("burst of writes reported more than once")
	case <-time.After(300 * time.Millisecond):
	}

	// Unrelated files in the same directory are ignored.
	writeFile(t, dir, "other.json", "[]")
	select {
	case name := <-changes:
		t.Errorf("unexpected change for %q", name)
	case <-time.After(300 * time.Millisecond):
	}
}
