package appointment

import (
	"errors"
	"fmt"
	"sync"
	"time"

	appLog "github.com/adam-palmer1/calview/internal/log"
)

// fileSource holds the file list and watch plumbing shared by the JSON and
// ICS sources. load parses one file.
type fileSource struct {
	mu        sync.Mutex
	files     []string
	load      func(path string) ([]Appointment, error)
	watcher   *FileWatcher
	eventChan chan FileChangeEvent
}

func (s *fileSource) SetFiles(files []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append([]string(nil), files...)
}

// Files returns a copy of the configured file list.
func (s *fileSource) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.files...)
}

func (s *fileSource) Appointments(start, end time.Time) ([]Appointment, error) {
	files := s.Files()
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	var out []Appointment
	var errs []error
	for _, path := range files {
		appts, err := s.load(path)
		if err != nil {
			appLog.Error("failed to read appointment file", err, "path", path)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		for _, a := range appts {
			if a.Intersects(start, end) {
				out = append(out, a)
			}
		}
	}

	// A partial read still renders; only fail when nothing could be read.
	if len(errs) == len(files) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (s *fileSource) WatchFiles() (<-chan FileChangeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.eventChan != nil {
		return s.eventChan, nil
	}

	events := make(chan FileChangeEvent, 10)
	watcher, err := NewFileWatcher(func(path string) {
		select {
		case events <- FileChangeEvent{Path: path, Timestamp: time.Now()}:
		default:
			// Channel full; a reload is already queued.
		}
	})
	if err != nil {
		return nil, err
	}

	for _, path := range s.files {
		if err := watcher.AddFile(path); err != nil {
			appLog.Error("cannot watch appointment file", err, "path", path)
		}
	}

	s.watcher = watcher
	s.eventChan = events
	return events, nil
}

func (s *fileSource) StopWatching() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	close(s.eventChan)
	s.eventChan = nil
	return err
}
