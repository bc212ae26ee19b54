package appointment

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	appLog "github.com/adam-palmer1/calview/internal/log"
)

// fileHandler is implemented by sources that only read some file types.
type fileHandler interface {
	Handles(path string) bool
}

func (s *JSONSource) Handles(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func (s *ICSSource) Handles(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".ics" || ext == ".ical"
}

// NewSource builds a composite over every file type present in files.
func NewSource(files []string) (*CompositeSource, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	jsonSrc := NewJSONSource()
	icsSrc := NewICSSource()
	for _, f := range files {
		if !jsonSrc.Handles(f) && !icsSrc.Handles(f) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, f)
		}
	}

	c := NewCompositeSource(jsonSrc, icsSrc)
	c.SetFiles(files)
	return c, nil
}

// CompositeSource combines multiple sources
type CompositeSource struct {
	sources   []Source
	mu        sync.RWMutex
	eventChan chan FileChangeEvent
	stopChans []chan struct{}
	forwards  sync.WaitGroup
}

func NewCompositeSource(sources ...Source) *CompositeSource {
	return &CompositeSource{sources: sources}
}

func (c *CompositeSource) AddSource(source Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, source)
}

// SetFiles hands each source the files it can read.
func (c *CompositeSource) SetFiles(files []string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, source := range c.sources {
		h, ok := source.(fileHandler)
		if !ok {
			source.SetFiles(files)
			continue
		}
		var mine []string
		for _, f := range files {
			if h.Handles(f) {
				mine = append(mine, f)
			}
		}
		source.SetFiles(mine)
	}
}

// Appointments merges every source, keeping the first appointment seen for
// each ID. The result is ordered by start, then ID.
func (c *CompositeSource) Appointments(start, end time.Time) ([]Appointment, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var all []Appointment
	var lastErr error
	read := 0

	for _, source := range c.sources {
		appts, err := source.Appointments(start, end)
		if errors.Is(err, ErrNoFiles) {
			continue
		}
		read++
		if err != nil {
			appLog.Error("appointment source failed", err)
			lastErr = err
			continue
		}

		for _, a := range appts {
			if seen[a.ID] {
				appLog.Debug("duplicate appointment id", "id", a.ID, "source", a.Source)
				continue
			}
			seen[a.ID] = true
			all = append(all, a)
		}
	}

	if read == 0 {
		return nil, ErrNoFiles
	}
	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}

	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].Start.Equal(all[j].Start) {
			return all[i].Start.Before(all[j].Start)
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

// WatchFiles fans in the change events of every source.
func (c *CompositeSource) WatchFiles() (<-chan FileChangeEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.eventChan != nil {
		return c.eventChan, nil
	}
	out := make(chan FileChangeEvent, 10)

	for _, source := range c.sources {
		sourceChan, err := source.WatchFiles()
		if err != nil {
			appLog.Error("cannot watch source", err)
			continue
		}
		if sourceChan == nil {
			continue
		}

		stop := make(chan struct{})
		c.stopChans = append(c.stopChans, stop)
		c.forwards.Add(1)
		go func(src <-chan FileChangeEvent) {
			defer c.forwards.Done()
			for {
				select {
				case event, ok := <-src:
					if !ok {
						return
					}
					select {
					case out <- event:
					default:
					}
				case <-stop:
					return
				}
			}
		}(sourceChan)
	}

	c.eventChan = out
	return out, nil
}

func (c *CompositeSource) StopWatching() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, stop := range c.stopChans {
		close(stop)
	}
	c.stopChans = nil
	c.forwards.Wait()

	var firstErr error
	for _, source := range c.sources {
		if err := source.StopWatching(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if c.eventChan != nil {
		close(c.eventChan)
		c.eventChan = nil
	}
	return firstErr
}
