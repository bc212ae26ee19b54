package appointment

import (
	"errors"
	"time"
)

var (
	// ErrNoFiles is returned by sources that have nothing to read.
	ErrNoFiles = errors.New("no appointment files configured")
	// ErrUnsupportedFile is returned for extensions no source understands.
	ErrUnsupportedFile = errors.New("unsupported appointment file")
)

// Source is anything that can provide appointments for a time range.
type Source interface {
	// Appointments returns appointments intersecting [start, end).
	Appointments(start, end time.Time) ([]Appointment, error)
	// SetFiles replaces the files the source reads from.
	SetFiles(files []string)
	// WatchFiles returns a channel that sends updates when source files change.
	// Returns nil if watching is not supported.
	WatchFiles() (<-chan FileChangeEvent, error)
	// StopWatching stops any file watching.
	StopWatching() error
}

// FileChangeEvent represents a change to a source file
type FileChangeEvent struct {
	Path      string
	Timestamp time.Time
}
