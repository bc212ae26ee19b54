package appointment

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "github.com/adam-palmer1/calview/internal/log"
)

const debounceDelay = 100 * time.Millisecond

// FileWatcher reports changes to a set of files. It watches the parent
// directories so editors that save by rename are still noticed.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]time.Time
	dirs     map[string]int
	onChange func(string)
	mu       sync.Mutex
	pending  map[string]*time.Timer
	done     chan struct{}
	closed   bool
}

func NewFileWatcher(onChange func(string)) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher:  watcher,
		files:    make(map[string]time.Time),
		dirs:     make(map[string]int),
		onChange: onChange,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}

	go fw.watch()
	return fw, nil
}

func (fw *FileWatcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, exists := fw.files[absPath]; exists {
		return nil
	}

	dir := filepath.Dir(absPath)
	if fw.dirs[dir] == 0 {
		if err := fw.watcher.Add(dir); err != nil {
			return err
		}
	}
	fw.dirs[dir]++
	fw.files[absPath] = time.Now()
	return nil
}

func (fw *FileWatcher) RemoveFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, exists := fw.files[absPath]; !exists {
		return nil
	}
	delete(fw.files, absPath)

	dir := filepath.Dir(absPath)
	fw.dirs[dir]--
	if fw.dirs[dir] <= 0 {
		delete(fw.dirs, dir)
		return fw.watcher.Remove(dir)
	}
	return nil
}

func (fw *FileWatcher) watch() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fw.schedule(filepath.Clean(event.Name))
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			appLog.Error("file watcher error", err)

		case <-fw.done:
			return
		}
	}
}

// schedule debounces bursts of events for one file into a single callback.
func (fw *FileWatcher) schedule(name string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.closed {
		return
	}
	if _, watching := fw.files[name]; !watching {
		return
	}
	if timer, exists := fw.pending[name]; exists {
		timer.Stop()
	}
	// onChange runs under the lock so no callback is in flight once Close
	// returns. Callbacks must not block.
	fw.pending[name] = time.AfterFunc(debounceDelay, func() {
		fw.mu.Lock()
		defer fw.mu.Unlock()

		delete(fw.pending, name)
		if _, watching := fw.files[name]; !watching || fw.closed {
			return
		}
		fw.files[name] = time.Now()
		if fw.onChange != nil {
			fw.onChange(name)
		}
	})
}

func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return nil
	}
	fw.closed = true
	for name, timer := range fw.pending {
		timer.Stop()
		delete(fw.pending, name)
	}
	fw.mu.Unlock()

	close(fw.done)
	return fw.watcher.Close()
}
