// Package watch provides file watching over the kernel and GUI source
// trees for rebuild-on-change.
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event.
type EventType int

const (
	EventCreated EventType = iota + 1
	EventModified
	EventDeleted
	EventRenamed
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	case EventRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Event represents a debounced file system event.
type Event struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}

// Config contains configuration for the source watcher.
type Config struct {
	// Dirs are the root directories to watch recursively.
	Dirs []string

	// Patterns are glob patterns a file must match to be reported.
	Patterns []string

	// IgnorePatterns are directory or file patterns to skip.
	IgnorePatterns []string

	// Debounce collapses rapid successive events on the same path.
	Debounce time.Duration
}

// DefaultConfig returns a configuration covering Rust sources and the
// bundle resources the exporters consume, skipping cargo's build cache
// and our own output.
func DefaultConfig(dirs ...string) *Config {
	return &Config{
		Dirs:     dirs,
		Patterns: []string{"*.rs", "Cargo.toml", "*.plist", "*.icns"},
		IgnorePatterns: []string{
			".git",
			"target",
			"dist",
			".idea",
			".vscode",
		},
		Debounce: 300 * time.Millisecond,
	}
}

// Watcher watches source directories and emits debounced change events.
type Watcher struct {
	config  *Config
	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error
	done    chan struct{}
	mu      sync.Mutex
	running bool

	pending   map[string]*time.Timer
	pendingMu sync.Mutex
}

// New creates a watcher for the given configuration.
func New(config *Config) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:  config,
		watcher: fsWatcher,
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}, nil
}

// Start begins watching. It returns once all directories are registered;
// events flow on Events until Stop.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, dir := range w.config.Dirs {
		if err := w.addRecursive(dir); err != nil {
			return err
		}
	}

	go w.processEvents()
	return nil
}

// Stop stops the watcher and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.done)

	return w.watcher.Close()
}

// Events returns the channel of debounced file events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// addRecursive adds a directory and all non-ignored subdirectories.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		for _, pattern := range w.config.IgnorePatterns {
			if matched, _ := filepath.Match(pattern, info.Name()); matched {
				return filepath.SkipDir
			}
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.matchesPattern(event.Name) || w.shouldIgnore(event.Name) {
		return
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventCreated
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventModified
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventDeleted
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventRenamed
	default:
		return
	}

	w.debounce(Event{
		Path:      event.Name,
		Type:      eventType,
		Timestamp: time.Now(),
	})
}

// debounce delays delivery until the path has been quiet for the
// configured duration; rapid saves collapse into one event.
func (w *Watcher) debounce(event Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if timer, ok := w.pending[event.Path]; ok {
		timer.Stop()
	}

	w.pending[event.Path] = time.AfterFunc(w.config.Debounce, func() {
		w.pendingMu.Lock()
		delete(w.pending, event.Path)
		w.pendingMu.Unlock()

		select {
		case w.events <- event:
		default:
			// Channel full, drop event.
		}
	})
}

func (w *Watcher) matchesPattern(path string) bool {
	if len(w.config.Patterns) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, pattern := range w.config.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldIgnore(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		for _, pattern := range w.config.IgnorePatterns {
			if matched, _ := filepath.Match(pattern, part); matched {
				return true
			}
		}
	}
	return false
}
