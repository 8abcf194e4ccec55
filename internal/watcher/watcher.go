package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Event represents a change to one of the watched files
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher watches a fixed set of files through their parent directories,
// so files that are created, replaced by rename or deleted are still seen.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	files     map[string]bool
	events    chan Event
	errors    chan error
	done      chan struct{}
	mu        sync.Mutex
	watching  map[string]bool
	stopOnce  sync.Once
}

// ErrNothingToWatch is returned by Start when no parent directory exists
var ErrNothingToWatch = errors.New("none of the watched directories exist")

// New creates a new Watcher for the given file paths
func New(files []string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		files:     make(map[string]bool),
		events:    make(chan Event, 100),
		errors:    make(chan error, 10),
		done:      make(chan struct{}),
		watching:  make(map[string]bool),
	}
	for _, f := range files {
		w.files[filepath.Clean(f)] = true
	}

	return w, nil
}

// Start begins watching every existing parent directory
func (w *Watcher) Start() error {
	for f := range w.files {
		dir := filepath.Dir(f)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := w.watchDirectory(dir); err != nil {
			return err
		}
	}

	if len(w.Watching()) == 0 {
		return ErrNothingToWatch
	}

	go w.watchLoop()
	return nil
}

// Watching returns the directories currently being watched
func (w *Watcher) Watching() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	dirs := make([]string, 0, len(w.watching))
	for dir := range w.watching {
		dirs = append(dirs, dir)
	}
	return dirs
}

// Events returns the channel of file events
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

func (w *Watcher) watchDirectory(dirPath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watching[dirPath] {
		return nil
	}

	if err := w.fsWatcher.Add(dirPath); err != nil {
		return err
	}
	w.watching[dirPath] = true
	return nil
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.files[filepath.Clean(event.Name)] {
		return
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	select {
	case w.events <- Event{Path: event.Name, Op: event.Op}:
	case <-w.done:
	}
}
