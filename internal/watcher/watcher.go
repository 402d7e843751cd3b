// Package watcher notifies when the registry database file changes, so
// listings such as version:list --watch can re-render.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fkid009/MLflow-study/internal/log"
)

// DefaultDebounce coalesces the burst of writes one SQLite commit produces.
const DefaultDebounce = 250 * time.Millisecond

// DefaultMaxWait bounds how long a steady stream of writes can hold back a
// notification.
const DefaultMaxWait = 2 * time.Second

// Change reports one debounced burst of database writes.
type Change struct {
	// Events is the number of file events in the burst.
	Events int
	// Files holds the base names that changed, sorted.
	Files []string
}

func (c Change) merge(o Change) Change {
	seen := make(map[string]struct{}, len(c.Files)+len(o.Files))
	for _, f := range c.Files {
		seen[f] = struct{}{}
	}
	for _, f := range o.Files {
		seen[f] = struct{}{}
	}
	return Change{Events: c.Events + o.Events, Files: sortedNames(seen)}
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Watcher monitors a SQLite database and its WAL and journal files.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	names     map[string]bool
	dir       string
	debounce  time.Duration
	maxWait   time.Duration
	onChange  chan Change
	done      chan struct{}
	stopOnce  sync.Once
}

// Config holds watcher configuration options.
type Config struct {
	DBPath   string
	Debounce time.Duration
	// MaxWait caps the delay between the first write of a burst and its
	// notification.
	MaxWait time.Duration
}

// DefaultConfig returns the watcher defaults for dbPath.
func DefaultConfig(dbPath string) Config {
	return Config{
		DBPath:   dbPath,
		Debounce: DefaultDebounce,
		MaxWait:  DefaultMaxWait,
	}
}

// New creates a new database watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	base := filepath.Base(cfg.DBPath)
	return &Watcher{
		fsWatcher: fsw,
		names:     map[string]bool{base: true, base + "-wal": true, base + "-journal": true},
		dir:       filepath.Dir(cfg.DBPath),
		debounce:  cfg.Debounce,
		maxWait:   cfg.MaxWait,
		onChange:  make(chan Change, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching the database directory. The returned channel holds
// at most one pending Change; bursts the reader has not consumed yet are
// merged into it.
func (w *Watcher) Start() (<-chan Change, error) {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", w.dir, err)
	}
	log.Debug(log.CatWatcher, "Watching database", "dir", w.dir, "debounce", w.debounce, "max_wait", w.maxWait)

	go w.loop()

	return w.onChange, nil
}

// Watch calls fn after every debounced change until ctx is done, then stops
// the watcher.
func (w *Watcher) Watch(ctx context.Context, fn func(Change)) error {
	changes, err := w.Start()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			fn(c)
		}
	}
}

// Stop terminates the watcher and releases resources. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

func (w *Watcher) loop() {
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	var (
		events     int
		files      = map[string]struct{}{}
		burstStart time.Time
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			if events == 0 {
				burstStart = time.Now()
			}
			events++
			files[filepath.Base(event.Name)] = struct{}{}

			wait := w.debounce
			if left := w.maxWait - time.Since(burstStart); left < wait {
				wait = max(left, 0)
			}
			timer.Reset(wait)

		case <-timer.C:
			if events == 0 {
				continue
			}
			w.emit(Change{Events: events, Files: sortedNames(files)})
			events = 0
			files = map[string]struct{}{}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatcher, "Watcher error", "error", err)

		case <-w.done:
			timer.Stop()
			return
		}
	}
}

// emit hands c to the reader, folding in a change it has not taken yet.
// loop is the only sender, so the final send cannot block.
func (w *Watcher) emit(c Change) {
	select {
	case old := <-w.onChange:
		c = old.merge(c)
	default:
	}
	w.onChange <- c
}

// isRelevantEvent checks if the event should trigger a refresh.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	// WAL and journal files may be created fresh on the first commit.
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	return w.names[filepath.Base(event.Name)]
}
