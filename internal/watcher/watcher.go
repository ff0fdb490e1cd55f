package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/stockrank/internal/logging"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// ErrInMemoryDatabase is returned by New for databases that have no file.
var ErrInMemoryDatabase = errors.New("cannot watch an in-memory database")

// Options tunes a Watcher.
type Options struct {
	// Debounce is how long the database must stay quiet before the callback
	// runs. Zero means DefaultDebounce.
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher calls a function after the database file has been written.
type Watcher struct {
	dbPath   string
	debounce time.Duration
	onChange func()
	logger   *slog.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	stopCh  chan struct{}
	stopped bool
	wg      sync.WaitGroup

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a Watcher for the database at dbPath. onChange runs on the
// watcher goroutine, one call at a time.
func New(dbPath string, onChange func(), opts Options) (*Watcher, error) {
	if dbPath == "" || dbPath == ":memory:" {
		return nil, ErrInMemoryDatabase
	}
	if onChange == nil {
		return nil, fmt.Errorf("change callback cannot be nil")
	}
	if opts.Debounce < 0 {
		return nil, fmt.Errorf("invalid debounce %s: must not be negative", opts.Debounce)
	}

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	debounce := opts.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		dbPath:   abs,
		debounce: debounce,
		onChange: onChange,
		logger:   logging.WithComponent(opts.Logger, logging.ComponentWatcher),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}, nil
}

// Start subscribes to the database directory and begins dispatching changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if w.fsw != nil {
		return fmt.Errorf("watcher already started")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(w.dbPath)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.run(fsw)

	w.logger.Debug("watching database", "path", w.dbPath, "debounce", w.debounce)
	return nil
}

// run collapses bursts of database writes into single callbacks. Writes seen
// within one debounce window after a callback returns are treated as the
// callback's own writes and ignored.
func (w *Watcher) run(fsw *fsnotify.Watcher) {
	defer w.wg.Done()

	var (
		fire       <-chan time.Time
		quietUntil time.Time
	)

	for {
		select {
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if w.now().Before(quietUntil) {
				continue
			}
			w.logger.Debug("database changed", "file", filepath.Base(ev.Name), "op", ev.Op.String())
			fire = time.After(w.debounce)

		case <-fire:
			fire = nil
			w.onChange()
			quietUntil = w.now().Add(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", logging.FieldError, err)

		case <-w.stopCh:
			return
		}
	}
}

// relevant reports whether ev modifies the watched database.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return matchesDatabase(ev.Name, w.dbPath)
}

// Stop halts the watcher. Pending changes that have not reached the end of
// their debounce window are dropped. Stop is safe to call more than once and
// before Start.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	fsw := w.fsw
	w.mu.Unlock()

	w.wg.Wait()

	if fsw != nil {
		if err := fsw.Close(); err != nil {
			return fmt.Errorf("failed to close file watcher: %w", err)
		}
	}
	return nil
}
