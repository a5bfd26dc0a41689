package config

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/logger"
)

// DefaultDebounce coalesces the burst of events editors produce on save
const DefaultDebounce = 500 * time.Millisecond

// ChangeCallback receives the sorted set of paths changed during one
// debounce window
type ChangeCallback func(changed []string) error

// Watcher watches service files (and optionally the config file) for
// changes and triggers callbacks after a quiet period.
type Watcher struct {
	watcher   *fsnotify.Watcher
	extension string
	debounce  time.Duration

	fireMu sync.Mutex // held while callbacks run

	mu            sync.Mutex
	callbacks     []ChangeCallback
	pending       map[string]struct{}
	debounceTimer *time.Timer
	ignored       map[string]struct{}
	extra         map[string]struct{}
}

// NewWatcher creates a watcher for files ending in extension. Each path may
// be a directory (its direct entries are watched) or a single file.
func NewWatcher(extension string, paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		watcher:   fw,
		extension: extension,
		debounce:  DefaultDebounce,
		pending:   make(map[string]struct{}),
		ignored:   make(map[string]struct{}),
		extra:     make(map[string]struct{}),
	}

	for _, p := range paths {
		if err := w.add(p); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.WrapIO(err, "stat %s", path)
	}
	// single files are watched via their directory so that editors which
	// replace the file (rename over) keep being observed
	target := path
	if !info.IsDir() {
		target = filepath.Dir(path)
		w.extensionFor(path)
	}
	if err := w.watcher.Add(target); err != nil {
		return errors.WrapIO(err, "watch %s", target)
	}
	return nil
}

// extensionFor lets an explicitly watched file through even when its
// extension differs from the service file extension (krpcgen.toml)
func (w *Watcher) extensionFor(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.extra[filepath.Clean(path)] = struct{}{}
}

// SetDebounce overrides the quiet period (tests use a short one)
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Ignore excludes a path from triggering callbacks, used for the output
// directory when it lives inside the watched input directory
func (w *Watcher) Ignore(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ignored[filepath.Clean(path)] = struct{}{}
}

// OnChange registers a callback to be called after changes settle
func (w *Watcher) OnChange(callback ChangeCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Run processes file system events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.debounceTimer != nil {
				w.debounceTimer.Stop()
			}
			w.mu.Unlock()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			logger.Debugw("Watcher detected change",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			w.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) relevant(path string) bool {
	clean := filepath.Clean(path)
	if isBackupFile(clean) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for ignored := range w.ignored {
		if clean == ignored || strings.HasPrefix(clean, ignored+string(filepath.Separator)) {
			return false
		}
	}
	if _, ok := w.extra[clean]; ok {
		return true
	}
	return strings.HasSuffix(clean, w.extension)
}

// schedule debounces rapid file changes and triggers callbacks
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[filepath.Clean(path)] = struct{}{}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.fire)
}

// fire runs the callbacks for everything pending. Timers that expire while
// an earlier fire is still running wait for it.
func (w *Watcher) fire() {
	w.fireMu.Lock()
	defer w.fireMu.Unlock()

	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]struct{})
	callbacks := make([]ChangeCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)
	for _, callback := range callbacks {
		if err := callback(changed); err != nil {
			// keep calling the other callbacks even if one fails
			logger.Warnw("Watcher callback error", logger.FieldError, err)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// isBackupFile checks if the file is a rotated config backup (.back1..3)
func isBackupFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".back1" || ext == ".back2" || ext == ".back3"
}
