// Package inbox watches a directory and feeds audio files dropped into it
// to a handler once they stop changing.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must be quiet before it is handled.
const DefaultSettle = 250 * time.Millisecond

// Handler receives the path and contents of a settled audio file.
type Handler func(ctx context.Context, path string, data []byte) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle sets the quiet period. Non-positive values are ignored.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithExisting makes Run handle audio files already in the directory
// before it starts watching.
func WithExisting() Option {
	return func(w *Watcher) { w.existing = true }
}

// Watcher delivers audio files from one directory.
type Watcher struct {
	dir      string
	handle   Handler
	settle   time.Duration
	existing bool
	logger   *log.Logger

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending sync.WaitGroup
}

// New returns a watcher for dir.
func New(dir string, handle Handler, opts ...Option) (*Watcher, error) {
	if handle == nil {
		return nil, errors.New("inbox: nil handler")
	}

	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("inbox: %w", err)
	}

	if !fi.IsDir() {
		return nil, fmt.Errorf("inbox: %s is not a directory", dir)
	}

	w := &Watcher{
		dir:    dir,
		handle: handle,
		settle: DefaultSettle,
		logger: log.Default(),
		timers: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Eligible reports whether path names a visible .wav or .mp3 file.
func Eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}

	switch strings.ToLower(filepath.Ext(base)) {
	case ".wav", ".mp3":
		return true
	default:
		return false
	}
}

// Run watches until ctx is done. Handler errors are logged and do not stop
// the watch.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("inbox: creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("inbox: watching %s: %w", w.dir, err)
	}

	w.logger.Info("watching inbox", "dir", w.dir)

	ready := make(chan string, 16)
	done := make(chan struct{})

	// Timer callbacks never outlive Run.
	defer func() {
		close(done)
		w.stopTimers()
		w.pending.Wait()
	}()

	if w.existing {
		if err := w.handleExisting(ctx); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if Eligible(event.Name) {
				w.schedule(ctx, event.Name, ready, done)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}

			w.logger.Error("inbox watcher", "err", err)
		case path := <-ready:
			w.deliver(ctx, path)
		}
	}
}

func (w *Watcher) handleExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("inbox: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if e.Type().IsRegular() && Eligible(e.Name()) {
			w.deliver(ctx, filepath.Join(w.dir, e.Name()))
		}
	}

	return nil
}

// schedule restarts the settle timer for path. A timer that already fired
// is left to finish and a fresh one takes its place, so a path is sent to
// ready once per quiet period.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string, done <-chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok && t.Stop() {
		t.Reset(w.settle)
		return
	}

	var t *time.Timer

	w.pending.Add(1)
	t = time.AfterFunc(w.settle, func() {
		defer w.pending.Done()

		w.mu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.mu.Unlock()

		select {
		case ready <- path:
		case <-ctx.Done():
		case <-done:
		}
	})
	w.timers[path] = t
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, t := range w.timers {
		if t.Stop() {
			w.pending.Done()
		}

		delete(w.timers, path)
	}
}

func (w *Watcher) deliver(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// removed or renamed before it settled
		w.logger.Debug("inbox skip", "path", path, "err", err)
		return
	}

	if err := w.handle(ctx, path, data); err != nil {
		w.logger.Warn("inbox handler failed", "path", path, "err", err)
		return
	}

	w.logger.Debug("inbox delivered", "path", path, "bytes", len(data))
}
