// Package watch reloads a marker file whenever it changes on disk and pushes
// the new marker set to a layout board, so dynamic insertions and removals
// trigger a full recompute.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"markerstack/internal/layout"
	"markerstack/internal/source"
)

// DefaultDebounce is how long a file must stay quiet before it is reloaded.
const DefaultDebounce = 200 * time.Millisecond

// ErrClosed is returned by Start after Stop.
var ErrClosed = errors.New("watcher closed")

// Target receives reloaded marker sets. *layout.Board satisfies it.
type Target interface {
	Replace(markers []layout.Marker) error
}

// LoadFunc reads markers from a file.
type LoadFunc func(path string) ([]layout.Marker, error)

// LoadMarkers is the default LoadFunc: the markers of a source document.
func LoadMarkers(path string) ([]layout.Marker, error) {
	doc, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	return doc.Markers, nil
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLoader replaces LoadMarkers.
func WithLoader(fn LoadFunc) Option {
	return func(w *Watcher) { w.load = fn }
}

// WithOnReload registers a callback run after each successful reload.
func WithOnReload(fn func()) Option {
	return func(w *Watcher) { w.onReload = fn }
}

// Watcher follows a single file.
type Watcher struct {
	path     string
	target   Target
	load     LoadFunc
	onReload func()
	debounce time.Duration
	log      zerolog.Logger

	fsw     *fsnotify.Watcher
	mu      sync.Mutex
	running bool
	closed  bool
	pending time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher for path. It does not start watching; call Start.
func New(path string, target Target, log zerolog.Logger, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating file watcher: %w", err)
	}

	w := &Watcher{
		path:     abs,
		target:   target,
		load:     LoadMarkers,
		debounce: DefaultDebounce,
		log:      log.With().Str("component", "watch").Str("file", abs).Logger(),
		fsw:      fsw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Reload reads the file and replaces the target's markers.
func (w *Watcher) Reload() error {
	markers, err := w.load(w.path)
	if err != nil {
		return err
	}
	if err := w.target.Replace(markers); err != nil {
		return err
	}
	w.log.Info().Int("markers", len(markers)).Msg("markers reloaded")
	if w.onReload != nil {
		w.onReload()
	}
	return nil
}

// Start watches the file's directory, since editors often replace files
// rather than write them in place. It returns once the watch is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("error watching %s: %w", filepath.Dir(w.path), err)
	}
	w.log.Debug().Msg("watching for changes")

	go w.run(ctx)
	return nil
}

// Stop ends watching, waits for the event loop to exit and releases the
// underlying file watcher. It is safe to call whether or not Start succeeded.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	running := w.running
	w.running = false
	w.closed = true
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.fsw.Close(); err != nil {
		w.log.Error().Err(err).Msg("error closing file watcher")
	}
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(max(w.debounce/4, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("file watcher error")

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

// flush reloads once the file has been quiet for the debounce period.
func (w *Watcher) flush() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	if err := w.Reload(); err != nil {
		w.log.Warn().Err(err).Msg("reload failed, keeping previous layout")
	}
}
