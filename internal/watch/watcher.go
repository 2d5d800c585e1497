// Package watch rebuilds the site when revision files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lagstiftning/go-lagstiftning/internal/logging"
	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

// DefaultDebounce is the quiet period used when Config.Debounce is not set.
const DefaultDebounce = 250 * time.Millisecond

// RebuildFunc is invoked with the identifiers whose files changed. A nil
// slice asks for a full rebuild, which happens when a revision file is
// removed or renamed.
type RebuildFunc func(ctx context.Context, identifiers []string) error

// Config configures a Watcher.
type Config struct {
	Directory string
	Debounce  time.Duration
}

// Watcher observes a source directory and batches changes to revision files.
type Watcher struct {
	dir      string
	debounce time.Duration
	rebuild  RebuildFunc
	logger   interfaces.Logger

	ready     chan struct{}
	readyOnce sync.Once

	pending map[string]struct{}
	full    bool
}

// New returns a watcher over cfg.Directory.
func New(cfg Config, rebuild RebuildFunc, logger interfaces.Logger) (*Watcher, error) {
	if rebuild == nil {
		return nil, errors.New("watch: rebuild function is required")
	}
	dir := cfg.Directory
	if dir == "" {
		dir = "."
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Watcher{
		dir:      filepath.Clean(dir),
		debounce: debounce,
		rebuild:  rebuild,
		logger:   logger,
		ready:    make(chan struct{}),
		pending:  map[string]struct{}{},
	}, nil
}

// Ready is closed once the directory is being observed.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is done. Rebuild failures are logged and watching
// continues.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch: observe %s: %w", w.dir, err)
	}
	w.readyOnce.Do(func() { close(w.ready) })
	w.logger.Info("watch.started", "directory", w.dir, "debounce_ms", w.debounce.Milliseconds())

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch.stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.record(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch.error", "error", err)

		case <-fire:
			fire = nil
			w.flush(ctx)
		}
	}
}

// record adds a relevant event to the pending batch.
func (w *Watcher) record(event fsnotify.Event) bool {
	identifier, ok := revisions.IdentifierFromFilename(filepath.Base(event.Name))
	if !ok {
		return false
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.full = true
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.pending[identifier] = struct{}{}
	default:
		return false
	}
	w.logger.Debug("watch.event", "identifier", identifier, "op", event.Op.String())
	return true
}

func (w *Watcher) flush(ctx context.Context) {
	var identifiers []string
	if !w.full {
		identifiers = make([]string, 0, len(w.pending))
		for identifier := range w.pending {
			identifiers = append(identifiers, identifier)
		}
		sort.Strings(identifiers)
	}
	w.pending = map[string]struct{}{}
	w.full = false

	w.logger.Info("watch.rebuild", "identifiers", identifiers, "full", identifiers == nil)
	if err := w.rebuild(ctx, identifiers); err != nil {
		w.logger.Error("watch.rebuild.failed", "error", err)
	}
}
