// Package watch triggers a callback when named files change. Callbacks run
// on the watching goroutine, one at a time, so a rebuild never overlaps
// another.
package watch

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
	"git.home.luguber.info/inful/buildproj/internal/logfields"
	"git.home.luguber.info/inful/buildproj/internal/observability"
)

// DefaultDebounce coalesces editor save bursts into one trigger.
const DefaultDebounce = 500 * time.Millisecond

// settleWindow is how long Drain waits for late events before returning.
const settleWindow = 50 * time.Millisecond

// Watcher watches a fixed set of files. Their parent directories are watched
// rather than the files, which survives editors that replace files on save.
type Watcher struct {
	targets  map[string]struct{}
	debounce time.Duration
	settle   time.Duration
	watcher  *fsnotify.Watcher
}

// New starts watching paths. Relative paths are resolved against dir.
func New(dir string, paths []string, debounce time.Duration) (*Watcher, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, dberrors.WrapError(err, dberrors.CategoryFileSystem, "resolve watch directory").Build()
	}

	targets := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		p = filepath.Clean(p)
		targets[p] = struct{}{}
		dirs[filepath.Dir(p)] = struct{}{}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, dberrors.WrapError(err, dberrors.CategoryRuntime, "failed to create file watcher").Build()
	}
	for _, d := range slices.Sorted(maps.Keys(dirs)) {
		if err := fw.Add(d); err != nil {
			_ = fw.Close()
			return nil, dberrors.WrapError(err, dberrors.CategoryFileSystem, "failed to watch directory").
				WithContext("path", d).
				Build()
		}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{targets: targets, debounce: debounce, settle: settleWindow, watcher: fw}, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run calls onChange after every debounced burst of relevant events until
// ctx is done. Events raised while onChange runs are discarded. An error
// returned by onChange is left to the callback to report and does not stop
// the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context) error) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			observability.DebugContext(ctx, "Change detected", logfields.Path(event.Name), logfields.Phase(event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			observability.WarnContext(ctx, "File watcher error", logfields.Error(err))

		case <-timer.C:
			if err := onChange(ctx); err != nil {
				observability.DebugContext(ctx, "Rebuild failed", logfields.Error(err))
			}
			w.Drain()
		}
	}
}

// Drain discards queued events and any arriving within the settle window,
// so files written by the callback itself do not trigger another run.
func (w *Watcher) Drain() {
	quiet := time.NewTimer(w.settle)
	defer quiet.Stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				quiet.Reset(w.settle)
			}
		case <-quiet.C:
			return
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	_, ok := w.targets[filepath.Clean(event.Name)]
	return ok
}
