package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Watcher marks the table stale when the backing file is changed on disk.
// The flag is consumed by Refresh, which the shell calls between commands.
type Watcher struct {
	storage *Storage
	dir     string
	pattern string
	watcher *fsnotify.Watcher
	stale   atomic.Bool
	done    chan struct{}
}

// Watch starts watching the backing file's directory until ctx is cancelled.
func (s *Storage) Watch(ctx context.Context) (*Watcher, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Dir(s.path)
	pattern := s.config.WatchPattern
	if pattern == "" {
		pattern = filepath.Base(s.path)
	}
	if _, err := doublestar.Match(pattern, filepath.Base(s.path)); err != nil {
		return nil, fmt.Errorf("invalid watch pattern %q: %w", pattern, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		storage: s,
		dir:     dir,
		pattern: pattern,
		watcher: fw,
		done:    make(chan struct{}),
	}
	s.watcherActive.Store(true)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("watcher failed", "error", err)
	}))
	return w, nil
}

// Done is closed once the watcher has stopped.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Stale reports whether a change was seen since the last Refresh.
func (w *Watcher) Stale() bool {
	return w.stale.Load()
}

// Refresh reloads the table when the watcher saw a change and the file
// content differs from what the storage last read or wrote. It must run on
// the goroutine that owns the table.
func (w *Watcher) Refresh(ctx context.Context) (bool, error) {
	if !w.stale.Swap(false) {
		return false, nil
	}
	changed, err := w.storage.ReloadIfChanged(ctx)
	if changed {
		w.storage.logger.Info("backing file changed on disk, table reloaded", "path", w.storage.path)
	}
	return changed, err
}

func (w *Watcher) matches(name string) bool {
	rel, err := filepath.Rel(w.dir, name)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(w.pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

func (w *Watcher) run(ctx context.Context) error {
	defer close(w.done)
	defer w.storage.watcherActive.Store(false)
	defer w.watcher.Close()
	defer func() {
		if r := recover(); r != nil {
			if w.storage.logger.Enabled(ctx, slog.LevelDebug) {
				w.storage.logger.Error("watcher panic", "error", r, "stack", string(debug.Stack()))
			} else {
				w.storage.logger.Error("watcher panic", "error", r)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.matches(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				w.storage.logger.Debug("backing file event", "name", event.Name, "op", event.Op.String())
				w.stale.Store(true)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.storage.logger.Error("fsnotify error", "error", err)
		}
	}
}
