package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	m "buildscout.dev/pkg/buildscout/internal/model"
)

// DefaultDebounce is how long the watcher waits for further events before
// reporting a change.
const DefaultDebounce = 300 * time.Millisecond

// BuildFileWatcher reports changes to build and workspace files.
type BuildFileWatcher interface {
	// Watch replaces the watched directory set.
	Watch(dirs []m.Path) error
	// Changes emits one value per debounced burst of relevant events and is
	// closed when ctx ends or the watcher is closed.
	Changes(ctx context.Context) <-chan struct{}
	Close() error
}

type fsnotifyWatcher struct {
	watcher  *fsnotify.Watcher
	names    map[string]struct{}
	watched  map[string]struct{}
	debounce time.Duration
}

// NewBuildFileWatcher creates a watcher reacting to files whose base name is
// in names. Directory creation is reported too, since a new directory may
// hold a new package.
func NewBuildFileWatcher(names []string, debounce time.Duration) (BuildFileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &fsnotifyWatcher{
		watcher:  w,
		names:    set,
		watched:  map[string]struct{}{},
		debounce: debounce,
	}, nil
}

// Watch adds the new directories and drops the ones no longer listed.
func (w *fsnotifyWatcher) Watch(dirs []m.Path) error {
	next := make(map[string]struct{}, len(dirs))
	for _, dir := range dirs {
		next[string(dir)] = struct{}{}
	}

	for dir := range w.watched {
		if _, ok := next[dir]; ok {
			continue
		}

		if err := w.watcher.Remove(dir); err != nil {
			slog.Debug("Failed to remove watch", "path", dir, "error", err)
		}

		delete(w.watched, dir)
	}

	for dir := range next {
		if _, ok := w.watched[dir]; ok {
			continue
		}

		if err := w.watcher.Add(dir); err != nil {
			slog.Warn("Failed to watch directory", "path", dir, "error", err)
			continue
		}

		w.watched[dir] = struct{}{}
	}

	slog.Debug("Watching directories", "count", len(w.watched))

	return nil
}

func (w *fsnotifyWatcher) relevant(event fsnotify.Event) bool {
	if _, ok := w.names[filepath.Base(event.Name)]; ok {
		return true
	}

	if !event.Has(fsnotify.Create) {
		return false
	}

	info, err := os.Stat(event.Name)

	return err == nil && info.IsDir()
}

// Changes implements BuildFileWatcher.
func (w *fsnotifyWatcher) Changes(ctx context.Context) <-chan struct{} {
	changes := make(chan struct{})

	go func() {
		defer close(changes)

		var timer <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}

				if w.relevant(event) {
					slog.Debug("Build file event", "path", event.Name, "op", event.Op.String())
					timer = time.After(w.debounce)
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}

				slog.Warn("Watcher error", "error", err)
			case <-timer:
				timer = nil

				select {
				case changes <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return changes
}

// Close stops the underlying watcher.
func (w *fsnotifyWatcher) Close() error {
	return w.watcher.Close()
}
