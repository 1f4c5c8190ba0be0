package store

/*
Watcher re-enables a registry whenever its spec file changes, so an operator
can switch debug namespaces of a running process by editing one file.

The directory holding the file is watched rather than the file itself: editors
and atomic writers replace the file (rename over it), which would silently
detach a watch placed on the old inode. Events settle for a short delay before
the file is read, the same way a config reload waits for the writer to finish.
A file that disappears without replacement leaves the current spec untouched.
*/

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/abyssdigger/dbg"
	"github.com/fsnotify/fsnotify"
)

const DEFAULT_SETTLE = 100 * time.Millisecond

// Watcher follows one spec File on behalf of one Registry.
type Watcher struct {
	file    *File
	target  *dbg.Registry
	log     *slog.Logger
	watcher *fsnotify.Watcher
	settle  time.Duration
}

// NewWatcher starts watching the directory of file. Warnings (unreadable file,
// watcher errors) go to log, slog.Default() when nil. Run must be called to
// process events; Close releases the watcher if Run never is.
func NewWatcher(file *File, target *dbg.Registry, log *slog.Logger) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating debug spec watcher: %w", err)
	}
	dir := filepath.Dir(file.Path())
	if err := os.MkdirAll(dir, 0755); err != nil {
		w.Close()
		return nil, fmt.Errorf("creating debug spec directory: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching debug spec directory: %w", err)
	}
	return &Watcher{file: file, target: target, log: log, watcher: w, settle: DEFAULT_SETTLE}, nil
}

// Sets the delay between a file event and reading the file.
func (w *Watcher) SetSettle(d time.Duration) *Watcher {
	w.settle = d
	return w
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.file.Path() {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if !w.wait(ctx) {
				return nil
			}
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				// replaced or gone: only a replacement counts
				if _, err := os.Stat(w.file.Path()); os.IsNotExist(err) {
					continue
				}
			}
			w.Reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("debug spec watcher error", "path", w.file.Path(), "error", err)
		}
	}
}

// Close stops watching without Run.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Reload reads the file and enables its spec when it differs from the active
// one. It reports whether the registry was changed.
func (w *Watcher) Reload() bool {
	spec, err := w.file.Load()
	if err != nil {
		w.log.Warn("debug spec reload failed", "path", w.file.Path(), "error", err)
		return false
	}
	if spec == w.target.Namespaces() {
		return false
	}
	w.target.Enable(spec)
	w.log.Debug("debug spec reloaded", "path", w.file.Path(), "spec", spec)
	return true
}

func (w *Watcher) wait(ctx context.Context) bool {
	if w.settle <= 0 {
		return true
	}
	t := time.NewTimer(w.settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Watch follows file for target until ctx is done.
func Watch(ctx context.Context, file *File, target *dbg.Registry, log *slog.Logger) error {
	w, err := NewWatcher(file, target, log)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
