package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/boxbuild/boxbuild/internal/logger"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher re-runs a callback whenever a pipeline file changes on disk.
// Events are debounced because editors emit bursts of writes and renames.
type Watcher struct {
	fw       *fsnotify.Watcher
	log      *logger.Logger
	debounce time.Duration
}

// New creates a filesystem watcher.
func New(log *logger.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{fw: fw, log: log, debounce: defaultDebounce}, nil
}

// Watch blocks, invoking fn each time the file at path changes, until ctx is
// cancelled. The parent directory is watched because editors commonly
// replace the file rather than write it in place.
func (w *Watcher) Watch(ctx context.Context, path string, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve watch path: %w", err)
	}

	if err := w.fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.log.WithFields(map[string]any{"file": abs, "op": event.Op.String()}).Debug("pipeline file changed")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error(err, "watch error")
		case <-fire:
			fn()
		}
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	if w == nil || w.fw == nil {
		return nil
	}
	return w.fw.Close()
}
