// Package watcher reports file changes under a set of directories.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"gogofolio/modules/logger"
)

const DefaultDebounce = 100 * time.Millisecond

// Watcher calls its handler once per burst of changes to a path.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	handle   func(path string)
	log      logger.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New watches every directory under dirs, recursively.
func New(dirs []string, debounce time.Duration, handle func(path string), log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Nop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return fw.Add(path)
			}
			return nil
		})
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to add watch paths: %w", err)
		}
	}

	return &Watcher{
		watcher:  fw,
		debounce: debounce,
		handle:   handle,
		log:      log.Named("watcher"),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Run delivers changes until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.log.Debug("change", logger.String("path", event.Name), logger.String("op", event.Op.String()))
				w.debounceEvent(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", logger.Err(err))
		}
	}
}

func (w *Watcher) debounceEvent(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, pending := w.timers[path]; pending {
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.handle(path)
	})
}

func (w *Watcher) close() {
	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.watcher.Close()
}
