package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"gogofolio/modules/logger"
	"gogofolio/modules/watcher"
)

// watchAndBuild builds once and again after every burst of source changes
// until ctx is done.
func watchAndBuild(ctx context.Context, b *Builder, out io.Writer, log logger.Logger) error {
	if err := os.MkdirAll(b.srcDir, 0o755); err != nil {
		return err
	}
	if err := runOnce(b, out); err != nil {
		log.Error("initial build failed", logger.Err(err))
	}

	rebuild := make(chan struct{}, 1)
	w, err := watcher.New([]string{b.srcDir}, watcher.DefaultDebounce, func(path string) {
		if filepath.Base(path) == ignoreFileName {
			b.ignore.forget(filepath.Dir(path))
		}
		select {
		case rebuild <- struct{}{}:
		default:
		}
	}, log)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	log.Info("watching for file changes", logger.String("dir", b.srcDir))
	for {
		select {
		case <-rebuild:
			start := time.Now()
			if err := runOnce(b, out); err != nil {
				log.Error("rebuild failed", logger.Err(err))
				continue
			}
			log.Debug("rebuilt", logger.Duration("took", time.Since(start)))
		case err := <-done:
			return err
		}
	}
}
