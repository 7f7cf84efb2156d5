package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     *slog.Logger
}

// NewWatcher starts watching path. The parent directory is watched so that
// editors which replace the file on save are still seen.
func NewWatcher(path string, log *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Watcher{path: abs, watcher: w, log: log}, nil
}

// Run sends every successfully reloaded config on out until ctx is done.
// A file that fails to load or validate is logged and skipped; the last good
// config stays in effect.
func (w *Watcher) Run(ctx context.Context, out chan<- Config) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(w.path)
			if err == nil {
				err = cfg.Validate()
			}
			if err != nil {
				w.log.Warn("config reload failed", "path", w.path, "err", err)
				continue
			}
			w.log.Info("config reloaded", "path", w.path)
			select {
			case out <- cfg:
			case <-ctx.Done():
				return ctx.Err()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("config watcher error", "err", err)
		}
	}
}

// Watch is NewWatcher followed by Run.
func Watch(ctx context.Context, path string, log *slog.Logger, out chan<- Config) error {
	w, err := NewWatcher(path, log)
	if err != nil {
		return err
	}
	return w.Run(ctx, out)
}
