package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/vango-dev/isorouter/internal/errors"
)

// Watch re-loads path whenever it is written, created or renamed into
// place, and hands the result to onChange. A reload that fails reports
// the error and keeps watching. Watch blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file itself so that
// editors which save by rename are picked up.
func Watch(ctx context.Context, path string, onChange func(*Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New("R003").WithDetail("cannot start file watcher").Wrap(err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.New("R003").Wrap(err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.New("R003").WithDetail("cannot watch " + filepath.Dir(abs)).Wrap(err)
	}

	logger := slog.Default().With("component", "config", "path", abs)
	logger.Debug("watching config")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			cfg, err := LoadFile(abs)
			if err != nil {
				logger.Warn("config reload failed", "error", err)
			} else {
				logger.Info("config reloaded", "routes", len(cfg.Routes))
			}
			onChange(cfg, err)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
