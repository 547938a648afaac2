package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/taigrr/lightbake/internal/config"
	"github.com/taigrr/lightbake/internal/logger"
)

// settle is how long the watched files must stay quiet before a re-bake.
// Editors and exporters often write a file in several steps.
const settle = 300 * time.Millisecond

// watchSet tracks the files whose changes trigger a re-bake. Directories
// are watched rather than files so that rename-on-save is seen.
type watchSet struct {
	files map[string]bool
}

func newWatchSet(paths ...string) *watchSet {
	w := &watchSet{files: make(map[string]bool)}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			w.files[abs] = true
		}
	}
	return w
}

// dirs returns the directories to register with the watcher.
func (w *watchSet) dirs() []string {
	seen := make(map[string]bool)
	var out []string
	for f := range w.files {
		d := filepath.Dir(f)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// relevant reports whether an event touches a watched file's content.
func (w *watchSet) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	return err == nil && w.files[abs]
}

// watch re-bakes whenever the scene or config file changes, until ctx is
// done. The config is reloaded on each change so edits to quality, compose
// settings or light overrides take effect.
func watch(ctx context.Context, cfg *config.Config) error {
	set := newWatchSet(config.Path(), cfg.Scene.Path)
	if len(set.files) == 0 {
		return fmt.Errorf("-watch needs a config file or a scene file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, d := range set.dirs() {
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	logger.Info("watching for changes", zap.Int("files", len(set.files)))

	timer := time.NewTimer(settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if set.relevant(ev) {
				logger.Debug("change detected", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
				timer.Reset(settle)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			next, err := config.Load()
			if err != nil {
				logger.Error("config reload failed", zap.Error(err))
				continue
			}
			cfg = next
			orch, err := newOrchestrator(cfg)
			if err != nil {
				logger.Error("bake setup failed", zap.Error(err))
				continue
			}
			if err := bakeOnce(ctx, cfg, orch); err != nil {
				logger.Error("bake failed", zap.Error(err))
			}
		}
	}
}
