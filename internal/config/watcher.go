package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aremos-dev/around-demo5/internal/ports"
)

// debounceDelay absorbs the write-then-rename bursts editors and
// provisioning tools produce when rewriting the config file.
const debounceDelay = 100 * time.Millisecond

// Watcher monitors the config file via fsnotify and delivers reloaded
// snapshots to the callback. Only file-sourced values change on reload;
// flag and environment overrides keep their precedence.
type Watcher struct {
	path    string
	base    Config
	changed map[string]bool
	logger  ports.Logger
	onApply func(Config)

	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher creates a watcher for the given config file. base is the
// fully-resolved startup configuration; changed is the explicitly-set flag
// map used to preserve precedence on reload.
func NewWatcher(path string, base Config, changed map[string]bool, onApply func(Config), logger ports.Logger) *Watcher {
	return &Watcher{
		path:    path,
		base:    base,
		changed: changed,
		logger:  logger,
		onApply: onApply,
	}
}

// Run watches the config file's directory until the context is canceled.
// Watching the directory rather than the file survives rename-based
// rewrites, which replace the inode.
func (w *Watcher) Run(ctx context.Context) {
	if w.path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("config watcher unavailable", ports.Err(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		w.logger.Warn("config watch failed",
			ports.String("dir", filepath.Dir(w.path)), ports.Err(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", ports.Err(err))
		}
	}
}

func (w *Watcher) debounceReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, w.reload)
}

// reload re-reads the file over the startup configuration and hands the
// result to the callback. A file that fails to parse or validate leaves
// the running configuration untouched.
func (w *Watcher) reload() {
	fc, err := loadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("config reload read failed", ports.Err(err))
		return
	}

	cfg := w.base
	if err := applyFileConfig(&cfg, fc, w.changed); err != nil {
		w.logger.Warn("config reload rejected", ports.Err(err))
		return
	}
	if err := cfg.Validate(); err != nil {
		w.logger.Warn("config reload invalid", ports.Err(err))
		return
	}

	w.logger.Info("configuration reloaded", ports.String("path", w.path))
	w.onApply(cfg)
}
