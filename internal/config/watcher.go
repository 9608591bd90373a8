package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"stevedore/pkg/logging"
)

const watcherSubsystem = "ConfigWatcher"

// Watcher reloads the config file when it changes and applies the
// hot-reloadable settings (lock timeouts) to the store. Events are
// debounced because editors typically produce several writes per save.
type Watcher struct {
	mu sync.Mutex

	configPath       string
	store            *Store
	debounceInterval time.Duration

	watcher *fsnotify.Watcher
	timer   *time.Timer
	running bool
}

// NewWatcher creates a watcher for config.yaml under configPath.
func NewWatcher(configPath string, store *Store) *Watcher {
	return &Watcher{
		configPath:       configPath,
		store:            store,
		debounceInterval: 500 * time.Millisecond,
	}
}

// Start begins watching. It returns immediately; reloads happen on a
// background goroutine until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}

	// Watch the directory rather than the file: editors replace files
	// by rename, which drops a watch on the file itself.
	if err := watcher.Add(w.configPath); err != nil {
		watcher.Close()
		w.mu.Unlock()
		return err
	}

	w.watcher = watcher
	w.running = true
	w.mu.Unlock()

	go w.processEvents(ctx)

	logging.Info(watcherSubsystem, "Watching %s for configuration changes", filepath.Join(w.configPath, configFileName))
	return nil
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.running = false
			w.mu.Unlock()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error(watcherSubsystem, err, "Filesystem watcher error")
		}
	}
}

// scheduleReload debounces rapid successive writes into one reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceInterval, w.reload)
}

func (w *Watcher) reload() {
	config, err := Load(w.configPath)
	if err != nil {
		logging.Error(watcherSubsystem, err, "Ignoring config change: reload failed")
		return
	}

	w.store.UpdateLocking(config.Locking)
	logging.Info(watcherSubsystem, "Applied lock timeouts: default %s, build %s",
		config.Locking.DefaultTimeout.Std(), config.Locking.BuildTimeout.Std())
}
