// internal/config/watcher.go
package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/valpere/RecipeScrapexter/internal/utils"
)

// ConfigWatcher reloads a configuration file when it changes on disk
type ConfigWatcher struct {
	watcher    *fsnotify.Watcher
	configPath string
	logger     utils.Logger
	callbacks  []func(*Config)
	mu         sync.RWMutex
	stopped    bool
	done       chan struct{}
}

// NewConfigWatcher creates a new configuration file watcher. The parent
// directory is watched so editors that replace the file are noticed too.
func NewConfigWatcher(configPath string, logger utils.Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	cw := &ConfigWatcher{
		watcher:    watcher,
		configPath: absPath,
		logger:     logger.WithField("config", absPath),
		done:       make(chan struct{}),
	}
	go cw.watch()
	return cw, nil
}

// OnChange registers a callback to be called with each valid reload
func (cw *ConfigWatcher) OnChange(callback func(*Config)) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

func (cw *ConfigWatcher) watch() {
	defer close(cw.done)
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) == cw.configPath && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				cw.handleConfigChange()
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warnf("config watcher error: %v", err)
		}
	}
}

// handleConfigChange reloads the file; invalid files keep the old config
func (cw *ConfigWatcher) handleConfigChange() {
	cw.mu.RLock()
	if cw.stopped {
		cw.mu.RUnlock()
		return
	}
	callbacks := make([]func(*Config), len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mu.RUnlock()

	config, err := LoadFromFile(cw.configPath)
	if err != nil {
		cw.logger.Warnf("failed to reload config: %v", err)
		return
	}
	cw.logger.Info("configuration reloaded")

	for _, callback := range callbacks {
		callback(config)
	}
}

// Close stops the watcher and releases resources
func (cw *ConfigWatcher) Close() error {
	cw.mu.Lock()
	if cw.stopped {
		cw.mu.Unlock()
		return nil
	}
	cw.stopped = true
	cw.mu.Unlock()

	err := cw.watcher.Close()
	<-cw.done
	return err
}
