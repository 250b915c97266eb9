// Package filewatch hot-reloads the four persisted config files
// (whitelist, profiles, bin_profiles, passageways) by watching them with
// fsnotify and debouncing bursts of writes into a single reload call per
// file, each running under the owning store's own mutex.
package filewatch

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"barracuda/internal/config"
	"barracuda/internal/config/logger"
)

// ReloadFunc re-reads and re-applies one persisted file. It is responsible
// for its own store locking; filewatch only decides when to call it.
type ReloadFunc func() error

type watch struct {
	path      string
	debouncer *debouncer
	reload    ReloadFunc
}

// Watcher owns one fsnotify.Watcher shared across every watched file.
type Watcher struct {
	fsw *fsnotify.Watcher
	log logger.Logger

	mu      sync.Mutex
	watches map[string]*watch
}

// New returns a Watcher with its own fsnotify instance.
func New(log logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filewatch: %w", err)
	}

	return &Watcher{
		fsw:     fsw,
		log:     log.WithComponent("FILEWATCH"),
		watches: make(map[string]*watch),
	}, nil
}

// Watch arms reload to run (debounced by config.FileWatchDebounce) whenever
// path changes on disk.
func (w *Watcher) Watch(path string, reload ReloadFunc) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("filewatch: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.watches[abs]; exists {
		return nil
	}

	if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("filewatch: watch %s: %w", abs, err)
	}

	path = abs
	wv := &watch{path: abs, reload: reload}
	wv.debouncer = newDebouncer(config.FileWatchDebounce, func() {
		if err := reload(); err != nil {
			w.log.Error().Err(err).Str("path", path).Msg("reload failed")
			return
		}

		w.log.Info().Str("path", path).Msg("reloaded")
	})

	w.watches[abs] = wv

	return nil
}

// Run drains fsnotify events until stop closes.
func (w *Watcher) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

			w.log.Error().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	wv, ok := w.watches[abs]
	w.mu.Unlock()

	if !ok {
		return
	}

	wv.debouncer.Trigger()
}

// Close stops every debouncer and closes the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, wv := range w.watches {
		wv.debouncer.Stop()
	}

	return w.fsw.Close()
}
