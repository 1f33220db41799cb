// Package watcher triggers re-ingestion when the source directory changes.
package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches a directory tree and invokes a callback after changes
// settle. Rapid event bursts (editor saves, bulk copies) collapse into a
// single callback per debounce window.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func()
	logger   *zap.Logger

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timer   *time.Timer
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a watcher over root. onChange runs on the watcher goroutine
// after each settled burst of events; it must not block indefinitely.
func New(root string, debounce time.Duration, onChange func(), logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     root,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		watcher:  fsw,
		done:     make(chan struct{}),
	}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// addRecursive registers root and every subdirectory with the fsnotify
// watcher.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		if w.logger != nil {
			w.logger.Debug("watching directory", zap.String("path", path))
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// New subdirectories need their own watch before anything
			// inside them generates events.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil && w.logger != nil {
						w.logger.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
				}
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("watch error", zap.Error(err))
			}
		}
	}
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if w.logger != nil {
			w.logger.Info("source directory changed, triggering refresh", zap.String("root", w.root))
		}
		w.onChange()
	})
}

// Stop shuts the watcher down and cancels any pending callback.
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()
	w.wg.Wait()
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}
