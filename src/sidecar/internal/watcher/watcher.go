// Package watcher forwards workspace file-system changes matching the
// configured glob patterns as LSP file events.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_configKeyWatch = "watch"

	_defaultDebounce = 100 * time.Millisecond
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// NotifyFunc receives a debounced batch of file events.
type NotifyFunc func(changes []*protocol.FileEvent)

// Watcher observes a workspace root and reports matching changes.
type Watcher interface {
	// Watch begins observing root. Events are delivered to notify in batches
	// until the returned stop function is called.
	Watch(root string, notify NotifyFunc) (stop func() error, err error)
}

// Config holds the watch settings from the config files.
type Config struct {
	// Patterns are doublestar globs matched against workspace-relative paths.
	Patterns []string `yaml:"patterns"`
	// DebounceMillis is how long to collect events before notifying.
	DebounceMillis int `yaml:"debounceMillis"`
}

// Params define values to be used by the watcher.
type Params struct {
	fx.In

	Config config.Provider
	Logger *zap.SugaredLogger
}

type watcher struct {
	cfg    Config
	logger *zap.SugaredLogger
}

// New creates a Watcher from the configured patterns.
func New(p Params) (Watcher, error) {
	w := &watcher{logger: p.Logger}
	if err := p.Config.Get(_configKeyWatch).Populate(&w.cfg); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKeyWatch, err)
	}
	return w, nil
}

func (w *watcher) Watch(root string, notify NotifyFunc) (func() error, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	if err := addRecursive(fsw, root); err != nil {
		fsw.Close()
		return nil, err
	}

	debounce := _defaultDebounce
	if w.cfg.DebounceMillis > 0 {
		debounce = time.Duration(w.cfg.DebounceMillis) * time.Millisecond
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.run(fsw, root, debounce, notify)
	}()

	return func() error {
		err := fsw.Close()
		wg.Wait()
		return err
	}, nil
}

// run collects events until the watcher is closed, flushing a batch whenever
// no further event arrives within the debounce interval.
func (w *watcher) run(fsw *fsnotify.Watcher, root string, debounce time.Duration, notify NotifyFunc) {
	var pending []*protocol.FileEvent
	timer := time.NewTimer(debounce)
	timer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		notify(pending)
		pending = nil
	}

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				flush()
				return
			}

			// Newly created directories join the watch so nested changes are seen.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(fsw, event.Name); err != nil {
						w.logger.Warnw("watching new directory", zap.String("path", event.Name), zap.Error(err))
					}
					continue
				}
			}

			if fe := w.toFileEvent(root, event); fe != nil {
				pending = append(pending, fe)
				timer.Reset(debounce)
			}

		case <-timer.C:
			flush()

		case err, ok := <-fsw.Errors:
			if !ok {
				flush()
				return
			}
			w.logger.Warnw("file watcher error", zap.Error(err))
		}
	}
}

// toFileEvent maps an fsnotify event to an LSP file event, or nil if the path
// does not match any configured pattern.
func (w *watcher) toFileEvent(root string, event fsnotify.Event) *protocol.FileEvent {
	rel, err := filepath.Rel(root, event.Name)
	if err != nil {
		return nil
	}
	rel = filepath.ToSlash(rel)

	if !w.matches(rel) {
		return nil
	}

	var changeType protocol.FileChangeType
	switch {
	case event.Op.Has(fsnotify.Create):
		changeType = protocol.FileChangeTypeCreated
	case event.Op.Has(fsnotify.Write):
		changeType = protocol.FileChangeTypeChanged
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		changeType = protocol.FileChangeTypeDeleted
	default:
		return nil
	}

	return &protocol.FileEvent{
		URI:  uri.File(event.Name),
		Type: changeType,
	}
}

func (w *watcher) matches(rel string) bool {
	for _, pattern := range w.cfg.Patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// addRecursive watches dir and all its subdirectories, skipping hidden ones.
func addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && path != dir {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
