package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler receives freshly reloaded options.
type Handler func(Options)

// Watcher reloads the rc file when it changes on disk and notifies
// registered handlers. Editors that replace the file on save emit
// create/rename events, so the watcher monitors the parent directory.
type Watcher struct {
	mu       sync.Mutex
	path     string
	fw       *fsnotify.Watcher
	handlers []Handler
	log      *zap.Logger
	done     chan struct{}
	once     sync.Once
}

// NewWatcher watches path for changes. A nil logger is replaced with a
// no-op logger.
func NewWatcher(path string, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		path: path,
		fw:   fw,
		log:  log,
		done: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// OnReload registers a handler for reloaded options.
func (w *Watcher) OnReload(h Handler) {
	w.mu.Lock()
	w.handlers = append(w.handlers, h)
	w.mu.Unlock()
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.done) })
	return w.fw.Close()
}

// run dispatches filesystem events until closed.
func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", zap.Error(err))
		}
	}
}

// reload re-reads the file and fans out to handlers. Parse failures keep
// the previous options in place.
func (w *Watcher) reload() {
	opts, err := Load(w.path)
	if err != nil {
		w.log.Warn("config reload failed", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.log.Debug("config reloaded", zap.String("path", w.path))

	w.mu.Lock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, h := range handlers {
		h(opts)
	}
}
