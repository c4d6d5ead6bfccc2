package loader

import (
	"github.com/fsnotify/fsnotify"
	"github.com/mangayouknow/extcore/domain"
)

// Watcher is an optional, opt-in hot-rescan signal: it watches an
// extensions root directory and emits on Rescan whenever an entry directly
// under it (a subdirectory or a file) is created, removed, or renamed. It
// only signals; it does not run discovery itself. Discover never starts a
// Watcher on its own; callers must construct and run one explicitly.
type Watcher struct {
	watcher *fsnotify.Watcher
	Rescan  chan struct{}
	done    chan struct{}
}

// NewWatcher starts watching dir for create/remove/rename events on its entries.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, domain.WrapLoadError("creating filesystem watcher", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, domain.WrapLoadError("watching extensions directory", err)
	}

	w := &Watcher{
		watcher: fw,
		Rescan:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				select {
				case w.Rescan <- struct{}{}:
				default: // a rescan is already pending, coalesce
				}
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
