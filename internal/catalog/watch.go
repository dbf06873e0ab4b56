package catalog

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reloads a Resolver whenever its catalog file changes. Results of
// each reload attempt are delivered on Reloads (nil on success).
type Watcher struct {
	resolver *Resolver
	watcher  *fsnotify.Watcher
	target   string
	Reloads  chan error
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// Watch observes the directory containing the resolver's catalog file.
// Editors often replace files via rename, so the file itself is not watched.
func Watch(resolver *Resolver) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	target := filepath.Clean(resolver.Path())
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return nil, err
	}
	watcher := &Watcher{
		resolver: resolver,
		watcher:  w,
		target:   target,
		Reloads:  make(chan error, 8),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Reloads)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	// Reload once writes settle so a half-written file is never the last one read.
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(watchDebounce)
		case <-timer.C:
			w.deliver(w.resolver.Reload())
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.deliver(err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) deliver(err error) {
	select {
	case w.Reloads <- err:
	default:
	}
}
