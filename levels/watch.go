package levels

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reports layer files of a Store that change on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	store   *Store
	Events  chan int
	Errors  chan error
	closeCh chan struct{}
	doneCh  chan struct{}
	once    sync.Once
}

// NewWatcher watches the store directory. Events carries the layer index of
// every changed file.
func NewWatcher(store *Store) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(store.Dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher: w,
		store:   store,
		Events:  make(chan int, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.doneCh
		close(w.Events)
		close(w.Errors)
	})
	return err
}

// run forwards a layer index once its file has been quiet for watchDebounce,
// so a save written in several chunks is reported once.
func (w *Watcher) run() {
	defer close(w.doneCh)
	pending := make(map[int]struct{})
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			index, ok := w.store.LayerIndex(event.Name)
			if !ok {
				continue
			}
			pending[index] = struct{}{}
			timer.Reset(watchDebounce)
		case <-timer.C:
			for index := range pending {
				select {
				case w.Events <- index:
				case <-w.closeCh:
					return
				}
				delete(pending, index)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}
