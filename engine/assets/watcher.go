package assets

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/assetforge/engine/core"
)

// Watcher dirties cached assets when their backing files change on disk.
type Watcher struct {
	manager *AssetManager
	roots   []string

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	dirtied  chan string
	errors   chan error

	mutex    sync.Mutex
	isClosed bool
	started  bool
	wg       sync.WaitGroup
}

// NewWatcher watches roots recursively. Without roots it watches the
// manager's content root and source path.
func NewWatcher(manager *AssetManager, roots ...string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		roots = append(roots, manager.RawLoader().Root())
		if sp := manager.RawLoader().SourcePath(); sp != "" {
			roots = append(roots, sp)
		}
	}
	return &Watcher{
		manager:  manager,
		roots:    roots,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		dirtied:  make(chan string, 64),
		errors:   make(chan error, 8),
	}, nil
}

// Dirtied delivers the names of assets dirtied by file events. Names are
// dropped when nobody reads the channel.
func (w *Watcher) Dirtied() <-chan string {
	return w.dirtied
}

func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Start registers the watch roots and begins processing events.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.isClosed {
		return core.ErrWatcherClosed
	}
	if w.started {
		return nil
	}
	for _, root := range w.roots {
		if _, err := os.Stat(root); err != nil {
			core.LogWarn("Not watching '%s': %s", root, err)
			continue
		}
		if err := w.watchRecursive(root); err != nil {
			return err
		}
		core.LogDebug("Watching '%s' for changes", root)
	}
	w.started = true
	w.wg.Add(1)
	go w.start()
	return nil
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			w.handle(e)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())
			select {
			case w.errors <- err:
			default:
			}

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := w.watchRecursive(e.Name); err != nil {
				core.LogWarn("Unable to watch '%s': %s", e.Name, err)
			}
			return
		}
	}
	if e.Op&fsnotify.Remove != 0 {
		// a removed path may have been a directory; fsnotify tolerates the miss
		_ = w.fsnotify.Remove(e.Name)
	}
	if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	name, ok := w.manager.DirtyPath(e.Name)
	if !ok {
		return
	}
	core.LogInfo("Asset '%s' changed on disk", name)
	select {
	case w.dirtied <- name:
	default:
	}
}

// watchRecursive adds path and every directory below it to the watch list.
func (w *Watcher) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return nil
	}
	w.isClosed = true
	w.mutex.Unlock()

	close(w.done)
	err := w.fsnotify.Close()
	w.wg.Wait()
	return err
}
