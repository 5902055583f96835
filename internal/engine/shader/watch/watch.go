// Package watch reports edits to shader sources so the renderer can reload
// them between frames.
package watch

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/pathlight/internal/logger"
)

// Extensions that count as shader sources.
var Extensions = []string{".vert", ".frag", ".glsl"}

// Watcher collects changed shader file names from a directory.
// Changes are queued by a background goroutine and drained by the render
// thread with Changed.
type Watcher struct {
	fs      *fsnotify.Watcher
	log     *zap.Logger
	changed chan string
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// New starts watching dir.
func New(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating shader watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &Watcher{
		fs:      fw,
		log:     logger.Named("shader-watch"),
		changed: make(chan string, 64),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()

	w.log.Info("watching shaders", zap.String("dir", dir))
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Base(event.Name)
			if !slices.Contains(Extensions, filepath.Ext(name)) {
				continue
			}
			select {
			case w.changed <- name:
			default:
				// queue full; a reload is already pending
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// Changed returns the distinct shader files modified since the last call,
// without blocking.
func (w *Watcher) Changed() []string {
	var names []string
	for {
		select {
		case name := <-w.changed:
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		default:
			return names
		}
	}
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}
