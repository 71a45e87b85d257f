// Package watch re-runs work when a project file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the file must stay quiet before an event fires.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to a single file. Editors that save by writing a
// temp file and renaming it over the target are covered because the parent
// directory is watched.
type Watcher struct {
	fsw     *fsnotify.Watcher
	path    string
	delay   time.Duration
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// New starts watching path. delay <= 0 uses DefaultDebounce.
func New(path string, delay time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		fsw:     fsw,
		path:    abs,
		delay:   delay,
		Events:  make(chan string, 1),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher. Events and Errors are closed once the internal
// goroutine has exited.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Errors)
	defer close(w.Events)

	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			timer.Reset(w.delay)
		case <-timer.C:
			// A pending event already means "changed"; coalesce.
			select {
			case w.Events <- w.path:
			default:
			}
		case err, ok := <-w.fsw.Errors:
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

// Run calls fn for every change until ctx is done or the watcher closes.
// Errors from fn are logged and do not stop the loop.
func Run(ctx context.Context, w *Watcher, log *zap.Logger, fn func(context.Context) error) error {
	if log == nil {
		log = zap.NewNop()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			log.Debug("change detected", zap.String("path", path))
			if err := fn(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Error("rebuild failed", zap.String("path", path), zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}
