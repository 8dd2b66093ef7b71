package compiler

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changed room and tileset files in a set of directories.
// A file is reported once it has been quiet for the debounce window.
type Watcher struct {
	watcher  *fsnotify.Watcher
	Events   chan string
	Errors   chan error
	closeCh  chan struct{}
	once     sync.Once
	debounce time.Duration
	tileset  string
}

// NewWatcher starts watching dirs. tileset is the tileset file name whose
// changes are reported alongside .tmx files.
func NewWatcher(debounce time.Duration, tileset string, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher:  w,
		Events:   make(chan string, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		debounce: debounce,
		tileset:  tileset,
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	d := newDebouncer(w.debounce, w.closeCh)
	defer d.stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isRoomFile(event.Name) && filepath.Base(event.Name) != w.tileset {
				continue
			}
			d.touch(event.Name)
		case f := <-d.fire:
			if !d.settle(f) {
				continue
			}
			select {
			case w.Events <- f.name:
			case <-w.closeCh:
				return
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

type firing struct {
	name string
	gen  uint64
}

type pendingFile struct {
	timer *time.Timer
	gen   uint64
}

// debouncer delays a file until it has been quiet for delay. Every touch
// starts a new timer generation; a timer that fired before being
// superseded carries a stale generation and is dropped by settle.
// touch, settle and stop must be called from one goroutine.
type debouncer struct {
	delay   time.Duration
	fire    chan firing
	done    <-chan struct{}
	pending map[string]*pendingFile
}

func newDebouncer(delay time.Duration, done <-chan struct{}) *debouncer {
	return &debouncer{
		delay:   delay,
		fire:    make(chan firing),
		done:    done,
		pending: make(map[string]*pendingFile),
	}
}

func (d *debouncer) touch(name string) {
	p, ok := d.pending[name]
	if ok {
		p.timer.Stop()
	} else {
		p = &pendingFile{}
		d.pending[name] = p
	}
	p.gen++
	f := firing{name: name, gen: p.gen}
	p.timer = time.AfterFunc(d.delay, func() {
		select {
		case d.fire <- f:
		case <-d.done:
		}
	})
}

// settle reports whether f is the latest generation for its file, and if
// so forgets the file.
func (d *debouncer) settle(f firing) bool {
	p, ok := d.pending[f.name]
	if !ok || p.gen != f.gen {
		return false
	}
	delete(d.pending, f.name)
	return true
}

func (d *debouncer) stop() {
	for _, p := range d.pending {
		p.timer.Stop()
	}
}

func isRoomFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".tmx")
}

// Watch recompiles rooms into outDir whenever they change, and every room
// when the tileset changes. dir is the OS directory the compiler's
// filesystem is rooted at. Compile failures are logged and watching
// continues; Watch returns when ctx is done or the watcher fails.
func (c *Compiler) Watch(ctx context.Context, dir, outDir string) error {
	w, err := NewWatcher(c.watch.Debounce, c.tileset, dir)
	if err != nil {
		return err
	}
	defer w.Close()

	c.logger.Printf("watching %s", dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			c.handleChange(ctx, filepath.Base(name), outDir)
		}
	}
}

func (c *Compiler) handleChange(ctx context.Context, base, outDir string) {
	if base == c.tileset {
		rooms, err := c.Rooms(".")
		if err != nil {
			c.logger.Printf("tileset changed: %v", err)
			return
		}
		c.logger.Printf("tileset changed, recompiling %d rooms", len(rooms))
		if err := c.CompileAll(ctx, rooms, outDir); err != nil {
			c.logger.Printf("%v", err)
		}
		return
	}

	if _, err := fs.Stat(c.fsys, base); errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err := c.CompileFile(ctx, base, c.OutputPath(outDir, base)); err != nil {
		c.logger.Printf("%v", err)
	}
}
