package main

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"oss.terrastruct.com/m2/lib/xbrowser"
	"oss.terrastruct.com/m2/lib/xmain"
)

// watcher re-exports the input whenever it changes. Events are observed on one goroutine
// and exports run serially on another.
type watcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ms          *xmain.State
	c           *compiler
	openBrowser bool

	fw        *fsnotify.Watcher
	compileCh chan struct{}

	errMu sync.Mutex
	err   error
}

func newWatcher(ctx context.Context, ms *xmain.State, c *compiler, openBrowser bool) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	return &watcher{
		ctx:    ctx,
		cancel: cancel,

		ms:          ms,
		c:           c,
		openBrowser: openBrowser,

		fw:        fw,
		compileCh: make(chan struct{}, 1),
	}, nil
}

func (w *watcher) run() error {
	w.goFunc(w.watchLoop)
	w.goFunc(w.compileLoop)
	w.wg.Wait()

	w.setErr(w.fw.Close())
	if errors.Is(w.err, context.Canceled) {
		return nil
	}
	return w.err
}

func (w *watcher) setErr(err error) {
	w.errMu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.errMu.Unlock()
}

func (w *watcher) goFunc(fn func(context.Context) error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.cancel()
		w.setErr(fn(w.ctx))
	}()
}

func (w *watcher) watchLoop(ctx context.Context) error {
	lastModified, err := w.ensureAddWatch(ctx)
	if err != nil {
		return err
	}
	w.ms.Log.Info.Printf("exporting %v...", w.c.inputPath)
	w.requestCompile()

	// Editors write a file as a burst of events. An export starts once the burst has been
	// quiet for a moment.
	burst := time.NewTimer(0)
	<-burst.C
	// Events are not guaranteed so the modification time is also polled.
	poll := time.NewTicker(time.Second * 10)
	defer poll.Stop()

	for {
		select {
		case <-poll.C:
			mt, err := w.ensureAddWatch(ctx)
			if err != nil {
				return err
			}
			if !mt.Equal(lastModified) {
				lastModified = mt
				w.requestCompile()
			}
		case ev, ok := <-w.fw.Events:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Debug.Printf("received file system event %v", ev)
			mt, err := w.ensureAddWatch(ctx)
			if err != nil {
				return err
			}
			if ev.Op == fsnotify.Chmod && mt.Equal(lastModified) {
				continue
			}
			lastModified = mt
			burst.Reset(time.Millisecond * 32)
		case <-burst.C:
			w.ms.Log.Info.Printf("detected change in %v: re-exporting...", w.c.inputPath)
			w.requestCompile()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Error.Printf("fsnotify error: %v", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *watcher) requestCompile() {
	select {
	case w.compileCh <- struct{}{}:
	default:
	}
}

// ensureAddWatch watches the input, retrying with backoff while it cannot be watched.
// Editors that save by renaming drop the watch so it is re-added after every event.
func (w *watcher) ensureAddWatch(ctx context.Context) (time.Time, error) {
	interval := time.Second
	retry := time.NewTimer(0)
	<-retry.C
	for {
		err := w.fw.Add(w.c.inputPath)
		if err == nil {
			var fi os.FileInfo
			fi, err = os.Stat(w.c.inputPath)
			if err == nil {
				return fi.ModTime(), nil
			}
		}
		w.ms.Log.Error.Printf("failed to watch %q: %v (retrying in %v)", w.c.inputPath, err, interval)

		retry.Reset(interval)
		select {
		case <-retry.C:
			if interval < time.Second*16 {
				interval *= 2
			}
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		}
	}
}

func (w *watcher) compileLoop(ctx context.Context) error {
	first := true
	for {
		select {
		case <-w.compileCh:
		case <-ctx.Done():
			return ctx.Err()
		}

		err := w.c.compile(ctx)
		if err != nil {
			// A broken edit keeps the last good export and waits for the next change.
			w.ms.Log.Error.Print(err)
		} else {
			w.ms.Log.Success.Printf("successfully exported %v to %v", w.c.inputPath, w.c.outputPath)
		}

		if first {
			first = false
			if w.openBrowser && err == nil {
				err = xbrowser.OpenFile(ctx, w.ms.Env, w.c.outputPath)
				if err != nil {
					w.ms.Log.Warn.Printf("failed to open %v in the browser: %v", w.c.outputPath, err)
				}
			}
		}
	}
}
