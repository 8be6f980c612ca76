package plughost

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher signals when plugin binaries appear or change in a directory, so
// the host can load the newcomers and re-assemble. Events are debounced:
// a burst of writes while a plugin is copied in collapses to one signal.
type Watcher struct {
	dir      string
	logger   *log.Logger
	debounce time.Duration
	changes  chan struct{}
}

// NewWatcher creates a watcher for dir. A zero debounce defaults to 500ms.
func NewWatcher(dir string, debounce time.Duration, logger *log.Logger) *Watcher {
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		dir:      dir,
		logger:   logger,
		debounce: debounce,
		changes:  make(chan struct{}, 1),
	}
}

// Changes delivers one signal per debounced batch of plugin-file events. The
// channel is never closed; stop consuming when Run returns.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Run watches until the context is canceled, which is the normal exit and
// returns nil.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Debug("watching plugin directory", "dir", w.dir)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".so" {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, w.signal)
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) signal() {
	select {
	case w.changes <- struct{}{}:
	default: // a signal is already pending
	}
}
