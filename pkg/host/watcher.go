package host

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const defaultDebounce = 2 * time.Second

// Watcher triggers host reloads from filesystem events on the extension
// roots, with optional scheduled rescans.
type Watcher struct {
	host     *Host
	log      *logrus.Logger
	debounce time.Duration

	fsw     *fsnotify.Watcher
	cron    *cron.Cron
	started bool
	done    chan struct{}
}

// NewWatcher creates a watcher over the host's extension roots. Events are
// debounced so a burst of writes produces a single reload.
func NewWatcher(h *Host, debounce time.Duration, logger *logrus.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = h.log
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	return &Watcher{
		host:     h,
		log:      logger,
		debounce: debounce,
		fsw:      fsw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching the extension roots. Roots that do not exist yet are
// skipped; a scheduled rescan will pick them up once created.
func (w *Watcher) Start(ctx context.Context) error {
	watched := 0
	for _, root := range w.host.Roots() {
		if _, err := os.Stat(root); err != nil {
			w.log.WithField("root", root).Debug("Not watching missing extension root")
			continue
		}
		if err := w.fsw.Add(root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
		watched++
	}
	w.log.WithField("roots", watched).Info("Watching extension roots")

	w.started = true
	go w.run(ctx)
	return nil
}

// Schedule adds a cron-style periodic rescan, e.g. "@every 10m".
func (w *Watcher) Schedule(spec string) error {
	if w.cron == nil {
		w.cron = cron.New()
	}
	_, err := w.cron.AddFunc(spec, func() {
		w.log.Debug("Scheduled extension rescan")
		if err := w.host.Scan(context.Background()); err != nil {
			w.log.WithError(err).Warn("Scheduled rescan failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid rescan schedule %q: %w", spec, err)
	}
	w.cron.Start()
	return nil
}

// Stop stops the watcher and any scheduled rescans.
func (w *Watcher) Stop() {
	if w.cron != nil {
		w.cron.Stop()
	}
	w.fsw.Close()
	if w.started {
		<-w.done
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.log.WithFields(logrus.Fields{
				"path": event.Name,
				"op":   event.Op.String(),
			}).Debug("Extension root changed")

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			if err := w.host.Reload(ctx); err != nil {
				w.log.WithError(err).Warn("Reload after filesystem change failed")
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("Filesystem watcher error")
		}
	}
}
