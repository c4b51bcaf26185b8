package synchronizer

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jingkaihe/skillsync/pkg/logger"
	"github.com/pkg/errors"
)

// SyncFunc receives the outcome of every sync run by a Watcher.
type SyncFunc func(result *Result, err error)

// Watcher re-runs a sync whenever the source commands/ or skills/ directory
// changes. Bursts of events are coalesced into a single sync after the
// debounce interval has passed without further events.
type Watcher struct {
	sync     *Synchronizer
	debounce time.Duration
	onSync   SyncFunc
}

// NewWatcher creates a Watcher. onSync may be nil.
func NewWatcher(s *Synchronizer, debounce time.Duration, onSync SyncFunc) *Watcher {
	if onSync == nil {
		onSync = func(*Result, error) {}
	}
	return &Watcher{
		sync:     s,
		debounce: debounce,
		onSync:   onSync,
	}
}

// Run syncs once, then watches until ctx is cancelled. Sync failures are
// reported through onSync and do not stop the watcher; failing to set up
// the file watch does.
func (w *Watcher) Run(ctx context.Context) error {
	log := logger.G(ctx)

	w.onSync(w.sync.Sync(ctx))

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer fsw.Close()

	src := w.sync.Source()
	for _, dir := range []string{src.CommandsDir(), src.SkillsDir()} {
		if err := fsw.Add(dir); err != nil {
			return errors.Wrapf(err, "failed to watch %s", dir)
		}
		log.WithField("dir", dir).Debug("watching")
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
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
			if event.Op == fsnotify.Chmod {
				continue
			}
			log.WithFields(map[string]interface{}{
				"file":      event.Name,
				"operation": event.Op.String(),
			}).Debug("source change detected")

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
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("file watcher error")
		case <-pending:
			pending = nil
			w.onSync(w.sync.Sync(ctx))
		}
	}
}
