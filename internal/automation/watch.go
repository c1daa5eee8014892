package automation

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 100 * time.Millisecond

// ScenarioWatcher reloads a scenario file each time it changes on disk.
type ScenarioWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *log.Logger
	delay   time.Duration
}

// WatchScenario starts watching path. The directory is watched rather than
// the file so that editors which replace the file on save are still seen.
func WatchScenario(path string, logger *log.Logger) (*ScenarioWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ScenarioWatcher{path: abs, watcher: w, logger: logger, delay: reloadDelay}, nil
}

func (sw *ScenarioWatcher) Path() string { return sw.path }

// Run calls onLoad with each successfully reloaded scenario until ctx is
// done. Bursts of events are coalesced and files that fail to load are
// logged and skipped. The watcher is closed when Run returns.
func (sw *ScenarioWatcher) Run(ctx context.Context, onLoad func(*Scenario)) error {
	defer sw.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != sw.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(sw.delay)
			} else {
				timer.Reset(sw.delay)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			sc, err := LoadScenario(sw.path)
			if err != nil {
				sw.logger.Warn("scenario reload failed", "path", sw.path, "err", err)
				continue
			}
			sw.logger.Info("scenario reloaded", "name", sc.Name, "spawns", len(sc.Spawns))
			onLoad(sc)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return nil
			}
			sw.logger.Warn("scenario watch error", "err", err)
		}
	}
}
