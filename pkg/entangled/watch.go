package entangled

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shakfu/entangled-rs/pkg/log"
)

// Watch runs the file watcher loop: any relevant change under the base
// directory schedules a sync after the configured debounce window. The loop
// exits when ctx is cancelled. Each sync builds its own reference map and
// transactions; the core stays synchronous between events.
func (ec *Context) Watch(ctx context.Context, onSync func(error)) error {
	lg := log.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, ec.BaseDir); err != nil {
		return err
	}

	debounce := time.Duration(ec.Config.Watch.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	// The timer is created stopped; every relevant event rewinds it.
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ec.relevantEvent(event) {
				continue
			}
			lg.Debug("change detected", "path", event.Name, "op", event.Op.String())
			// New directories need to be watched for events inside them.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addWatchDirs(watcher, event.Name)
				}
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			lg.Warn("watcher error", "error", err)

		case <-timer.C:
			err := ec.Sync(ctx, false)
			if err != nil {
				lg.Error("sync failed", "error", err)
			}
			if onSync != nil {
				onSync(err)
			}
		}
	}
}

// relevantEvent filters out the engine's own bookkeeping: the file database,
// lock and temp files, and VCS internals.
func (ec *Context) relevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".entangled-tmp-") || strings.HasSuffix(base, ".lock") {
		return false
	}
	rel, err := filepath.Rel(ec.BaseDir, event.Name)
	if err != nil {
		return true
	}
	top := strings.Split(filepath.ToSlash(rel), "/")[0]
	return top != ".entangled" && top != ".git"
}

// addWatchDirs registers root and every directory below it, skipping
// bookkeeping directories.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == ".git" || name == ".entangled" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
