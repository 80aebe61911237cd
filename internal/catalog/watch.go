package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDebounce coalesces the burst of write events most editors and
// atomic-rename writers emit for a single save.
const reloadDebounce = 500 * time.Millisecond

// Watch re-ingests the catalog feed whenever the file at path changes.
// Blocks until ctx is cancelled. Reload failures are logged and the
// previous index contents stay live.
func (ix *Index) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: atomic renames replace the inode.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(reloadDebounce, func() {
			select {
			case pending <- struct{}{}:
			default:
			}
		})
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	ix.log.Info("watching catalog feed", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(event.Name)
			if name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ix.log.Warn("catalog watcher error", zap.Error(err))
		case <-pending:
			ix.reload(ctx, path)
		}
	}
}

func (ix *Index) reload(ctx context.Context, path string) {
	courses, skipped, err := LoadFile(path)
	if err != nil {
		ix.log.Warn("catalog reload failed, keeping previous index", zap.Error(err))
		return
	}
	if err := ix.ReplaceAll(ctx, courses); err != nil {
		ix.log.Warn("catalog reindex failed", zap.Error(err))
		return
	}
	ix.log.Info("catalog reloaded",
		zap.Int("courses", len(courses)),
		zap.Int("skipped", skipped))
}
