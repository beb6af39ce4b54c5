package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"dataroom-cli/cmd/utils"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce lets spreadsheet apps finish writing before the re-upload.
const watchDebounce = 500 * time.Millisecond

// watchFile calls onChange after path is written, created or renamed into
// place, coalescing bursts of events. It blocks until ctx is done. The
// parent directory is watched because editors often save by replacing the
// file, which drops a watch on the file itself.
func watchFile(ctx context.Context, path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(abs)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	utils.LogDebug(fmt.Sprintf("watching %s", abs))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			utils.LogDebug(fmt.Sprintf("watch event: %s", event))
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			utils.LogDebug(fmt.Sprintf("watcher error: %v", err))
		}
	}
}
