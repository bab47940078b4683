package gwconfig

import (
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch follows the teacher's agent/internal/config/watch.go pattern:
// watch path for writes, reload, and hand the new Config to onChange.
// Structural changes (building id, car count) are logged but not applied
// live — the caller is expected to restart for those, per SPEC_FULL.md §10.
func Watch(path string, onChange func(*Config)) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("gwconfig: new watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("gwconfig: watch %s: %w", path, err)
	}

	prev, err := Load(path)
	if err != nil {
		w.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				// Editors often save via rename, which drops the watch on
				// the old inode; re-arm it on whatever file is now at path.
				_ = w.Add(path)
				next, err := Load(path)
				if err != nil {
					slog.Warn("gwconfig: reload failed", "path", path, "err", err)
					continue
				}
				if !prev.StructuralEqual(next) {
					slog.Warn("gwconfig: structural change requires restart, ignoring",
						"path", path, "building_id", next.BuildingID, "car_count", next.CarCount)
					continue
				}
				prev = next
				onChange(next)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("gwconfig: watcher error", "err", err)
			}
		}
	}()

	return w, nil
}
