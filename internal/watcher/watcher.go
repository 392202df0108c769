// Package watcher polls a project's source tree for file changes and
// triggers an incremental refresh when anything moved: adaptive poll
// interval, mtime+size snapshot diffing, and a first-poll baseline
// capture that never triggers. One watcher per open project.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"time"
)

const (
	baseInterval = 1 * time.Second
	maxInterval  = 60 * time.Second
)

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// RefreshFunc triggers an incremental refresh of the watched project.
type RefreshFunc func(ctx context.Context) error

// Lister enumerates the files currently on disk under the watched root,
// used to build comparison snapshots without re-walking via globs twice.
type Lister interface {
	ListFiles(root string) ([]string, error)
}

// Watcher polls one project's root for file changes and calls Refresh
// when the on-disk snapshot diverges from the last one observed.
type Watcher struct {
	Root    string
	Lister  Lister
	Refresh RefreshFunc

	snapshot map[string]fileSnapshot
	interval time.Duration
	nextPoll time.Time
}

// New returns a Watcher for root, calling refresh whenever a change is
// detected. lister supplies the file list each poll (normally the
// project's plan.SourceGroup walk).
func New(root string, lister Lister, refresh RefreshFunc) *Watcher {
	return &Watcher{Root: root, Lister: lister, Refresh: refresh}
}

// Run blocks until ctx is cancelled, polling at baseInterval but only
// actually re-scanning a project's tree once its adaptive interval has
// elapsed.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(baseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			if !w.nextPoll.IsZero() && now.Before(w.nextPoll) {
				continue
			}
			w.poll(ctx)
		}
	}
}

// poll captures a fresh snapshot and compares it against the last one.
// The very first poll only establishes a baseline; it never triggers a
// refresh, since there is nothing to diff against yet.
func (w *Watcher) poll(ctx context.Context) {
	if _, err := os.Stat(w.Root); err != nil {
		slog.Warn("watcher.root_gone", "path", w.Root)
		w.nextPoll = time.Now().Add(maxInterval)
		return
	}

	snap, err := w.captureSnapshot()
	if err != nil {
		slog.Warn("watcher.snapshot", "path", w.Root, "err", err)
		w.nextPoll = time.Now().Add(w.currentInterval())
		return
	}

	interval := pollInterval(len(snap))

	if w.snapshot == nil {
		slog.Debug("watcher.baseline", "path", w.Root, "files", len(snap))
		w.snapshot = snap
		w.interval = interval
		w.nextPoll = time.Now().Add(interval)
		return
	}

	if snapshotsEqual(w.snapshot, snap) {
		w.interval = interval
		w.nextPoll = time.Now().Add(interval)
		return
	}

	slog.Info("watcher.changed", "path", w.Root, "files", len(snap))
	if err := w.Refresh(ctx); err != nil {
		slog.Warn("watcher.refresh", "path", w.Root, "err", err)
		// Keep the old snapshot so the next cycle retries the diff.
		w.nextPoll = time.Now().Add(interval)
		return
	}

	w.snapshot = snap
	w.interval = pollInterval(len(snap))
	w.nextPoll = time.Now().Add(w.interval)
}

func (w *Watcher) currentInterval() time.Duration {
	if w.interval == 0 {
		return baseInterval
	}
	return w.interval
}

func (w *Watcher) captureSnapshot() (map[string]fileSnapshot, error) {
	paths, err := w.Lister.ListFiles(w.Root)
	if err != nil {
		return nil, err
	}
	snap := make(map[string]fileSnapshot, len(paths))
	for _, rel := range paths {
		info, statErr := os.Stat(w.Root + string(os.PathSeparator) + rel)
		if statErr != nil {
			continue
		}
		snap[rel] = fileSnapshot{modTime: info.ModTime(), size: info.Size()}
	}
	return snap, nil
}

func snapshotsEqual(a, b map[string]fileSnapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for path, aSnap := range a {
		bSnap, ok := b[path]
		if !ok || !aSnap.modTime.Equal(bSnap.modTime) || aSnap.size != bSnap.size {
			return false
		}
	}
	return true
}

// pollInterval computes the adaptive interval from file count: 1s base
// plus 1s per 500 files, capped at 60s, so large trees aren't re-walked
// every second.
func pollInterval(fileCount int) time.Duration {
	ms := 1000 + (fileCount/500)*1000
	if ms > int(maxInterval/time.Millisecond) {
		ms = int(maxInterval / time.Millisecond)
	}
	return time.Duration(ms) * time.Millisecond
}
