// Package watcher polls source trees and triggers re-extraction when files
// change.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/DeusData/codebase-graph/internal/discover"
)

const (
	baseInterval = 1 * time.Second
	maxInterval  = 60 * time.Second
)

// fileSnapshot identifies a file version. Two snapshots with the same size
// and content hash are equal even if the mtime moved.
type fileSnapshot struct {
	modTime time.Time
	size    int64
	hash    uint64
}

type projectState struct {
	root     string
	snapshot map[string]fileSnapshot
	interval time.Duration
	nextPoll time.Time
}

// IndexFunc is the callback signature for triggering a re-index.
type IndexFunc func(ctx context.Context, name, root string) error

// Watcher polls registered source roots and calls indexFn on change.
type Watcher struct {
	indexFn  IndexFunc
	opts     *discover.Options
	mu       sync.Mutex
	projects map[string]*projectState
}

// New creates a Watcher. opts filters the discovered files and may be nil.
func New(indexFn IndexFunc, opts *discover.Options) *Watcher {
	return &Watcher{
		indexFn:  indexFn,
		opts:     opts,
		projects: make(map[string]*projectState),
	}
}

// Watch registers a source root under name. Registering an existing name
// replaces its root and resets its baseline.
func (w *Watcher) Watch(name, root string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.projects[name] = &projectState{root: root}
}

// Unwatch removes a registration.
func (w *Watcher) Unwatch(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.projects, name)
}

// Run blocks until ctx is cancelled. Ticks at baseInterval, polling each
// project only when its adaptive interval has elapsed.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(baseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollAll(ctx)
		}
	}
}

// pollAll polls each registered project that is due.
func (w *Watcher) pollAll(ctx context.Context) {
	w.mu.Lock()
	due := make(map[string]*projectState, len(w.projects))
	now := time.Now()
	for name, state := range w.projects {
		if now.Before(state.nextPoll) {
			continue
		}
		due[name] = state
	}
	w.mu.Unlock()

	for name, state := range due {
		if ctx.Err() != nil {
			return
		}
		w.pollProject(ctx, name, state)
	}
}

// pollProject captures a snapshot of the file tree and compares it with the
// previous one. The first poll only records a baseline.
func (w *Watcher) pollProject(ctx context.Context, name string, state *projectState) {
	if _, err := os.Stat(state.root); err != nil {
		slog.Warn("watcher.root_gone", "project", name, "path", state.root)
		state.nextPoll = time.Now().Add(maxInterval)
		return
	}

	snap, err := captureSnapshot(ctx, state.root, w.opts, state.snapshot)
	if err != nil {
		slog.Warn("watcher.snapshot", "project", name, "err", err)
		state.nextPoll = time.Now().Add(state.interval)
		return
	}

	interval := pollInterval(len(snap))

	if state.snapshot == nil {
		slog.Debug("watcher.baseline", "project", name, "files", len(snap))
		state.snapshot = snap
		state.interval = interval
		state.nextPoll = time.Now().Add(interval)
		return
	}

	if snapshotsEqual(state.snapshot, snap) {
		// Keep the new mtimes so unchanged files are not rehashed.
		state.snapshot = snap
		state.interval = interval
		state.nextPoll = time.Now().Add(interval)
		return
	}

	slog.Info("watcher.changed", "project", name, "files", len(snap))
	if err := w.indexFn(ctx, name, state.root); err != nil {
		slog.Warn("watcher.index", "project", name, "err", err)
		// Keep old snapshot so we retry next cycle
		state.nextPoll = time.Now().Add(interval)
		return
	}

	state.snapshot = snap
	state.interval = interval
	state.nextPoll = time.Now().Add(interval)
}

// captureSnapshot records mtime, size and content hash for each discovered
// file. Hashes are reused from prev for files whose mtime and size are
// unchanged.
func captureSnapshot(ctx context.Context, root string, opts *discover.Options, prev map[string]fileSnapshot) (map[string]fileSnapshot, error) {
	files, err := discover.Discover(ctx, root, opts)
	if err != nil {
		return nil, err
	}

	snap := make(map[string]fileSnapshot, len(files))
	for _, f := range files {
		info, statErr := os.Stat(f.Path)
		if statErr != nil {
			continue
		}
		s := fileSnapshot{modTime: info.ModTime(), size: info.Size()}
		if old, ok := prev[f.RelPath]; ok && old.modTime.Equal(s.modTime) && old.size == s.size {
			s.hash = old.hash
		} else {
			data, readErr := os.ReadFile(f.Path)
			if readErr != nil {
				continue
			}
			s.hash = xxh3.Hash(data)
		}
		snap[f.RelPath] = s
	}
	return snap, nil
}

// snapshotsEqual returns true if two snapshots have identical files with the
// same size and content.
func snapshotsEqual(a, b map[string]fileSnapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for path, aSnap := range a {
		bSnap, ok := b[path]
		if !ok {
			return false
		}
		if aSnap.size != bSnap.size || aSnap.hash != bSnap.hash {
			return false
		}
	}
	return true
}

// pollInterval computes the adaptive interval from file count.
// 1s base + 1s per 500 files, capped at 60s.
func pollInterval(fileCount int) time.Duration {
	ms := 1000 + (fileCount/500)*1000
	return min(time.Duration(ms)*time.Millisecond, maxInterval)
}
