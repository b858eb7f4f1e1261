package vcs

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"intentguard/internal/logging"
)

// SyncTracker watches the workspace root for filesystem mutations that
// didn't happen through the hook pipeline (an external edit, a second
// agent, a human in another terminal) and exposes whether the session's
// recorded lastSync revision still matches reality. Grounded in the
// teacher's internal/core/mangle_watcher.go fsnotify usage.
type SyncTracker struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dirty    bool
	oracle   Oracle
	lastSync string
}

// NewSyncTracker starts watching root (non-recursively at first; callers
// add subdirectories via Watch). lastSync should be seeded from
// oracle.CurrentRevision() at session start.
func NewSyncTracker(root string, oracle Oracle) (*SyncTracker, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(root); err != nil {
		w.Close()
		return nil, err
	}

	st := &SyncTracker{
		watcher:  w,
		oracle:   oracle,
		lastSync: oracle.CurrentRevision(),
	}
	go st.run()
	return st, nil
}

// Watch adds an additional directory to the watch set. Missing directories
// are ignored, matching fsnotify's advisory (non-fatal) posture elsewhere
// in this codebase.
func (st *SyncTracker) Watch(dir string) {
	if err := st.watcher.Add(dir); err != nil {
		logging.ConcurrencyWarn("sync tracker: could not watch %s: %v", dir, err)
	}
}

func (st *SyncTracker) run() {
	for {
		select {
		case event, ok := <-st.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename|fsnotify.Create) != 0 {
				st.mu.Lock()
				st.dirty = true
				st.mu.Unlock()
			}
		case err, ok := <-st.watcher.Errors:
			if !ok {
				return
			}
			logging.ConcurrencyWarn("sync tracker watch error: %v", err)
		}
	}
}

// InSync reports whether the workspace still matches the session's
// recorded lastSync revision. A revision-id mismatch always wins over the
// (coarser, advisory-only) fsnotify dirty flag.
func (st *SyncTracker) InSync() (bool, string) {
	current := st.oracle.CurrentRevision()
	if current != Unknown && current != st.lastSync {
		return false, current
	}

	st.mu.Lock()
	dirty := st.dirty
	st.mu.Unlock()
	if dirty && current == Unknown {
		// No revision id to compare (not a git workspace); fall back to the
		// fsnotify signal alone.
		return false, current
	}
	return true, current
}

// Resync records the current revision as the new baseline, clearing the
// dirty flag. Callers invoke this after a tool invocation completes
// successfully so the next invocation's comparison starts fresh.
func (st *SyncTracker) Resync() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.dirty = false
	st.lastSync = st.oracle.CurrentRevision()
}

// Close stops watching and releases the underlying fsnotify watcher.
func (st *SyncTracker) Close() error {
	return st.watcher.Close()
}
