package hooks

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"intentguard/internal/logging"
	"intentguard/internal/vcs"
)

// ConcurrencyGuard implements spec §4.6 stage 4: a per-path advisory lock
// held only for the duration of a single invocation, plus a comparison of
// the session's recorded last-sync revision against the workspace's current
// revision. Grounded in the teacher's golang.org/x/sync usage
// (internal/campaign/intelligence_gatherer.go's errgroup) generalized from
// errgroup to the sibling semaphore package for exclusive per-path leases.
type ConcurrencyGuard struct {
	mu      sync.Mutex
	paths   map[string]*semaphore.Weighted
	sync    *vcs.SyncTracker
	timeout time.Duration
}

// NewConcurrencyGuard returns a guard backed by tracker, with lock
// acquisition bounded by timeout.
func NewConcurrencyGuard(tracker *vcs.SyncTracker, timeout time.Duration) *ConcurrencyGuard {
	return &ConcurrencyGuard{
		paths:   make(map[string]*semaphore.Weighted),
		sync:    tracker,
		timeout: timeout,
	}
}

func (g *ConcurrencyGuard) pathSemaphore(path string) *semaphore.Weighted {
	g.mu.Lock()
	defer g.mu.Unlock()

	sem, ok := g.paths[path]
	if !ok {
		sem = semaphore.NewWeighted(1)
		g.paths[path] = sem
	}
	return sem
}

// Acquire takes the advisory lock for path and checks the workspace is
// still in sync with the session's last-known revision. The returned
// release function must be deferred by the caller regardless of whether
// Acquire itself failed to acquire (in which case release is a no-op).
func (g *ConcurrencyGuard) Acquire(ctx context.Context, path string) (release func(), err error) {
	release = func() {}

	// A tool call with no target path (e.g. a non-file action) has nothing
	// to lease exclusively; only the workspace-sync comparison still
	// applies to it.
	if path != "" {
		sem := g.pathSemaphore(path)

		acquireCtx := ctx
		var cancel context.CancelFunc
		if g.timeout > 0 {
			acquireCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}

		if err := sem.Acquire(acquireCtx, 1); err != nil {
			logging.ConcurrencyWarn("could not acquire lock for %s: %v", path, err)
			return release, concurrencyConflict(vcs.Unknown)
		}
		release = func() { sem.Release(1) }
	}

	if g.sync != nil {
		if inSync, current := g.sync.InSync(); !inSync {
			release()
			return func() {}, concurrencyConflict(current)
		}
	}

	return release, nil
}

// Resync tells the sync tracker that the workspace's current state has now
// been accounted for (a tool invocation just completed through the
// pipeline). Without this, a non-git workspace's fsnotify-only dirty flag
// would latch permanently after the first write and every later Acquire
// would report a conflict even with no real external change.
func (g *ConcurrencyGuard) Resync() {
	if g.sync != nil {
		g.sync.Resync()
	}
}
