package daemon

import (
	"context"
	"sync"
	"time"

	"orchestra/internal/auditlog"
	"orchestra/internal/config"
	"orchestra/internal/logging"
)

// Runtime owns the daemon's four concurrent tasks — watcher, sync
// processor, socket server, and shutdown listener — plus the shared
// registry cache.
type Runtime struct {
	home   string
	cache  *RegistryCache
	jobs   chan Job
	audit  *auditlog.Log
	cancel context.CancelFunc

	wg sync.WaitGroup
}

// New builds a Runtime rooted at home. Call Start to bring the tasks up.
func New(home string) *Runtime {
	return &Runtime{
		home:  home,
		cache: NewRegistryCache(home),
		jobs:  make(chan Job, JobQueueCapacity),
	}
}

// Start brings up the watcher, sync processor, and socket server, and
// returns once the socket is bound and accepting connections. Shutdown
// is cooperative: every task selects over its primary input and ctx's
// cancellation.
func (r *Runtime) Start(ctx context.Context) error {
	if err := r.cache.Refresh(); err != nil {
		logging.Get(logging.CategoryDaemon).Warn("initial registry load failed: %v", err)
	}

	cfg, err := config.Load(r.home)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	watcher, err := NewWatcher(r.home, r.jobs, cfg.Daemon.DebounceWindow)
	if err != nil {
		cancel()
		return err
	}
	if err := watcher.Start(runCtx); err != nil {
		cancel()
		return err
	}

	if cfg.Audit.Enabled {
		audit, err := auditlog.Open(r.home)
		if err != nil {
			logging.Get(logging.CategoryDaemon).Warn("audit ledger unavailable: %v", err)
		} else {
			r.audit = audit
		}
	}

	processor := NewProcessor(r.home, r.jobs, r.cache, r.audit)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		processor.Run(runCtx)
	}()

	server := NewServer(r.home, cfg.Daemon.SocketPath, r.cache, r.jobs, r.Stop)
	ln, err := server.Listen()
	if err != nil {
		cancel()
		return err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		server.Serve(runCtx, ln)
	}()

	logging.Get(logging.CategoryDaemon).Info("daemon started, socket=%s", server.SocketPath())
	return nil
}

// Stop triggers the shutdown broadcast and waits for the sync processor
// and the socket server to join. The watcher's event loop is not
// joined; it closes its filesystem watcher and returns on its own once
// the context is cancelled.
func (r *Runtime) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	if r.audit != nil {
		r.audit.Close()
		r.audit = nil
	}
}

// Wait blocks until ctx is cancelled (an OS interrupt, typically, wired
// by the CLI's daemon-start command) and then stops the runtime.
func (r *Runtime) Wait(ctx context.Context) {
	<-ctx.Done()
	r.Stop()
}

// awaitShutdownWithTimeout is a test seam letting callers bound how long
// they wait for Stop to finish joining every task.
func (r *Runtime) awaitShutdownWithTimeout(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
