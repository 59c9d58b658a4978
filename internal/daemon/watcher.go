package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"orchestra/internal/logging"
	"orchestra/internal/pipeline"
)

// Job is one enqueued sync request.
type Job struct {
	Scope  pipeline.Scope
	Source string // "watcher" or "client"
	Reply  chan SyncOutcome
}

// SyncOutcome is what the processor sends back after draining a Job.
type SyncOutcome struct {
	JobID     string
	Target    string
	Source    string
	Codebases int
	Written   int
	Unchanged int
	Duration  time.Duration
	Errors    []string
}

// Watcher recursively watches <home>/projects for registry changes,
// debounces rapid edits per path, and enqueues sync jobs.
type Watcher struct {
	home        string
	fsw         *fsnotify.Watcher
	jobs        chan<- Job
	debounceDur time.Duration

	mu           sync.Mutex
	lastAccepted map[string]time.Time
}

// NewWatcher creates a Watcher rooted at <home>/projects, publishing
// accepted events as Jobs on jobs.
func NewWatcher(home string, jobs chan<- Job, debounceDur time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		home:         home,
		fsw:          fsw,
		jobs:         jobs,
		debounceDur:  debounceDur,
		lastAccepted: make(map[string]time.Time),
	}, nil
}

// projectsRoot is <home>/projects, the tree this watcher observes.
func (w *Watcher) projectsRoot() string {
	return filepath.Join(w.home, "projects")
}

// Start registers every existing directory under the projects root
// non-recursively (fsnotify has no native recursive watch) and begins
// the event loop. It returns once initial registration completes; the
// loop itself runs until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	root := w.projectsRoot()
	if err := os.MkdirAll(root, 0700); err != nil {
		return err
	}
	if err := w.addTree(root); err != nil {
		logging.Get(logging.CategoryWatcher).Warn("initial watch registration failed: %v", err)
	}

	go w.run(ctx)
	return nil
}

// addTree registers dir and every subdirectory under it, canonicalizing
// each path before registration.
func (w *Watcher) addTree(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logging.Get(logging.CategoryWatcher).Warn("walk %s: %v", path, err)
			return nil // filesystem-event errors are logged, watcher continues
		}
		if !info.IsDir() {
			return nil
		}
		canon, err := filepath.Abs(path)
		if err != nil {
			return nil
		}
		if err := w.fsw.Add(canon); err != nil {
			logging.Get(logging.CategoryWatcher).Warn("watch %s: %v", canon, err)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			logging.Get(logging.CategoryWatcher).Info("watcher stopping")
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatcher).Error("watch error: %v", err)
		}
	}
}

// handle filters an event down to create/modify on a .yaml file under
// the projects root, applies debounce, and enqueues a mapped sync job.
// Anything that is not a .yaml file, or that resolves outside the
// projects root, is rejected before debounce even runs.
func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !strings.EqualFold(filepath.Ext(event.Name), ".yaml") {
		return
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	root, err := filepath.Abs(w.projectsRoot())
	if err != nil {
		return
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}

	if !w.accept(abs) {
		return
	}

	scope := scopeForPath(abs)
	logging.Get(logging.CategoryWatcher).Info("accepted event for %s -> scope %v", abs, scope)

	job := Job{Scope: scope, Source: "watcher", Reply: make(chan SyncOutcome, 1)}
	select {
	case w.jobs <- job:
	default:
		logging.Get(logging.CategoryWatcher).Warn("sync queue full, dropping job for %s", abs)
	}
}

// accept applies the debounce window: events within debounceDur of the
// last accepted event for the same path are dropped, not buffered. It
// also opportunistically prunes entries older than 30s to bound memory.
func (w *Watcher) accept(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if last, ok := w.lastAccepted[path]; ok && now.Sub(last) < w.debounceDur {
		return false
	}
	w.lastAccepted[path] = now

	for p, t := range w.lastAccepted {
		if now.Sub(t) > 30*time.Second {
			delete(w.lastAccepted, p)
		}
	}
	return true
}

// scopeForPath maps project.yaml to an all-codebases sync and
// <stem>.yaml to a sync of the codebase named by the stem.
func scopeForPath(path string) pipeline.Scope {
	base := filepath.Base(path)
	if base == "project.yaml" {
		return pipeline.All()
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return pipeline.ForCodebase(stem)
}
