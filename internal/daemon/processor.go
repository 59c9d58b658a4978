package daemon

import (
	"context"
	"time"

	"github.com/google/uuid"

	"orchestra/internal/auditlog"
	"orchestra/internal/logging"
	"orchestra/internal/pipeline"
	"orchestra/internal/staleness"
)

// JobQueueCapacity bounds the sync job queue between the watcher,
// socket server, and the single-consumer processor.
const JobQueueCapacity = 64

// Processor drains sync jobs from a single channel, serializing every
// sync regardless of scope: jobs are drained in enqueue order, so no
// two sync runs overlap, for the same codebase or across codebases.
type Processor struct {
	home  string
	jobs  <-chan Job
	cache *RegistryCache
	audit *auditlog.Log
}

// NewProcessor builds a Processor that reads jobs from jobs and keeps
// cache fresh after each run. audit may be nil when the ledger is
// disabled.
func NewProcessor(home string, jobs <-chan Job, cache *RegistryCache, audit *auditlog.Log) *Processor {
	return &Processor{home: home, jobs: jobs, cache: cache, audit: audit}
}

// Run drains jobs until ctx is cancelled, at which point any job still
// awaiting a reply receives a cancellation error instead of hanging.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.drainOnShutdown()
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.process(job)
		}
	}
}

func (p *Processor) process(job Job) {
	id := uuid.NewString()
	start := time.Now()

	results := pipeline.Run(p.home, job.Scope, false)

	if err := p.cache.Refresh(); err != nil {
		logging.Get(logging.CategoryDaemon).Error("registry cache refresh failed: %v", err)
	}

	outcome := SyncOutcome{
		JobID:    id,
		Target:   targetLabel(job.Scope),
		Source:   job.Source,
		Duration: time.Since(start),
	}
	outcome.Codebases = len(results)
	for _, r := range results {
		outcome.Written += r.Written
		outcome.Unchanged += r.Unchanged
		if r.Err != nil {
			outcome.Errors = append(outcome.Errors, r.Codebase+": "+r.Err.Error())
		}
	}

	logging.Get(logging.CategoryDaemon).Info(
		"job %s (%s, source=%s) completed: codebases=%d written=%d unchanged=%d",
		id, outcome.Target, job.Source, outcome.Codebases, outcome.Written, outcome.Unchanged)

	if p.audit != nil {
		if err := p.audit.RecordSync(outcome.Target, results, outcome.Duration); err != nil {
			logging.Get(logging.CategoryDaemon).Warn("audit record failed: %v", err)
		}
	}

	if job.Source == "watcher" {
		p.scanStaleness()
	}

	if job.Reply != nil {
		job.Reply <- outcome
	}
}

// scanStaleness runs a visibility pass across every codebase after a
// watcher-driven sync, so the per-category log always carries a fresh
// signal for each codebase.
func (p *Processor) scanStaleness() {
	for _, name := range p.cache.Names() {
		res, err := staleness.Check(p.home, "", name)
		if err != nil {
			logging.Get(logging.CategoryStaleness).Warn("staleness scan failed for %s: %v", name, err)
			continue
		}
		logging.Get(logging.CategoryStaleness).Debug("%s: %s", name, res.Signal)
	}
}

func (p *Processor) drainOnShutdown() {
	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			if job.Reply != nil {
				job.Reply <- SyncOutcome{Target: targetLabel(job.Scope), Source: job.Source, Errors: []string{"daemon shutting down"}}
			}
		default:
			return
		}
	}
}

func targetLabel(scope pipeline.Scope) string {
	if name, ok := codebaseOf(scope); ok {
		return name
	}
	return "all"
}

// codebaseOf extracts the single codebase name from scope if it is not
// an All scope. pipeline.Scope's fields are unexported, so this relies
// on pipeline exposing a small accessor.
func codebaseOf(scope pipeline.Scope) (string, bool) {
	return pipeline.ScopeCodebase(scope)
}
