// Package pipeline is the single shared sync entry point: both the CLI
// and the daemon call Run, so there is never a second implementation
// of sync.
package pipeline

import (
	"orchestra/internal/writer"
)

// Scope selects which codebases a pipeline run covers.
type Scope struct {
	all      bool
	codebase string
}

// All selects every codebase in the registry.
func All() Scope { return Scope{all: true} }

// ForCodebase selects a single named codebase.
func ForCodebase(name string) Scope { return Scope{codebase: name} }

// ScopeCodebase returns the codebase name scope targets and whether it
// is a single-codebase scope (false for an All scope). Exposed so the
// daemon can label jobs and outcomes without exporting Scope's fields.
func ScopeCodebase(scope Scope) (string, bool) {
	if scope.all {
		return "", false
	}
	return scope.codebase, true
}

// Run delegates to writer.SyncAll or wraps a single-codebase sync into
// a one-element slice.
//
// The All scope syncs codebases one at a time in registry (name) order:
// sync is serialized across codebases as well as within one, so no two
// sync runs ever overlap. A failure in one codebase is carried in its
// own SyncResult.Err and never blocks the rest.
func Run(home string, scope Scope, dryRun bool) []writer.SyncResult {
	if !scope.all {
		return []writer.SyncResult{writer.SyncCodebase(home, scope.codebase, dryRun)}
	}
	return writer.SyncAll(home, dryRun)
}
