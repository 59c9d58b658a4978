// Package staleness classifies every codebase into one of five signals
// by comparing registry mtimes, stored hashes, recomputed hashes, and
// the managed file set.
package staleness

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"orchestra/internal/config"
	"orchestra/internal/hashstore"
	"orchestra/internal/logging"
	"orchestra/internal/registry"
	"orchestra/internal/render"
)

// Signal classifies one codebase's state relative to its registry and
// hash store.
type Signal string

const (
	NeverSynced Signal = "never_synced"
	Stale       Signal = "stale"
	Modified    Signal = "modified"
	Orphan      Signal = "orphan"
	Current     Signal = "current"
)

// Result is the outcome of Check: the signal plus whatever it carries.
type Result struct {
	Signal Signal
	Reason string   // carried by Stale
	Paths  []string // carried by Modified and Orphan
}

// Check classifies a codebase's staleness signal. The project
// parameter is accepted for interface symmetry and is not otherwise
// consulted, since a codebase's managed set and hash store are
// self-contained.
func Check(home, project, codebase string) (Result, error) {
	timer := logging.StartTimer(logging.CategoryStaleness, "Check:"+codebase)
	defer timer.Stop()

	cb, err := registry.FindCodebase(home, codebase)
	if err != nil {
		return Result{}, err
	}

	store, err := hashstore.Load(home, codebase)
	if err != nil {
		return Result{}, err
	}

	if len(store.Files) == 0 {
		return Result{Signal: NeverSynced}, nil
	}

	cfg, err := config.Load(home)
	if err != nil {
		return Result{}, err
	}
	managed := managedPathSet(cfg)

	// Stale: any managed file missing on disk, or registry mtime newer
	// than the last successful sync.
	var missing []string
	for _, p := range managed {
		if _, err := os.Stat(filepath.Join(cb.Root, p)); os.IsNotExist(err) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return Result{Signal: Stale, Reason: "missing managed files: " + joinPaths(missing)}, nil
	}

	if cb.Path() != "" {
		info, err := os.Stat(cb.Path())
		if err == nil {
			regMTime := info.ModTime()
			synced := epochIfNil(store.SyncedAt)
			if regMTime.After(synced) {
				return Result{Signal: Stale, Reason: "registry modified after last sync"}, nil
			}
		}
	}

	// Modified: managed file exists but current hash differs from stored.
	var changed []string
	for _, p := range managed {
		storedHash, ok := store.Get(p)
		if !ok {
			continue // no stored hash: an Orphan candidate, not Modified.
		}
		data, err := os.ReadFile(filepath.Join(cb.Root, p))
		if err != nil {
			continue // already reported via Stale above if truly missing.
		}
		if hashstore.Hash(data) != storedHash {
			changed = append(changed, p)
		}
	}
	if len(changed) > 0 {
		sort.Strings(changed)
		return Result{Signal: Modified, Paths: changed}, nil
	}

	// Orphan: a managed-looking file with no stored hash, or a stored
	// hash entry referencing a path outside the managed set that still
	// exists on disk.
	var orphans []string
	managedSet := make(map[string]bool, len(managed))
	for _, p := range managed {
		managedSet[p] = true
		if _, ok := store.Get(p); !ok {
			if _, err := os.Stat(filepath.Join(cb.Root, p)); err == nil {
				orphans = append(orphans, p)
			}
		}
	}
	for _, e := range store.Iter() {
		if managedSet[e.Path] {
			continue
		}
		if _, err := os.Stat(filepath.Join(cb.Root, e.Path)); err == nil {
			orphans = append(orphans, e.Path)
		}
	}
	if len(orphans) > 0 {
		sort.Strings(orphans)
		return Result{Signal: Orphan, Paths: orphans}, nil
	}

	return Result{Signal: Current}, nil
}

// managedPathSet returns the managed path set for the agent kinds the
// config enables — the same set the renderer would produce, without
// actually rendering. The set is a pure function of the agent kinds,
// never of codebase content.
func managedPathSet(cfg *config.Config) []string {
	var out []string
	for _, k := range render.Enabled(cfg.Agents) {
		out = append(out, render.ManagedPaths(k)...)
	}
	return out
}

// epochIfNil returns the Unix epoch for a nil SyncedAt, so that a
// never-set timestamp always compares as older than any real mtime
// and clock skew cannot panic the check.
func epochIfNil(t *time.Time) time.Time {
	if t == nil {
		return time.Unix(0, 0).UTC()
	}
	return *t
}

func joinPaths(paths []string) string {
	sort.Strings(paths)
	out := ""
	for i, p := range paths {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
