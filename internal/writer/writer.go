// Package writer implements the render-hash-write pipeline:
// it renders every managed path for a codebase, hashes the normalized
// bytes, and atomically writes only what changed.
package writer

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"orchestra/internal/config"
	"orchestra/internal/hashstore"
	"orchestra/internal/logging"
	"orchestra/internal/orcherr"
	"orchestra/internal/registry"
	"orchestra/internal/render"
)

// SyncResult reports the outcome of one codebase's sync.
type SyncResult struct {
	Codebase  string
	Written   int
	Unchanged int
	Targets   []string
	DryRun    bool
	Err       error
}

// SyncCodebase runs the full render-hash-write sequence for one
// codebase. With dryRun set it records intended writes without
// touching disk.
func SyncCodebase(home, name string, dryRun bool) SyncResult {
	timer := logging.StartTimer(logging.CategoryWriter, "SyncCodebase:"+name)
	defer timer.Stop()

	result := SyncResult{Codebase: name, DryRun: dryRun}
	startedAt := time.Now().UTC()

	cb, err := registry.FindCodebase(home, name)
	if err != nil {
		result.Err = err
		return result
	}

	cfg, err := config.Load(home)
	if err != nil {
		result.Err = err
		return result
	}

	store, err := hashstore.Load(home, name)
	if err != nil {
		result.Err = err
		return result
	}

	ctx := render.BuildContext(cb, nil)
	engine := render.NewEngine(home)
	renderer := render.NewRenderer(engine)
	enabled := render.Enabled(cfg.Agents)

	outputs, err := renderer.RenderAll(ctx, enabled)
	if err != nil {
		result.Err = err
		return result
	}

	for _, out := range outputs {
		target := filepath.Join(cb.Root, out.Path)
		if err := checkWithinRoot(cb.Root, target); err != nil {
			result.Err = err
			return result
		}

		normalized := hashstore.NormalizeLF(out.Data)
		newHash := hashstore.Hash(normalized)
		storedHash, hadStored := store.Get(out.Path)

		unchanged := hadStored && storedHash == newHash
		if unchanged {
			if onDiskMatches(target, newHash) {
				result.Unchanged++
				result.Targets = append(result.Targets, out.Path)
				continue
			}
		}

		result.Targets = append(result.Targets, out.Path)
		if dryRun {
			result.Written++
			continue
		}

		if err := writeAtomic(target, normalized); err != nil {
			result.Err = orcherr.WrapPath(orcherr.KindSync, target, err)
			return result
		}
		store.Set(out.Path, newHash)
		result.Written++
	}

	if dryRun {
		return result
	}

	store.SyncedAt = &startedAt
	if err := hashstore.Save(home, name, store); err != nil {
		result.Err = err
		return result
	}

	logging.Get(logging.CategoryWriter).Info(
		"synced %s: written=%d unchanged=%d", name, result.Written, result.Unchanged)
	return result
}

// SyncAll syncs every codebase in the registry, one result per
// codebase. A failure in one codebase never blocks the others.
func SyncAll(home string, dryRun bool) []SyncResult {
	cbs, err := registry.ListCodebases(home)
	if err != nil {
		return []SyncResult{{Err: err}}
	}

	results := make([]SyncResult, 0, len(cbs))
	for _, cb := range cbs {
		results = append(results, SyncCodebase(home, cb.Name, dryRun))
	}
	return results
}

// checkWithinRoot rejects any rendered path that would escape the
// codebase root.
func checkWithinRoot(root, target string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return orcherr.WrapPath(orcherr.KindIO, root, err)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return orcherr.WrapPath(orcherr.KindIO, target, err)
	}
	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return orcherr.Fmt(orcherr.KindSync, "managed path %s escapes codebase root %s", target, root)
	}
	return nil
}

// onDiskMatches reports whether the file at target exists and its
// LF-normalized content hashes to wantHash.
func onDiskMatches(target, wantHash string) bool {
	data, err := os.ReadFile(target)
	if err != nil {
		return false
	}
	return hashstore.Hash(data) == wantHash
}

// writeAtomic ensures target's parent directories exist, then writes
// data via temp-file/fsync/rename.
func writeAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp := target + ".orchestra.tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
