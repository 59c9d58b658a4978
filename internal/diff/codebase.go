package diff

import (
	"os"
	"path/filepath"

	"orchestra/internal/config"
	"orchestra/internal/hashstore"
	"orchestra/internal/logging"
	"orchestra/internal/registry"
	"orchestra/internal/render"
)

// FileResult is one managed path's unified diff against the on-disk
// file.
type FileResult struct {
	Path        string
	UnifiedDiff string
}

// CodebaseResult is the full result of DiffCodebase: one FileResult
// per managed path whose diff is non-empty.
type CodebaseResult struct {
	Codebase string
	Files    []FileResult
}

// DiffCodebase renders the candidate output for name in memory and
// emits unified diffs against the on-disk files, forcing the rendered
// LastSynced field to nil so metadata-only changes never appear.
func DiffCodebase(name, home string) (*CodebaseResult, error) {
	timer := logging.StartTimer(logging.CategoryDiff, "DiffCodebase:"+name)
	defer timer.Stop()

	cb, err := registry.FindCodebase(home, name)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}

	ctx := render.BuildContext(cb, nil) // LastSynced forced nil
	renderer := render.NewRenderer(render.NewEngine(home))
	outputs, err := renderer.RenderAll(ctx, render.Enabled(cfg.Agents))
	if err != nil {
		return nil, err
	}

	result := &CodebaseResult{Codebase: name}
	for _, out := range outputs {
		target := filepath.Join(cb.Root, out.Path)
		onDisk, err := os.ReadFile(target)
		if err != nil {
			onDisk = nil // missing files are treated as empty
		}

		// The rendered candidate plays the "old" side and the on-disk
		// file plays the "new" side, so a manual edit shows as an
		// addition.
		rendered := string(hashstore.NormalizeLF(out.Data))
		disk := string(hashstore.NormalizeLF(onDisk))

		fd := ComputeDiff(out.Path, out.Path, rendered, disk)
		unified := Unified(fd)
		if unified == "" {
			continue
		}
		result.Files = append(result.Files, FileResult{Path: out.Path, UnifiedDiff: unified})
	}

	return result, nil
}
