package render

import (
	"orchestra/internal/logging"
)

// Output is one rendered managed path's bytes, paired with the
// AgentKind that produced it.
type Output struct {
	Kind AgentKind
	Path string
	Data []byte
}

// Renderer drives a full render-per-agent pass over a TemplateContext. It
// never touches the filesystem; writing is the writer package's job.
type Renderer struct {
	engine *Engine
}

// NewRenderer builds a Renderer backed by engine.
func NewRenderer(engine *Engine) *Renderer {
	return &Renderer{engine: engine}
}

// RenderAll iterates every enabled agent kind in canonical order and
// renders its managed paths, returning one Output per managed path.
func (r *Renderer) RenderAll(ctx TemplateContext, enabled []AgentKind) ([]Output, error) {
	timer := logging.StartTimer(logging.CategoryRender, "RenderAll")
	defer timer.Stop()

	var out []Output
	for _, kind := range orderedEnabled(enabled) {
		for _, spec := range templatesByKind[kind] {
			data, err := r.engine.Render(spec.template, ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, Output{Kind: kind, Path: spec.relPath, Data: data})
		}
	}
	return out, nil
}

// orderedEnabled returns enabled filtered to allKinds order, so callers
// passing an unordered slice still get deterministic output.
func orderedEnabled(enabled []AgentKind) []AgentKind {
	set := make(map[AgentKind]bool, len(enabled))
	for _, k := range enabled {
		set[k] = true
	}
	out := make([]AgentKind, 0, len(allKinds))
	for _, k := range allKinds {
		if set[k] {
			out = append(out, k)
		}
	}
	return out
}
