package daemon

import "orchestra/internal/pipeline"

// scopeFromRequest maps a socket request's optional codebase field to a
// pipeline.Scope: an empty codebase field means all codebases.
func scopeFromRequest(codebase string) pipeline.Scope {
	if codebase == "" {
		return pipeline.All()
	}
	return pipeline.ForCodebase(codebase)
}
