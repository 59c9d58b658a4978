package render

// AgentKind is the closed set of supported coding-assistant platforms.
// Adding an agent is a new AgentKind plus its entry in allKinds and
// templatesByKind; the writer, staleness engine, and diff engine are
// unchanged.
type AgentKind string

const (
	KindClaude AgentKind = "claude"
	KindCodex  AgentKind = "codex"
	KindAgent  AgentKind = "agent" // generic .agent/ tree other assistants read
)

// allKinds is the enumeration order every pass over agent kinds uses,
// so that renderer output and managed-path ordering are deterministic.
var allKinds = []AgentKind{KindClaude, KindCodex, KindAgent}

// templateSpec binds one managed relative output path to the named
// template that renders it.
type templateSpec struct {
	relPath  string
	template string
}

// templatesByKind is the pure, content-independent mapping from agent
// kind to its managed path set. It depends only on the kind, never on
// codebase content.
var templatesByKind = map[AgentKind][]templateSpec{
	KindClaude: {
		{relPath: "CLAUDE.md", template: "claude_md.tmpl"},
		{relPath: ".claude/skills.md", template: "claude_skills.tmpl"},
		{relPath: ".claude/agents.md", template: "claude_subagents.tmpl"},
	},
	KindCodex: {
		{relPath: "AGENTS.md", template: "codex_agents.tmpl"},
		{relPath: ".codex/skills.md", template: "codex_skills.tmpl"},
	},
	KindAgent: {
		{relPath: ".agent/context.md", template: "generic_context.tmpl"},
		{relPath: ".agent/skills.md", template: "generic_skills.tmpl"},
	},
}

// ManagedPaths returns the relative output paths a kind renders,
// independent of any codebase's content.
func ManagedPaths(kind AgentKind) []string {
	specs := templatesByKind[kind]
	paths := make([]string, len(specs))
	for i, s := range specs {
		paths[i] = s.relPath
	}
	return paths
}

// AllManagedPaths returns the full managed path set across every
// supported agent kind, in the canonical enumeration order.
func AllManagedPaths() []string {
	var out []string
	for _, k := range allKinds {
		out = append(out, ManagedPaths(k)...)
	}
	return out
}

// Enabled filters allKinds down to the subset named in enabledNames.
// An empty enabledNames means every supported kind is enabled.
func Enabled(enabledNames []string) []AgentKind {
	if len(enabledNames) == 0 {
		return allKinds
	}
	set := make(map[string]bool, len(enabledNames))
	for _, n := range enabledNames {
		set[n] = true
	}
	var out []AgentKind
	for _, k := range allKinds {
		if set[string(k)] {
			out = append(out, k)
		}
	}
	return out
}
