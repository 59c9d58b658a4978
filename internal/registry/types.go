// Package registry loads and persists Orchestra's YAML registry: the
// user's codebases, projects, and their subordinate tasks, skills,
// subagents, and conventions.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// CodebaseType is the closed set of codebase kinds.
type CodebaseType string

const (
	TypeBackend  CodebaseType = "backend"
	TypeFrontend CodebaseType = "frontend"
	TypeMobile   CodebaseType = "mobile"
	TypeML       CodebaseType = "ml"
)

// ValidCodebaseType reports whether t is one of the closed set.
func ValidCodebaseType(t CodebaseType) bool {
	switch t {
	case TypeBackend, TypeFrontend, TypeMobile, TypeML:
		return true
	}
	return false
}

// TaskStatus is the closed set of task states.
type TaskStatus string

const (
	StatusOpen       TaskStatus = "open"
	StatusInProgress TaskStatus = "in_progress"
	StatusBlocked    TaskStatus = "blocked"
	StatusDone       TaskStatus = "done"
)

// Subtask is a title/done pair nested under a Task.
type Subtask struct {
	Title string `yaml:"title"`
	Done  bool   `yaml:"done"`
}

// Task carries a stable id, title, status, and optional subtasks.
// Only non-done tasks participate in render context.
type Task struct {
	ID            string     `yaml:"id"`
	Title         string     `yaml:"title"`
	Status        TaskStatus `yaml:"status"`
	BlockedReason string     `yaml:"blocked_reason,omitempty"`
	Subtasks      []Subtask  `yaml:"subtasks,omitempty"`
}

// Skill is a named, textual entry identified by id.
type Skill struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Body string `yaml:"body"`
}

// Subagent is a named, textual entry identified by id.
type Subagent struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Body string `yaml:"body"`
}

// Convention is a named, textual entry identified by the hash of its
// text (see Convention.Hash).
type Convention struct {
	Name string `yaml:"name"`
	Body string `yaml:"body"`
}

// Hash returns the convention's identity: the hex SHA-256 of its body.
func (c Convention) Hash() string {
	sum := sha256.Sum256([]byte(c.Body))
	return hex.EncodeToString(sum[:])
}

// Codebase is the unit of synchronization.
type Codebase struct {
	Name        string       `yaml:"name"`
	Project     string       `yaml:"project"`
	Root        string       `yaml:"root"`
	Type        CodebaseType `yaml:"type"`
	Language    string       `yaml:"language,omitempty"`
	Framework   string       `yaml:"framework,omitempty"`
	Tasks       []Task       `yaml:"tasks,omitempty"`
	Skills      []Skill      `yaml:"skills,omitempty"`
	Subagents   []Subagent   `yaml:"subagents,omitempty"`
	Conventions []Convention `yaml:"conventions,omitempty"`

	// path is the on-disk location this codebase was loaded from; it is
	// not persisted and is populated by the store on load.
	path string `yaml:"-"`
}

// Path returns the registry file this codebase was loaded from, or
// empty if it has never been saved.
func (c *Codebase) Path() string { return c.path }

// ActiveTasks returns the subset of Tasks whose status is not done,
// preserving order. This is the slice that flows into render context.
func (c *Codebase) ActiveTasks() []Task {
	active := make([]Task, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		if t.Status != StatusDone {
			active = append(active, t)
		}
	}
	return active
}

// CodebaseSummary is the per-codebase rollup shared by the render
// context builder and the status report.
type CodebaseSummary struct {
	ActiveTasks int
	Skills      int
	Subagents   int
	Conventions int
}

// Summary counts a codebase's subordinate entities, with done tasks
// excluded the same way render context excludes them.
func (c *Codebase) Summary() CodebaseSummary {
	return CodebaseSummary{
		ActiveTasks: len(c.ActiveTasks()),
		Skills:      len(c.Skills),
		Subagents:   len(c.Subagents),
		Conventions: len(c.Conventions),
	}
}

// Project is a logical grouping of codebases, identified by name.
type Project struct {
	Name      string   `yaml:"name"`
	Codebases []string `yaml:"codebases,omitempty"`
}

// Registry is the full in-memory model loaded from the YAML tree rooted
// at <home>/projects.
type Registry struct {
	Projects  map[string]*Project
	Codebases map[string]*Codebase
}

// LoadedAt is informational metadata about a load, not part of the
// persisted model.
type LoadedAt struct {
	Time time.Time
}

func newRegistry() *Registry {
	return &Registry{
		Projects:  make(map[string]*Project),
		Codebases: make(map[string]*Codebase),
	}
}
