package render

import (
	"time"

	"orchestra/internal/registry"
)

// TaskView is the render-facing projection of a registry.Task.
type TaskView struct {
	ID            string
	Title         string
	Status        string
	BlockedReason string
	Subtasks      []SubtaskView
}

// SubtaskView is the render-facing projection of a registry.Subtask.
type SubtaskView struct {
	Title string
	Done  bool
}

// SkillView, SubagentView, and ConventionView are render-facing
// projections of their registry counterparts.
type SkillView struct {
	ID, Name, Body string
}

type SubagentView struct {
	ID, Name, Body string
}

type ConventionView struct {
	Name, Body string
}

// TemplateContext is the immutable input every template renders from.
// It excludes done tasks and is built fresh per render
// pass so that mutating it cannot leak back into the registry.
type TemplateContext struct {
	Codebase    string
	Project     string
	Type        string
	Language    string
	Framework   string
	Root        string
	Tasks       []TaskView
	Skills      []SkillView
	Subagents   []SubagentView
	Conventions []ConventionView

	// LastSynced is informational only. The diff engine forces this to
	// nil so that metadata-only changes never appear in a diff.
	LastSynced *time.Time
}

// BuildContext derives a TemplateContext from a codebase snapshot.
// Done tasks never reach a template.
func BuildContext(cb *registry.Codebase, lastSynced *time.Time) TemplateContext {
	ctx := TemplateContext{
		Codebase:   cb.Name,
		Project:    cb.Project,
		Type:       string(cb.Type),
		Language:   cb.Language,
		Framework:  cb.Framework,
		Root:       cb.Root,
		LastSynced: lastSynced,
	}

	for _, t := range cb.ActiveTasks() {
		tv := TaskView{
			ID:            t.ID,
			Title:         t.Title,
			Status:        string(t.Status),
			BlockedReason: t.BlockedReason,
		}
		for _, st := range t.Subtasks {
			tv.Subtasks = append(tv.Subtasks, SubtaskView{Title: st.Title, Done: st.Done})
		}
		ctx.Tasks = append(ctx.Tasks, tv)
	}

	for _, s := range cb.Skills {
		ctx.Skills = append(ctx.Skills, SkillView{ID: s.ID, Name: s.Name, Body: s.Body})
	}
	for _, s := range cb.Subagents {
		ctx.Subagents = append(ctx.Subagents, SubagentView{ID: s.ID, Name: s.Name, Body: s.Body})
	}
	for _, c := range cb.Conventions {
		ctx.Conventions = append(ctx.Conventions, ConventionView{Name: c.Name, Body: c.Body})
	}

	return ctx
}
