package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"orchestra/internal/hashstore"
	"orchestra/internal/registry"
	"orchestra/internal/staleness"
)

var (
	statusProject string
	statusJSON    bool
)

// statusSummary and statusRow form the stable JSON schema emitted by
// status --json. Key names are part of the CLI's contract; do not
// rename them.
type statusSummary struct {
	Projects  int `json:"projects"`
	Codebases int `json:"codebases"`
	Stale     int `json:"stale"`
}

type statusRow struct {
	Project     string   `json:"project"`
	Codebase    string   `json:"codebase"`
	Status      string   `json:"status"`
	Detail      string   `json:"detail"`
	LastSyncAge string   `json:"last_sync_age"`
	LastSyncAt  string   `json:"last_sync_at"`
	ActiveTasks int      `json:"active_tasks"`
	Skills      int      `json:"skills"`
	Subagents   int      `json:"subagents"`
	Conventions int      `json:"conventions"`
	Files       []string `json:"files,omitempty"`
}

type statusReport struct {
	Summary   statusSummary `json:"summary"`
	Codebases []statusRow   `json:"codebases"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show each codebase's staleness signal",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := buildStatusReport(home, statusProject)
		if err != nil {
			return err
		}

		if statusJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		if len(report.Codebases) == 0 {
			fmt.Println("no codebases registered")
			return nil
		}
		for _, row := range report.Codebases {
			line := fmt.Sprintf("%-16s %-16s %-12s", row.Project, row.Codebase, row.Status)
			if row.Detail != "" {
				line += " " + row.Detail
			}
			if len(row.Files) > 0 {
				line += " [" + strings.Join(row.Files, ", ") + "]"
			}
			fmt.Println(line)
		}
		fmt.Printf("%d projects, %d codebases, %d needing attention\n",
			report.Summary.Projects, report.Summary.Codebases, report.Summary.Stale)
		return nil
	},
}

// buildStatusReport assembles the status report. A failure checking one
// codebase becomes an error row; it never aborts the overall report.
func buildStatusReport(home, projectFilter string) (*statusReport, error) {
	cbs, err := registry.ListCodebases(home)
	if err != nil {
		return nil, err
	}

	report := &statusReport{Codebases: []statusRow{}}
	projects := make(map[string]bool)

	for _, cb := range cbs {
		if projectFilter != "" && cb.Project != projectFilter {
			continue
		}
		projects[cb.Project] = true

		summary := cb.Summary()
		row := statusRow{
			Project:     cb.Project,
			Codebase:    cb.Name,
			ActiveTasks: summary.ActiveTasks,
			Skills:      summary.Skills,
			Subagents:   summary.Subagents,
			Conventions: summary.Conventions,
		}

		res, err := staleness.Check(home, cb.Project, cb.Name)
		if err != nil {
			row.Status = "error"
			row.Detail = err.Error()
		} else {
			row.Status = string(res.Signal)
			row.Detail = res.Reason
			row.Files = res.Paths
		}

		if store, err := hashstore.Load(home, cb.Name); err == nil && store.SyncedAt != nil {
			row.LastSyncAt = store.SyncedAt.UTC().Format(time.RFC3339)
			row.LastSyncAge = humanAge(time.Since(*store.SyncedAt))
		}

		if row.Status != string(staleness.Current) && row.Status != "error" {
			report.Summary.Stale++
		}
		report.Codebases = append(report.Codebases, row)
	}

	report.Summary.Projects = len(projects)
	report.Summary.Codebases = len(report.Codebases)
	return report, nil
}

// humanAge renders a duration the way a status table wants it: coarse,
// never negative.
func humanAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func init() {
	statusCmd.Flags().StringVar(&statusProject, "project", "", "limit to one project")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "emit the report as JSON")
}
