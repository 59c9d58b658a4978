package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orchestra/internal/pipeline"
)

var (
	syncAll    bool
	syncDryRun bool
)

// syncCmd runs the render-hash-write pipeline for one codebase or all of
// them. The daemon uses the same pipeline entry point, so the results
// are identical whichever way a sync is triggered.
var syncCmd = &cobra.Command{
	Use:   "sync [<name>]",
	Short: "Render agent files into codebases",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var scope pipeline.Scope
		switch {
		case len(args) == 1:
			scope = pipeline.ForCodebase(args[0])
		case syncAll:
			scope = pipeline.All()
		default:
			return errors.New("name a codebase or pass --all")
		}

		results := pipeline.Run(home, scope, syncDryRun)

		var failed bool
		for _, r := range results {
			if r.Err != nil {
				failed = true
				fmt.Printf("%s: sync failed: %v\n", r.Codebase, r.Err)
				continue
			}
			verb := "synced"
			if r.DryRun {
				verb = "would sync"
			}
			fmt.Printf("%s: %s, written=%d unchanged=%d\n", r.Codebase, verb, r.Written, r.Unchanged)
		}

		logger.Debug("sync complete", zap.Int("codebases", len(results)), zap.Bool("dry_run", syncDryRun))
		if failed {
			return errors.New("one or more codebases failed to sync")
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "sync every codebase")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "report intended writes without touching disk")
}
