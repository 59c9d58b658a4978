package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"orchestra/internal/diff"
)

// diffCmd prints unified diffs between what a sync would render and what
// is on disk. A fully converged codebase prints a single
// "<name>: no differences" line.
var diffCmd = &cobra.Command{
	Use:   "diff <name>",
	Short: "Show rendered-vs-on-disk differences for a codebase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := diff.DiffCodebase(args[0], home)
		if err != nil {
			return err
		}
		if len(result.Files) == 0 {
			fmt.Printf("%s: no differences\n", result.Codebase)
			return nil
		}
		for _, f := range result.Files {
			fmt.Print(f.UnifiedDiff)
		}
		return nil
	},
}
