package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orchestra/internal/registry"
)

var (
	initProject string
	initType    string
)

// initCmd registers a codebase in the registry. The codebase name is the
// base name of its root directory.
var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Register a codebase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve %s: %w", args[0], err)
		}

		cbType := registry.CodebaseType(initType)
		if !registry.ValidCodebaseType(cbType) {
			return fmt.Errorf("invalid type %q (want backend, frontend, mobile, or ml)", initType)
		}

		cb := &registry.Codebase{
			Name:    filepath.Base(root),
			Project: initProject,
			Root:    root,
			Type:    cbType,
		}
		if err := registry.SaveCodebase(home, cb); err != nil {
			return err
		}

		logger.Info("codebase registered",
			zap.String("codebase", cb.Name),
			zap.String("project", cb.Project),
			zap.String("root", cb.Root))
		fmt.Printf("registered %s (project %s, type %s)\n", cb.Name, cb.Project, cb.Type)
		fmt.Printf("run 'orchestra sync %s' to generate agent files\n", cb.Name)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initProject, "project", "default", "project the codebase belongs to")
	initCmd.Flags().StringVar(&initType, "type", "backend", "codebase type: backend, frontend, mobile, ml")
}
