package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"orchestra/internal/registry"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects and their codebases",
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := registry.ListProjects(home)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("no projects registered")
			return nil
		}
		for _, p := range projects {
			fmt.Printf("%s (%d codebases)\n", p.Name, len(p.Codebases))
			for _, cb := range p.Codebases {
				fmt.Printf("  %s\n", cb)
			}
		}
		return nil
	},
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an empty project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proj := &registry.Project{Name: args[0]}
		if err := registry.SaveProject(home, proj); err != nil {
			return err
		}
		fmt.Printf("created project %s\n", proj.Name)
		return nil
	},
}

func init() {
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectAddCmd)
}
