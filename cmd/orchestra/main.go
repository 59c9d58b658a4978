// Package main implements the orchestra CLI.
//
// The command implementations are split across cmd_*.go files:
//
//   - cmd_init.go    - initCmd, codebase registration
//   - cmd_project.go - projectCmd, project list/add
//   - cmd_sync.go    - syncCmd
//   - cmd_status.go  - statusCmd, staleness table and JSON output
//   - cmd_diff.go    - diffCmd
//   - cmd_daemon.go  - daemonCmd, daemon start/stop/status/install/uninstall/logs
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"orchestra/internal/logging"
)

var (
	// Global flags
	verbose bool
	home    string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "orchestra",
	Short: "orchestra - deterministic multi-agent configuration synchronizer",
	Long: `Orchestra keeps per-coding-assistant configuration files in sync with a
central YAML registry. The registry describes your codebases, tasks,
skills, subagents, and conventions; orchestra renders them into each
codebase and reports drift.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if home == "" {
			home = defaultHome()
		}
		if err := logging.Initialize(home); err != nil {
			logger.Warn("file logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// defaultHome is <user home>/.orchestra, falling back to a relative
// .orchestra when the user's home directory cannot be resolved.
func defaultHome() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ".orchestra"
	}
	return filepath.Join(userHome, ".orchestra")
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&home, "home", "", "orchestra home directory (default ~/.orchestra)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(daemonCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
