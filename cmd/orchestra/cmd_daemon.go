package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orchestra/internal/config"
	"orchestra/internal/daemon"
	"orchestra/internal/daemon/protocol"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the background sync daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the daemon in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt := daemon.New(home)
		if err := rt.Start(ctx); err != nil {
			return err
		}
		logger.Info("daemon running", zap.String("home", home))
		rt.Wait(ctx)
		logger.Info("daemon stopped")
		return nil
	},
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask a running daemon to shut down",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToDaemon(protocol.Request{Cmd: "stop"})
		if err != nil {
			return err
		}
		if !resp.OK {
			return fmt.Errorf("daemon refused stop: %s", resp.Error)
		}
		fmt.Println("daemon stopping")
		return nil
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := sendToDaemon(protocol.Request{Cmd: "status"})
		if err != nil {
			return err
		}
		if !resp.OK {
			return fmt.Errorf("daemon error: %s", resp.Error)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp.Data)
	},
}

var daemonInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Print the service definition for OS autostart",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := daemon.Service(home)
		fmt.Printf("label:       %s\n", spec.Label)
		fmt.Printf("exec:        %s\n", spec.ExecPath)
		fmt.Printf("args:        %v\n", spec.Args)
		fmt.Printf("working dir: %s\n", spec.WorkingDir)
		fmt.Printf("stdout:      %s\n", spec.StdoutPath)
		fmt.Printf("stderr:      %s\n", spec.StderrPath)
		fmt.Println("\nregister this with your service manager (launchd, systemd) to autostart")
		return nil
	},
}

var daemonUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Print the service label to remove from OS autostart",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := daemon.Service(home)
		fmt.Printf("remove the service labeled %q from your service manager\n", spec.Label)
		return nil
	},
}

var daemonLogsN int

var daemonLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the tail of the daemon log",
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := daemon.TailLogs(home, daemonLogsN)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			fmt.Println("no daemon log yet")
			return nil
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	},
}

// sendToDaemon performs one request against the daemon socket, retrying
// through the startup race per the configured attempt count and spacing.
func sendToDaemon(req protocol.Request) (protocol.Response, error) {
	cfg, err := config.Load(home)
	if err != nil {
		return protocol.Response{}, err
	}
	sock := cfg.Daemon.SocketPath
	if sock == "" {
		sock = filepath.Join(home, "daemon.sock")
	}
	return protocol.SendWithRetry(sock, req, cfg.Daemon.StartupRetryAttempts, cfg.Daemon.StartupRetrySpacing)
}

func init() {
	daemonLogsCmd.Flags().IntVarP(&daemonLogsN, "lines", "n", 50, "number of log lines to show")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonInstallCmd)
	daemonCmd.AddCommand(daemonUninstallCmd)
	daemonCmd.AddCommand(daemonLogsCmd)
}
