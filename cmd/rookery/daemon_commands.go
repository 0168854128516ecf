package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rookery/internal/daemonctl"
	"rookery/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the rookery daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonctl.DaemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonctl.LaunchOptions{ConfigPath: ctx.configPath()},
				10*time.Second,
			)
			if err != nil {
				return err
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the rookery daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.Stop(ctx.socketPath(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and job status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				runningKind := statusError
				runningText := "stopped"
				if resp.Status.Running {
					runningKind = statusOK
					runningText = fmt.Sprintf("pid %d", resp.Status.PID)
				}
				fmt.Fprintln(stdout, renderStatusLine("Running", runningKind, runningText, colorize))
				fmt.Fprintln(stdout, renderStatusLine("User", statusInfo, resp.Status.User, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, resp.Status.DatabasePath, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Log file", statusInfo, resp.LogPath, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Games", statusInfo, fmt.Sprintf("%d catalogued", resp.Status.GameCount), colorize))
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Evaluation Jobs", colorize) {
					fmt.Fprintln(stdout, line)
				}
				jobs := resp.Status.Jobs
				if jobs.Total == 0 {
					fmt.Fprintln(stdout, "No jobs recorded")
					return nil
				}
				rows := [][]string{
					{"queued", fmt.Sprintf("%d", jobs.Queued)},
					{"running", fmt.Sprintf("%d", jobs.Running)},
					{"completed", fmt.Sprintf("%d", jobs.Completed)},
					{"failed", fmt.Sprintf("%d", jobs.Failed)},
					{"cancelled", fmt.Sprintf("%d", jobs.Cancelled)},
				}
				fmt.Fprintln(stdout, renderTable(healthColumns, rows, colorize))
				return nil
			})
		},
	}

	return []*cobra.Command{startCmd, stopCmd, statusCmd}
}
