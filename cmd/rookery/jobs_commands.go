package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rookery/internal/api"
	"rookery/internal/ipc"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var depth int
	var priority int

	cmd := &cobra.Command{
		Use:   "analyze <game-id>",
		Short: "Queue engine analysis for a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Analyze(args[0], depth, priority)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %s (depth %d, priority %d)\n",
					resp.Job.ID, resp.Job.Depth, resp.Job.Priority)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "Analysis depth (defaults to the configured depth)")
	cmd.Flags().IntVar(&priority, "priority", 0, "Job priority 1-10 (defaults to 5)")
	return cmd
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage evaluation jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsCancelCommand(ctx))
	jobsCmd.AddCommand(newJobsRetryCommand(ctx))
	jobsCmd.AddCommand(newJobsPriorityCommand(ctx))
	jobsCmd.AddCommand(newJobsHealthCommand(ctx))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List evaluation jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.JobsList(statusFilter)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				if len(resp.Jobs) == 0 {
					fmt.Fprintln(stdout, "No jobs found")
					return nil
				}
				rows := make([][]string, 0, len(resp.Jobs))
				for _, job := range resp.Jobs {
					rows = append(rows, []string{
						truncateID(job.ID),
						truncateID(job.GameID),
						job.Status,
						fmt.Sprintf("%d", job.Priority),
						fmt.Sprintf("%d", job.Depth),
						progressCell(job),
						formatTimestamp(job.CreatedAt),
					})
				}
				fmt.Fprintln(stdout, renderTable(jobColumns, rows, shouldColorize(stdout)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by job status (queued, running, completed, failed, cancelled)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.JobGet(args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, resp)
			})
		},
	}
}

func newJobsCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a queued or running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.CancelJob(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Job %s cancelled\n", resp.Job.ID)
				return nil
			})
		},
	}
}

func newJobsRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Re-queue a failed job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RetryJob(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Job %s re-queued (retry %d)\n", resp.Job.ID, resp.Job.RetryCount)
				return nil
			})
		},
	}
}

func newJobsPriorityCommand(ctx *commandContext) *cobra.Command {
	var set int
	var bump int

	cmd := &cobra.Command{
		Use:   "priority <job-id>",
		Short: "Change a queued job's priority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setChanged := cmd.Flags().Changed("set")
			bumpChanged := cmd.Flags().Changed("bump")
			if setChanged == bumpChanged {
				return fmt.Errorf("specify exactly one of --set or --bump")
			}

			return ctx.withClient(func(client *ipc.Client) error {
				var resp ipc.PriorityResponse
				var err error
				if setChanged {
					resp, err = client.SetPriority(args[0], set)
				} else {
					resp, err = client.AdjustPriority(args[0], bump)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Job %s priority is now %d\n", resp.Job.ID, resp.Job.Priority)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&set, "set", 0, "Replace the priority (1-10)")
	cmd.Flags().IntVar(&bump, "bump", 0, "Shift the priority by a delta, e.g. --bump 2 or --bump -1")
	return cmd
}

func newJobsHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show aggregate job counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.JobHealth()
				if err != nil {
					return err
				}
				return writeJSON(cmd, resp)
			})
		},
	}
}

func progressCell(job api.Job) string {
	if job.PositionsAll <= 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", job.PositionsDone, job.PositionsAll)
}
