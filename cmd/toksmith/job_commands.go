package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"toksmith/internal/api"
	"toksmith/internal/queue"
)

func newJobCommand(ctx *commandContext) *cobra.Command {
	jobCmd := &cobra.Command{
		Use:   "job",
		Short: "Inspect and clean up scrape jobs",
	}
	jobCmd.AddCommand(newJobShowCommand(ctx))
	jobCmd.AddCommand(newJobListCommand(ctx))
	jobCmd.AddCommand(newJobPruneCommand(ctx))
	return jobCmd
}

func newJobShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job; completed jobs include their scraped content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			job, err := store.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			view := api.FromJob(job)
			if ctx.jsonOutput() {
				return writeJSON(cmd, view)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Job:     %s\n", view.JobID)
			fmt.Fprintf(out, "Source:  %s\n", view.Source)
			fmt.Fprintf(out, "URL:     %s\n", view.URL)
			fmt.Fprintf(out, "Status:  %s\n", colorStatus(view.Status, colorize))
			fmt.Fprintf(out, "Created: %s\n", view.CreatedAt)
			fmt.Fprintf(out, "Updated: %s\n", view.UpdatedAt)
			if view.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:   %s\n", view.ErrorMessage)
			}
			if view.Data != nil {
				fmt.Fprintf(out, "Title:   %s\n", view.Data.Title)
				fmt.Fprintf(out, "Comments: %d\n", len(view.Data.Comments))
			}
			return nil
		},
	}
}

func newJobListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseJobStatuses(statusFlags)
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			jobs, err := store.ListJobs(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, api.FromJobs(jobs))
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs")
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, []string{
					job.ID,
					job.Source,
					colorStatus(string(job.Status), colorize),
					job.CreatedAt.Local().Format(time.DateTime),
					job.URL,
				})
			}
			fmt.Fprint(out, renderTable([]string{"ID", "Source", "Status", "Created", "URL"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by job status (repeatable)")
	return cmd
}

func newJobPruneCommand(ctx *commandContext) *cobra.Command {
	var completed bool
	var failed bool
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete completed or failed jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []queue.JobStatus
			if completed {
				statuses = append(statuses, queue.JobCompleted)
			}
			if failed {
				statuses = append(statuses, queue.JobFailed)
			}
			if len(statuses) == 0 {
				return errors.New("specify --completed, --failed, or both")
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			removed, err := store.PruneJobs(cmd.Context(), olderThan, statuses...)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]int64{"removed": removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d jobs\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "Remove completed jobs")
	cmd.Flags().BoolVar(&failed, "failed", false, "Remove failed jobs")
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only remove jobs last updated before this age")
	return cmd
}

func parseJobStatuses(values []string) ([]queue.JobStatus, error) {
	out := make([]queue.JobStatus, 0, len(values))
	for _, value := range values {
		status, ok := queue.ParseJobStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown job status %q", value)
		}
		out = append(out, status)
	}
	return out, nil
}
