package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"toksmith/internal/api"
	"toksmith/internal/content"
	"toksmith/internal/queue"
	"toksmith/internal/sources"
	"toksmith/internal/workflow"
)

const waitPollInterval = 500 * time.Millisecond

func newScrapeCommand(ctx *commandContext) *cobra.Command {
	var sourceFlag string
	var wait bool
	var fetch bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Queue a URL for scraping by the daemon",
		Long: "Queue a URL for scraping. The job lands in the shared database and a running\n" +
			"`toksmith serve` picks it up. Use --fetch to scrape inline without a daemon.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := sourceOption(sourceFlag)
			if err != nil {
				return err
			}
			registry, err := ctx.registry()
			if err != nil {
				return err
			}

			if fetch {
				sc, err := registry.Fetch(cmd.Context(), source, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, sc)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			manager := workflow.NewManager(cfg, store, registry, nil, ctx.logger())
			job, err := manager.Enqueue(cmd.Context(), source, args[0])
			if err != nil {
				return err
			}
			if wait {
				job, err = waitForJob(cmd.Context(), store, job.ID, timeout)
				if err != nil {
					return err
				}
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, api.FromJob(job))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %s %s (%s)\n", job.ID, displayStatus(string(job.Status)), job.Source)
			if job.Status == queue.JobFailed {
				fmt.Fprintf(out, "Error: %s\n", job.ErrorMessage)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "", "Source to use instead of detecting it from the URL")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for a running daemon to finish the job")
	cmd.Flags().BoolVar(&fetch, "fetch", false, "Scrape inline and print the content as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "How long --wait polls before giving up")
	return cmd
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var sourceFlag string

	cmd := &cobra.Command{
		Use:   "batch <url>...",
		Short: "Scrape several URLs concurrently and print the successes as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := sourceOption(sourceFlag)
			if err != nil {
				return err
			}
			registry, err := ctx.registry()
			if err != nil {
				return err
			}
			requests := make([]sources.Request, 0, len(args))
			for _, url := range args {
				requests = append(requests, sources.Request{Source: source, URL: url})
			}
			items := make([]*content.ScrapedContent, 0, len(args))
			for _, sc := range registry.FetchMany(cmd.Context(), requests) {
				if sc != nil {
					items = append(items, sc)
				}
			}
			return writeJSON(cmd, api.BatchResponse{Success: true, Requested: len(requests), Items: items})
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "", "Source applied to every URL")
	return cmd
}

func sourceOption(value string) (*content.Source, error) {
	if value == "" {
		return nil, nil
	}
	source, err := content.ParseSource(value)
	if err != nil {
		return nil, err
	}
	return &source, nil
}

func waitForJob(ctx context.Context, store *queue.Store, id string, timeout time.Duration) (*queue.Job, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()
	for {
		job, err := store.GetJob(ctx, id)
		if err != nil {
			return nil, err
		}
		if job.Status.IsTerminal() {
			return job, nil
		}
		if time.Now().After(deadline) {
			return job, errors.New("timed out waiting for job; is `toksmith serve` running?")
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}
