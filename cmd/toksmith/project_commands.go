package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"toksmith/internal/api"
	"toksmith/internal/audio"
	"toksmith/internal/project"
	"toksmith/internal/queue"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Drive video projects through scrape, script, and audio",
	}
	projectCmd.AddCommand(newProjectInitCommand(ctx))
	projectCmd.AddCommand(newProjectScriptCommand(ctx))
	projectCmd.AddCommand(newProjectConfirmCommand(ctx))
	projectCmd.AddCommand(newProjectAudioCommand(ctx))
	projectCmd.AddCommand(newProjectShowCommand(ctx))
	projectCmd.AddCommand(newProjectListCommand(ctx))
	return projectCmd
}

func newProjectInitCommand(ctx *commandContext) *cobra.Command {
	var sourceFlag, title, resolution string

	cmd := &cobra.Command{
		Use:   "init <url>",
		Short: "Create a project and scrape its source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := sourceOption(sourceFlag)
			if err != nil {
				return err
			}
			svc, err := ctx.projectService()
			if err != nil {
				return err
			}
			p, err := svc.Init(cmd.Context(), args[0], project.InitOptions{Source: source, Title: title, Resolution: resolution})
			if p != nil {
				if printErr := printProject(cmd, ctx, p); printErr != nil {
					return printErr
				}
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "", "Source to use instead of detecting it from the URL")
	cmd.Flags().StringVar(&title, "title", "", "Project title (defaults to the scraped title)")
	cmd.Flags().StringVar(&resolution, "resolution", "", "Video resolution such as 1080x1920")
	return cmd
}

func newProjectScriptCommand(ctx *commandContext) *cobra.Command {
	var title, resolution string

	cmd := &cobra.Command{
		Use:   "script <file|->",
		Short: "Create a project from direct text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTextArg(cmd, args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.projectService()
			if err != nil {
				return err
			}
			p, err := svc.InitFromScript(cmd.Context(), text, project.InitOptions{Title: title, Resolution: resolution})
			if err != nil {
				return err
			}
			return printProject(cmd, ctx, p)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Project title")
	cmd.Flags().StringVar(&resolution, "resolution", "", "Video resolution such as 1080x1920")
	return cmd
}

func newProjectConfirmCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <id>",
		Short: "Generate the dialogue script for a scraped project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.projectService()
			if err != nil {
				return err
			}
			p, err := svc.Confirm(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printProject(cmd, ctx, p)
		},
	}
}

func newProjectAudioCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "audio <id>",
		Short: "Synthesize speech for every script line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.projectService()
			if err != nil {
				return err
			}
			p, result, err := svc.GenerateAudio(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, api.AudioResponse{Project: api.FromProject(p), Result: result})
			}
			if err := printProject(cmd, ctx, p); err != nil {
				return err
			}
			printAudioResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func newProjectShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project with its script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			p, err := store.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printProject(cmd, ctx, p)
		},
	}
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]queue.ProjectStatus, 0, len(statusFlags))
			for _, value := range statusFlags {
				status, ok := queue.ParseProjectStatus(value)
				if !ok {
					return fmt.Errorf("unknown project status %q", value)
				}
				statuses = append(statuses, status)
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			projects, err := store.ListProjects(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, api.FromProjects(projects))
			}
			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects")
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{
					p.ID,
					p.SourceType,
					colorStatus(string(p.Status), colorize),
					p.Title,
					p.UpdatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprint(out, renderTable([]string{"ID", "Source", "Status", "Title", "Updated"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by project status (repeatable)")
	return cmd
}

func printProject(cmd *cobra.Command, ctx *commandContext, p *queue.Project) error {
	view := api.FromProject(p)
	if ctx.jsonOutput() {
		return writeJSON(cmd, view)
	}
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintf(out, "Project:    %s\n", view.ID)
	fmt.Fprintf(out, "Status:     %s\n", colorStatus(view.Status, colorize))
	fmt.Fprintf(out, "Source:     %s\n", view.SourceType)
	if view.SourceURL != "" {
		fmt.Fprintf(out, "URL:        %s\n", view.SourceURL)
	}
	fmt.Fprintf(out, "Title:      %s\n", view.Title)
	fmt.Fprintf(out, "Resolution: %s\n", view.Resolution)
	if view.LastError != "" {
		fmt.Fprintf(out, "Last error: %s\n", view.LastError)
	}
	if view.ScriptData == nil || len(view.ScriptData.Lines) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(view.ScriptData.Lines))
	for i, line := range view.ScriptData.Lines {
		rows = append(rows, []string{fmt.Sprint(i + 1), line.Speaker, line.Text, line.AudioFilePath})
	}
	fmt.Fprint(out, renderTable([]string{"#", "Speaker", "Text", "Audio"}, rows, []columnAlignment{alignRight}))
	return nil
}

func printAudioResult(out io.Writer, result audio.Result) {
	fmt.Fprintf(out, "Audio: %d synthesized, %d reused, %d failed\n", result.Synthesized, result.Skipped, result.Failed)
}
