package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List content sources and what input they expect",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.registry()
			if err != nil {
				return err
			}
			descriptors := registry.Sources()
			if ctx.jsonOutput() {
				return writeJSON(cmd, descriptors)
			}
			rows := make([][]string, 0, len(descriptors))
			for _, d := range descriptors {
				input := "url"
				switch {
				case d.RequiresText:
					input = "text"
				case d.RequiresFile:
					input = "file"
				}
				rows = append(rows, []string{string(d.Name), input, yesNo(d.Available), d.Description})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Source", "Input", "Available", "Description"}, rows, nil))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
