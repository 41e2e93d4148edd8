package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"toksmith/internal/content"
)

func newScriptCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "script <file|->",
		Short: "Wrap direct text as scraped content and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTextArg(cmd, args[0])
			if err != nil {
				return err
			}
			sc, err := content.FromScript(text, ctx.logger())
			if err != nil {
				return err
			}
			return writeJSON(cmd, sc)
		},
	}
}

// readTextArg reads a file, or stdin when the argument is "-".
func readTextArg(cmd *cobra.Command, arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read script file: %w", err)
	}
	return string(data), nil
}
