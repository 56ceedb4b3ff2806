package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"csvwizard/internal/upload"
)

func newHeadersCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "headers <file>",
		Short: "Print the header row of a CSV file",
		Long: `Print the column names read from the first line of a CSV file, the same
way they are reported to the backend after an upload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			headers, err := upload.ReadHeaders(args[0])
			if err != nil {
				app.Printer.Print(app.Printer.Failure("%v", err))
				return NewExitError(ExitFailure)
			}

			if format == "text" {
				for i, h := range headers {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i+1, h)
				}
				return nil
			}
			if err := encode(cmd.OutOrStdout(), format, headers); err != nil {
				app.Printer.Print(app.Printer.Failure("%v", err))
				return NewExitError(ExitUsage)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or yaml")
	return cmd
}
