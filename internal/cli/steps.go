package cli

import (
	"github.com/spf13/cobra"
)

func newStepsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the upload steps",
		Long: `List the configured upload steps in order with the URL each one posts to.

Steps come from the config file or, when steps_manifest is set, from a CSV
manifest with the columns id,title,description,endpoint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Session()
			if err != nil {
				app.Printer.Print(app.Printer.Failure("%v", err))
				return NewExitError(ExitFailure)
			}

			views := p.Views()
			app.Printer.Print(app.Printer.RenderStepTable(views, app.Client().URL))
			app.Printer.PrintProgress(views)
			return nil
		},
	}
}
