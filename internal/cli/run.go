package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"csvwizard/internal/consolidate"
	"csvwizard/internal/upload"
	"csvwizard/internal/wizard"
)

func newRunCommand(app *App) *cobra.Command {
	var (
		files         []string
		doConsolidate bool
		outDir        string
		dryRun        bool
	)

	cmd := &cobra.Command{
		Use:   "run --file <step-id>=<path> [--file ...]",
		Short: "Upload every step in order",
		Long: `Upload one CSV file per step, in the configured order.

Every step needs a file. The run stops at the first rejected upload and
prints the backend's messages; later steps stay locked.

With --consolidate, the backend consolidates the uploaded data once every
step is accepted, and the result is saved as JSON in --out.

Example:
  csvwizard run \
    --file pessoa-juridica=pj.csv \
    --file operacoes=operacoes.csv \
    --file aditivo-documentos=aditivos.csv \
    --consolidate --out ./export`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWizard(cmd, app, files, doConsolidate, outDir, dryRun)
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "Step file as <step-id>=<path> (repeatable)")
	cmd.Flags().BoolVar(&doConsolidate, "consolidate", false, "Consolidate and save the data after the last step")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for the consolidated JSON (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the planned uploads without sending anything")

	return cmd
}

func runWizard(cmd *cobra.Command, app *App, fileArgs []string, doConsolidate bool, outDir string, dryRun bool) error {
	printer := app.Printer

	p, err := app.Session()
	if err != nil {
		printer.Print(printer.Failure("%v", err))
		return NewExitError(ExitFailure)
	}

	files, err := parseFileArgs(fileArgs)
	if err != nil {
		printer.Print(printer.Failure("%v", err))
		return NewExitError(ExitUsage)
	}
	for id := range files {
		if _, err := p.Uploader(id); err != nil {
			printer.Print(printer.Failure("%v", err))
			return NewExitError(ExitUsage)
		}
	}

	runner := p.Runner()

	if dryRun {
		client := app.Client()
		plan := runner.Plan()
		printer.Print(printer.Info("Dry run: %d step(s) would be uploaded", len(plan)))
		for i, step := range plan {
			path := files[step.ID]
			if path == "" {
				path = "(missing)"
			}
			printer.Print(fmt.Sprintf("  %d. %s  %s -> %s\n", i+1, step.Title, path, client.URL(step.Endpoint)))
		}
		if doConsolidate {
			printer.Print(fmt.Sprintf("  then consolidate via %s\n", client.URL(consolidateEndpoint(app))))
		}
		return nil
	}

	runner.SetProgressCallback(func(i, total int, step wizard.UploadStep) {
		printer.Print(printer.Info("[%d/%d] %s: %s", i, total, step.Title, filepath.Base(files[step.ID])))
	})

	if err := runner.Execute(cmd.Context(), files); err != nil {
		printer.PrintErrors(p.Errors())
		printer.PrintProgress(p.Views())
		printer.Print(printer.Failure("%v", err))

		var rejected *upload.RejectedError
		switch {
		case errors.Is(err, wizard.ErrMissingFile):
			return NewExitError(ExitUsage)
		case errors.As(err, &rejected):
			return NewExitError(ExitRejected)
		default:
			return NewExitError(ExitFailure)
		}
	}

	printer.PrintProgress(p.Views())
	printer.Print(printer.Success("Todas as etapas concluídas"))

	if !doConsolidate {
		return nil
	}

	if _, err := p.Consolidate(cmd.Context()); err != nil {
		var failure *consolidate.Failure
		if errors.As(err, &failure) {
			printer.Print(printer.Failure("%s", failure.Notice))
		} else {
			printer.Print(printer.Failure("%v", err))
		}
		return NewExitError(ExitFailure)
	}

	if !p.Consolidator().HasResult() {
		printer.Print(printer.Success("%s", consolidate.MsgSuccess))
		printer.Print(printer.Info("%s", consolidate.MsgNoData))
		return nil
	}

	pretty, err := p.Consolidator().Render()
	if err != nil {
		printer.Print(printer.Failure("%v", err))
		return NewExitError(ExitFailure)
	}
	printer.Print(printer.Success("%s", consolidate.MsgSuccess))
	printer.Print(printer.RenderConsolidated(pretty))

	if outDir == "" {
		outDir = app.Config.Output.DownloadDir
	}
	path, err := p.Consolidator().Download(outDir, app.Config.Output.DownloadName)
	if err != nil {
		printer.Print(printer.Failure("%v", err))
		return NewExitError(ExitFailure)
	}
	printer.Print(printer.Success("Dados salvos em %s", path))
	return nil
}

func consolidateEndpoint(app *App) string {
	if app.Config.API.ConsolidateEndpoint != "" {
		return app.Config.API.ConsolidateEndpoint
	}
	return consolidate.DefaultEndpoint
}

// parseFileArgs turns repeated id=path flags into a map. A step may appear
// only once.
func parseFileArgs(args []string) (map[string]string, error) {
	files := make(map[string]string, len(args))
	for _, arg := range args {
		id, path, ok := strings.Cut(arg, "=")
		id, path = strings.TrimSpace(id), strings.TrimSpace(path)
		if !ok || id == "" || path == "" {
			return nil, fmt.Errorf("invalid --file %q: expected <step-id>=<path>", arg)
		}
		if _, dup := files[id]; dup {
			return nil, fmt.Errorf("duplicate --file for step %s", id)
		}
		files[id] = path
	}
	return files, nil
}
