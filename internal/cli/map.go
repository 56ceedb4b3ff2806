package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"csvwizard/internal/mapping"
	"csvwizard/internal/upload"
)

func newMapCommand(app *App) *cobra.Command {
	var (
		assigns     []string
		interactive bool
		format      string
	)

	cmd := &cobra.Command{
		Use:   "map <file>",
		Short: "Map CSV columns to the standard columns",
		Long: `Pair the columns of a CSV file with the standard column names.

Assignments are given as --assign <csv-column>=<standard-column>. Each
standard column can be used once. With --interactive a form opens instead
(arrow keys to choose, enter to confirm, esc to cancel).

The confirmed mapping is printed as YAML or JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := app.Printer

			headers, err := upload.ReadHeaders(args[0])
			if err != nil {
				printer.Print(printer.Failure("%v", err))
				return NewExitError(ExitFailure)
			}

			m := mapping.New(headers, app.Config.Mapping.StandardColumns)
			for _, a := range assigns {
				col, target, ok := strings.Cut(a, "=")
				if !ok {
					printer.Print(printer.Failure("invalid --assign %q: expected <csv-column>=<standard-column>", a))
					return NewExitError(ExitUsage)
				}
				if err := m.SetByHeader(strings.TrimSpace(col), strings.TrimSpace(target)); err != nil {
					printer.Print(printer.Failure("%v", err))
					return NewExitError(ExitUsage)
				}
			}

			var mapped []mapping.ColumnMapping
			if interactive {
				mapped, err = mapping.RunForm(m, app.input(), cmd.ErrOrStderr())
				if errors.Is(err, mapping.ErrCancelled) {
					printer.Print(printer.Info("Mapeamento cancelado"))
					return NewExitError(ExitFailure)
				}
			} else {
				mapped, err = m.Confirm()
			}
			if err != nil {
				printer.Print(printer.RenderMappingSummary(m.MappedCount(), len(headers)))
				printer.Print(printer.Failure("%v", err))
				return NewExitError(ExitFailure)
			}

			if err := encode(cmd.OutOrStdout(), format, mapped); err != nil {
				printer.Print(printer.Failure("%v", err))
				return NewExitError(ExitUsage)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&assigns, "assign", "a", nil, "Mapping as <csv-column>=<standard-column> (repeatable)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Edit the mapping in an interactive form")
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml or json")
	return cmd
}

// encode writes v as YAML or indented JSON.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
