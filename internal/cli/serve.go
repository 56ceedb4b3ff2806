package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"csvwizard/internal/server"
)

func newServeCommand(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the wizard over HTTP",
		Long: `Serve one wizard session as a JSON API under /api/v1.

All clients share the same session: steps completed through one request are
completed for everyone until the server stops.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Session()
			if err != nil {
				app.Printer.Print(app.Printer.Failure("%v", err))
				return NewExitError(ExitFailure)
			}

			if addr == "" {
				addr = app.Config.Server.Addr
			}

			srv, err := server.New(app.Config, p, app.Logger)
			if err != nil {
				app.Printer.Print(app.Printer.Failure("%v", err))
				return NewExitError(ExitFailure)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app.Printer.Print(app.Printer.Info("Listening on %s", addr))
			if err := srv.Start(ctx, addr); err != nil {
				app.Printer.Print(app.Printer.Failure("%v", err))
				return NewExitError(ExitFailure)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
