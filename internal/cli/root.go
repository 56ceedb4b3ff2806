// Package cli provides the command-line interface for csvwizard.
//
// Commands are built with cobra around an [App] that carries the
// dependencies they share. Tests construct an App with a test configuration
// and a buffered printer, then drive the root command with SetArgs.
//
// Commands signal failure by returning [ExitError]; only [Execute] calls
// os.Exit.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"csvwizard/internal/api"
	"csvwizard/internal/config"
	"csvwizard/internal/output"
	"csvwizard/internal/page"
	"csvwizard/internal/wizard"
)

// App holds the dependencies shared by every command.
type App struct {
	Config  *config.Config
	Printer *output.Printer
	Logger  *zap.Logger

	// In is the input for interactive prompts. Defaults to os.Stdin.
	In io.Reader

	// Page is built on first use from Config when nil.
	Page *page.Page
}

// ExecuteResult is the outcome of a CLI run.
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// NewApp creates an [App] for cfg writing to stdout.
func NewApp(cfg *config.Config) *App {
	p := output.NewPrinter()
	if !cfg.Output.Color {
		p.DisableColor()
	}
	return &App{
		Config:  cfg,
		Printer: p,
		In:      os.Stdin,
	}
}

// Steps returns the configured step sequence, read from the CSV manifest
// when one is configured.
func (a *App) Steps() ([]wizard.UploadStep, error) {
	if a.Config.StepsManifest != "" {
		return wizard.ReadStepsFromFile(a.Config.StepsManifest)
	}
	return wizard.StepsFromConfig(a.Config.Steps)
}

// Client returns an API client for the configured backend.
func (a *App) Client() *api.Client {
	c := api.NewClient(a.Config.API.BaseURL, a.Config.API.Prefix, a.Config.API.Timeout)
	c.SetLogger(a.logger())
	return c
}

// Session returns the wizard session, creating it on first use.
func (a *App) Session() (*page.Page, error) {
	if a.Page != nil {
		return a.Page, nil
	}
	steps, err := a.Steps()
	if err != nil {
		return nil, err
	}
	p, err := page.New(steps, a.Client(), a.Config.API.ConsolidateEndpoint)
	if err != nil {
		return nil, err
	}
	p.SetLogger(a.logger())
	a.Page = p
	return p, nil
}

func (a *App) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func (a *App) input() io.Reader {
	if a.In == nil {
		return os.Stdin
	}
	return a.In
}

// buildLogger creates the process logger. Logs go to stderr so command
// output stays machine-readable.
func buildLogger(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.OutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

// NewRootCommand creates the root cobra command with every subcommand
// attached.
func NewRootCommand(app *App) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "csvwizard",
		Short: "Guided CSV upload wizard",
		Long: `csvwizard uploads CSV files to a processing backend in a fixed order.

Each step unlocks only after the previous one is accepted. Once every step
is complete the backend can consolidate the data, and the result can be
saved as JSON.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Logger != nil {
				return nil
			}
			logger, err := buildLogger(app.Config.Log, verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			app.Logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newStepsCommand(app),
		newRunCommand(app),
		newHeadersCommand(app),
		newMapCommand(app),
		newServeCommand(app),
	)

	return rootCmd
}

// RunWithConfig runs the CLI with cfg and returns the outcome without
// exiting.
func RunWithConfig(cfg *config.Config, args []string) ExecuteResult {
	app := NewApp(cfg)
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			return ExecuteResult{ExitCode: code, Err: err}
		}
		return ExecuteResult{ExitCode: 1, Err: err}
	}
	return ExecuteResult{}
}

// Execute loads configuration, runs the CLI and exits with its code.
func Execute() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	result := RunWithConfig(cfg, os.Args[1:])
	var exitErr *ExitError
	if result.Err != nil && !errors.As(result.Err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", result.Err)
	}
	os.Exit(result.ExitCode)
}
