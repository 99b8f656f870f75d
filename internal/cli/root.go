// Package cli implements the fieldkit command tree. Every command opens
// the data directory named by --data-dir, resumes the single session, and
// runs one engine operation against it.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/holographic-rest/field-kit/internal/engine"
	"github.com/holographic-rest/field-kit/internal/store"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	DataDir string
	Format  string // "json" | "text"
	Verbose bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fieldkit CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "fieldkit",
		Short:         "Field-Kit - an event-sourced proof organism",
		Long:          "Field-Kit records every operation as an append-only QDPI event log\nand derives items, bonds, and the credit ledger from it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return WrapExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", ".fieldkit", "path to the data directory")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging to stderr")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewTutorialCommand(opts))
	cmd.AddCommand(NewItemCommand(opts))
	cmd.AddCommand(NewSuggestCommand(opts))
	cmd.AddCommand(NewBondCommand(opts))
	cmd.AddCommand(NewHolologueCommand(opts))
	cmd.AddCommand(NewLedgerCommand(opts))
	cmd.AddCommand(NewCurateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

func configureLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openEngine opens the store at the configured data directory and builds
// an engine on it.
func openEngine(opts *RootOptions) (*engine.Engine, error) {
	s, err := store.Open(opts.DataDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open data directory", err)
	}
	return engine.New(s, engine.WithLogger(slog.Default()))
}

// resume returns the session for an initialized data directory, with a
// command-error exit when init has not run yet.
func resume(e *engine.Engine) (engine.Session, error) {
	sess, err := e.Resume()
	if err != nil {
		return engine.Session{}, WrapExitError(ExitCommandError,
			`data directory is not initialized, run "fieldkit init" first`, err)
	}
	return sess, nil
}

// formatterFor builds the output formatter for a command invocation.
func formatterFor(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
}

// emit renders an operation result. On success the data goes to the
// formatter; on failure the error is classified, rendered as a JSON
// envelope when in JSON mode, and returned with its exit code.
func emit(f *OutputFormatter, data interface{}, err error) error {
	if err == nil {
		return f.Success(data)
	}
	kind, code := classify(err)
	if f.Format == "json" {
		_ = f.Error(kind, err.Error())
	}
	return WrapExitError(code, kind+" error", err)
}

func classify(err error) (kind string, code int) {
	switch {
	case engine.IsValidation(err):
		return "validation", ExitFailure
	case engine.IsInvalidState(err):
		return "invalid_state", ExitFailure
	case engine.IsExecution(err):
		return "execution", ExitFailure
	case store.IsNotFound(err):
		return "not_found", ExitFailure
	}
	return "command", ExitCommandError
}
