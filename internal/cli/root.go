package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"expenses/internal/backend"
	applog "expenses/internal/log"
	"expenses/internal/services"
)

// ServiceFactory builds the expense service a command works on.
type ServiceFactory func(ctx context.Context, opts *RootOptions) (*services.ExpenseService, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml"
	DBPath  string

	openService ServiceFactory
	// logger is set by the service factory and travels on the command
	// context so the store logs through it.
	logger *applog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the expenses CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openConfiguredService)
}

func newRootCommand(open ServiceFactory) *cobra.Command {
	opts := &RootOptions{openService: open}

	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Personal expense tracker",
		Long: `Record, list, delete and summarize personal expenses.

Expenses live in a local SQLite file (EXPENSES_DB_PATH, default ./expenses.db).
Run "expenses shell" for an interactive session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logs on stderr)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite database path (overrides EXPENSES_DB_PATH)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewTotalsCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))

	return cmd
}

// Execute runs the command tree and returns the process exit code. Errors
// from commands are already reported; argument and flag errors are printed
// here.
func Execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return GetExitCode(err)
}

func openConfiguredService(ctx context.Context, opts *RootOptions) (*services.ExpenseService, error) {
	LoadEnvFile()
	cfg, err := LoadAndValidateConfig(opts.DBPath)
	if err != nil {
		return nil, err
	}

	logger := SetupLogger(cfg, opts.Verbose, os.Stderr)
	opts.logger = logger

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	return res.Service(logger), nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// open builds and initializes the service. The store is initialized on
// every start. The returned context carries the configured logger.
func (o *RootOptions) open(ctx context.Context) (context.Context, *services.ExpenseService, error) {
	svc, err := o.openService(ctx, o)
	if err != nil {
		return ctx, nil, err
	}
	if o.logger != nil {
		ctx = applog.WithContext(ctx, o.logger)
	}
	if err := svc.Initialize(ctx); err != nil {
		svc.Close()
		return ctx, nil, err
	}
	return ctx, svc, nil
}

type action func(ctx context.Context, svc *services.ExpenseService) (any, error)

// run opens the service, executes fn and reports its result.
func (o *RootOptions) run(cmd *cobra.Command, fn action) error {
	f := o.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	ctx, svc, err := o.open(ctx)
	if err != nil {
		f.Error(CodeConfiguration, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open expense store", err)
	}
	defer svc.Close()

	result, err := fn(ctx, svc)
	if err != nil {
		return report(f, err)
	}
	if err := f.Success(result); err != nil {
		return err
	}
	f.VerboseLog("%s finished in %s", cmd.CommandPath(), time.Since(start).Round(time.Millisecond))
	return nil
}

func report(f *OutputFormatter, err error) error {
	code, exit, msg := classify(err)
	var details any
	if f.Verbose && msg != err.Error() {
		details = err.Error()
	}
	f.Error(code, msg, details)
	return WrapExitError(exit, msg, err)
}
