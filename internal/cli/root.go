// Package cli implements the reelcut command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/piwi3910/ReelCut/internal/config"
	"github.com/piwi3910/ReelCut/internal/model"
)

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitNoSolution = 2
)

// app is the state shared by every subcommand once the root command has
// loaded the configuration.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand creates the root command for the CLI.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "reelcut",
		Short: "ReelCut - paper reel slitting planner",
		Long: `ReelCut plans how to slit wide paper reels into customer widths while
using as few source reels as possible.

Examples:
  reelcut solve --orders orders.csv --stock stocks.json --specs machine_specs.json
  reelcut solve --orders orders.json --unit mm --max-per-reel 4 --pdf plan.pdf
  reelcut estimate --orders orders.xlsx
  reelcut compare --orders orders.json
  reelcut history list --limit 10`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default reelcut.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text, json")

	rootCmd.AddCommand(newSolveCommand(a))
	rootCmd.AddCommand(newEstimateCommand(a))
	rootCmd.AddCommand(newCompareCommand(a))
	rootCmd.AddCommand(newHistoryCommand(a))
	rootCmd.AddCommand(newInventoryCommand(a))

	return rootCmd
}

func (a *app) load() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = config.NewLogger(cfg.Logging)
	return nil
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), args, stdout, stderr)
}

// RunContext is Run with a parent context for every command.
func RunContext(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	code := exitCode(err)
	switch code {
	case exitNoSolution:
		fmt.Fprintf(stderr, "No solution found: %v\n", err)
	case exitError:
		fmt.Fprintln(stderr, err)
	}
	return code
}

// interruptContext derives a context from the command's that is cancelled
// on Ctrl-C, so a running solve stops at its next probe boundary.
func interruptContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, model.ErrNoSolution):
		return exitNoSolution
	default:
		return exitError
	}
}

// Execute runs the root command
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
