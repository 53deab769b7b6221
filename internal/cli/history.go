package cli

import (
	"github.com/spf13/cobra"

	"github.com/piwi3910/ReelCut/internal/history"
)

func newHistoryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded runs",
		Long: `List and show runs recorded in the history database (history.path).
Runs are recorded by solve when history.enabled is true.

Examples:
  reelcut history list --limit 20
  reelcut history show 3f2a9c1d`,
	}

	cmd.AddCommand(newHistoryListCommand(a))
	cmd.AddCommand(newHistoryShowCommand(a))
	return cmd
}

func newHistoryListCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(a.cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func newHistoryShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Print the plan of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(a.cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			plan, err := store.Plan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), plan, nil)
			printUnused(cmd.OutOrStdout(), plan)
			return nil
		},
	}
}
