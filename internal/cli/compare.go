package cli

import (
	"github.com/spf13/cobra"

	"github.com/piwi3910/ReelCut/internal/engine"
	"github.com/piwi3910/ReelCut/internal/satsolver"
)

func newCompareCommand(a *app) *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the current settings with relaxed alternatives",
		Long: `Solve the same orders under the current settings, one more item per
reel, a doubled time limit and doubled workers, and print the outcome of
each side by side.

Examples:
  reelcut compare --orders orders.csv
  reelcut compare --orders orders.json --time-limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := in.resolve(cmd, a)
			if err != nil {
				return err
			}
			ctx, stop := interruptContext(cmd)
			defer stop()

			scenarios := engine.BuildDefaultScenarios(inputs.settings)
			results := engine.CompareScenarios(ctx, satsolver.New(a.logger), scenarios,
				inputs.job.Orders, inputs.job.Stock, inputs.job.Machine)
			printComparison(cmd.OutOrStdout(), results)
			return nil
		},
	}

	in.register(cmd)
	return cmd
}
