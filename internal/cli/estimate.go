package cli

import (
	"github.com/spf13/cobra"

	"github.com/piwi3910/ReelCut/internal/demand"
	"github.com/piwi3910/ReelCut/internal/model"
)

func newEstimateCommand(a *app) *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the minimum number of source reels",
		Long: `Compute a demand-only lower bound on the reels needed, from total width
against the machine's maximum and from the per-reel item limit. No model
is solved.

Examples:
  reelcut estimate --orders orders.csv
  reelcut estimate --orders orders.json --max-per-reel 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := in.resolve(cmd, a)
			if err != nil {
				return err
			}
			s := inputs.settings
			orders, err := demand.Aggregate(inputs.job.Orders, s.Magnification)
			if err != nil {
				return err
			}
			window, err := demand.ScaleWindow(inputs.job.Machine, s.Magnification)
			if err != nil {
				return err
			}
			est := model.EstimateReels(orders, window, s.MaxPerReel)
			printEstimate(cmd.OutOrStdout(), est, s, inputs.job.Machine)
			return nil
		},
	}

	in.register(cmd)
	return cmd
}
