package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/ReelCut/internal/engine"
	"github.com/piwi3910/ReelCut/internal/export"
	"github.com/piwi3910/ReelCut/internal/history"
	"github.com/piwi3910/ReelCut/internal/model"
	"github.com/piwi3910/ReelCut/internal/project"
	"github.com/piwi3910/ReelCut/internal/satsolver"
)

// outputFlags select the optional report files.
type outputFlags struct {
	pdfPath    string
	labelsPath string
	xlsxPath   string
	dxfPath    string
	jsonPath   string
	saveJob    string
	noHistory  bool
}

func newSolveCommand(a *app) *cobra.Command {
	var (
		in  inputFlags
		out outputFlags
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Compute a slitting plan",
		Long: `Aggregate the orders, build the reel model, solve it and print the
cutting patterns with any demand that could not be placed.

The command exits with status 2 and "No solution found" when the model is
infeasible or the time budget ran out before a solution was found.

Examples:
  reelcut solve --orders orders.csv
  reelcut solve --orders orders.json --unit mm --machine "PM1 mm" --xlsx plan.xlsx
  reelcut solve --job week42.json --pdf plan.pdf --labels labels.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, a, &in, &out)
		},
	}

	in.register(cmd)
	cmd.Flags().StringVar(&out.pdfPath, "pdf", "", "Write the plan report to a PDF file")
	cmd.Flags().StringVar(&out.labelsPath, "labels", "", "Write QR reel labels to a PDF file")
	cmd.Flags().StringVar(&out.xlsxPath, "xlsx", "", "Write the plan to an Excel workbook")
	cmd.Flags().StringVar(&out.dxfPath, "dxf", "", "Write the slitting layout to a DXF drawing")
	cmd.Flags().StringVar(&out.jsonPath, "json", "", "Write the plan as JSON")
	cmd.Flags().StringVar(&out.saveJob, "save-job", "", "Save inputs, settings and plan as a job file")
	cmd.Flags().BoolVar(&out.noHistory, "no-history", false, "Do not record this run in the history database")

	return cmd
}

func runSolve(cmd *cobra.Command, a *app, in *inputFlags, out *outputFlags) error {
	inputs, err := in.resolve(cmd, a)
	if err != nil {
		return err
	}

	ctx, stop := interruptContext(cmd)
	defer stop()

	opt := engine.New(inputs.settings, satsolver.New(a.logger), a.logger)
	plan, err := opt.Optimize(ctx, inputs.job.Orders, inputs.job.Stock, inputs.job.Machine)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printPlan(w, plan, &inputs.job.Machine)
	printUnused(w, plan)

	if plan.Solved() {
		if err := writeOutputs(plan, inputs, out); err != nil {
			return err
		}
	}
	if out.saveJob != "" {
		job := inputs.job
		job.Plan = &plan
		if err := project.SaveJob(out.saveJob, job); err != nil {
			return err
		}
	}
	if a.cfg.History.Enabled && !out.noHistory {
		recordRun(cmd.Context(), a, plan, inputs.settings)
	}

	return model.NoSolutionError(plan.Status)
}

func writeOutputs(plan model.Plan, inputs runInputs, out *outputFlags) error {
	machine := inputs.job.Machine
	if out.pdfPath != "" {
		if err := export.ExportPDF(out.pdfPath, plan, machine, inputs.settings); err != nil {
			return fmt.Errorf("export PDF: %w", err)
		}
	}
	if out.labelsPath != "" {
		if err := export.ExportLabels(out.labelsPath, plan); err != nil {
			return fmt.Errorf("export labels: %w", err)
		}
	}
	if out.xlsxPath != "" {
		if err := export.ExportExcel(out.xlsxPath, plan); err != nil {
			return fmt.Errorf("export Excel: %w", err)
		}
	}
	if out.dxfPath != "" {
		if err := export.ExportDXF(out.dxfPath, plan, machine); err != nil {
			return fmt.Errorf("export DXF: %w", err)
		}
	}
	if out.jsonPath != "" {
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal plan: %w", err)
		}
		if err := os.WriteFile(out.jsonPath, data, 0644); err != nil {
			return fmt.Errorf("write plan JSON: %w", err)
		}
	}
	return nil
}

// recordRun logs history failures instead of failing the run.
func recordRun(ctx context.Context, a *app, plan model.Plan, settings model.Settings) {
	store, err := history.Open(a.cfg.History.Path)
	if err != nil {
		a.logger.Warn("history unavailable", "path", a.cfg.History.Path, "error", err)
		return
	}
	defer store.Close()

	if err := store.Record(ctx, plan, settings); err != nil {
		a.logger.Warn("history not recorded", "plan_id", plan.ID, "error", err)
		return
	}
	a.logger.Debug("run recorded", "plan_id", plan.ID)
}
