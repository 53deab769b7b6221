package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/piwi3910/ReelCut/internal/engine"
	"github.com/piwi3910/ReelCut/internal/export"
	"github.com/piwi3910/ReelCut/internal/history"
	"github.com/piwi3910/ReelCut/internal/model"
)

// printPlan writes the status line and the pattern table. machine may be
// nil when the plan is replayed from history.
func printPlan(w io.Writer, plan model.Plan, machine *model.MachineSpec) {
	fmt.Fprintf(w, "\nPLAN %s\n", plan.ID)
	fmt.Fprintf(w, "Status: %s\n", plan.Status)
	if !plan.Solved() {
		return
	}
	fmt.Fprintf(w, "Reels used: %d (lower bound %d)\n", plan.TotalReels(), plan.LowerBound)
	if machine != nil {
		fmt.Fprintf(w, "Machine: %s [%g, %g] %s, trim loss %.2f %s\n",
			machine.Name, machine.LB, machine.UB, machine.Unit, plan.TrimLoss(machine.UB), plan.Unit)
	}
	fmt.Fprintf(w, "Solve time: %s\n\n", plan.WallTime)

	headers, rows := export.PatternRows(plan)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(headers, "\t")))
	for i, row := range rows {
		line := strings.Join(row, "\t")
		if extra := export.OverflowWidths(plan.Patterns[i]); len(extra) > 0 {
			line += fmt.Sprintf("\t(+%v)", extra)
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()
}

// printUnused lists the widths with residual demand.
func printUnused(w io.Writer, plan model.Plan) {
	open := plan.Unused.Total()
	if open == 0 {
		fmt.Fprintln(w, "\nAll demand placed.")
		return
	}
	fmt.Fprintf(w, "\nUNUSED DEMAND (%d reels)\n", open)
	widths := make([]float64, 0, len(plan.Unused))
	for width, q := range plan.Unused {
		if q > 0 {
			widths = append(widths, width)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(widths)))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WIDTH\tUNIT\tQTY")
	for _, width := range widths {
		fmt.Fprintf(tw, "%g\t%s\t%d\n", width, plan.Unit, plan.Unused[width])
	}
	tw.Flush()
}

func printEstimate(w io.Writer, est model.ReelEstimate, s model.Settings, machine model.MachineSpec) {
	fmt.Fprintf(w, "\nREEL ESTIMATE (%s, max %g %s)\n", machine.Name, machine.UB, s.Unit)
	fmt.Fprintf(w, "  %-22s %d\n", "Items:", est.TotalItems)
	fmt.Fprintf(w, "  %-22s %d\n", "Reels by width:", est.ByWidth)
	fmt.Fprintf(w, "  %-22s %d (max %d per reel)\n", "Reels by item limit:", est.ByItems, s.MaxPerReel)
	fmt.Fprintf(w, "  %-22s %d\n", "Minimum reels:", est.ReelsNeededMin)
	fmt.Fprintf(w, "  %-22s %.1f%%\n", "Trim loss at minimum:", est.TrimLossPct)
}

func printComparison(w io.Writer, results []engine.ComparisonResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tSTATUS\tREELS\tTRIM LOSS\tUNUSED\tTIME")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\tERROR\t-\t-\t-\t%v\n", r.Scenario.Name, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%d\t%s\n",
			r.Scenario.Name, r.Plan.Status, r.ReelsUsed, r.TrimLoss, r.UnusedCount, r.Plan.WallTime)
	}
	tw.Flush()
}

func printRuns(w io.Writer, runs []history.RunModel) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAN\tCREATED\tSTATUS\tREELS\tBOUND\tUNUSED\tTIME (ms)")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.PlanID, r.CreatedAt.Format("2006-01-02 15:04"), r.Status, r.ReelsUsed, r.LowerBound, r.UnusedCount, r.WallTimeMs)
	}
	tw.Flush()
}
