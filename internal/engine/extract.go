package engine

import (
	"fmt"
	"sort"

	"github.com/piwi3910/ReelCut/internal/cpmodel"
	"github.com/piwi3910/ReelCut/internal/demand"
	"github.com/piwi3910/ReelCut/internal/model"
)

// Extract decodes a solver assignment into one cutting pattern per used
// reel. Placed quantities are subtracted from a copy of unused, which is
// returned; on a correct solution every entry of it is zero.
//
// Any contradiction between the assignment and the model is reported as
// an *model.ExtractionInvariantViolation.
func Extract(rm *ReelModel, res cpmodel.Result, magnification int, unit model.Unit, unused model.UnusedDemand) ([]model.CuttingPattern, model.UnusedDemand, error) {
	if got, want := len(res.Values), rm.Model.NumVars(); got != want {
		return nil, nil, &model.ExtractionInvariantViolation{
			Reel:   -1,
			Detail: fmt.Sprintf("assignment has %d values, model declares %d variables", got, want),
		}
	}
	for i, v := range res.Values {
		d := rm.Model.Var(cpmodel.Var(i)).Domain
		if !d.Contains(v) {
			return nil, nil, &model.ExtractionInvariantViolation{
				Reel:   -1,
				Detail: fmt.Sprintf("variable %d = %d outside [%d, %d]", i, v, d.Min, d.Max),
			}
		}
	}

	residual := unused.Clone()
	var patterns []model.CuttingPattern
	prefixEnded := false

	for r := 0; r < rm.Reels; r++ {
		used := res.Value(rm.ReelUsed[r]) == 1
		items, width := 0, 0
		var widths, fillers []float64

		for o, ord := range rm.Orders {
			q := int(res.Value(rm.OrderVars[o][r]))
			if q == 0 {
				continue
			}
			items += q
			width += q * ord.Width
			w := demand.Descale(ord.Width, magnification)
			for k := 0; k < q; k++ {
				widths = append(widths, w)
			}
			residual[w] -= q
		}
		for s, st := range rm.Stock {
			q := int(res.Value(rm.StockVars[s][r]))
			if q == 0 {
				continue
			}
			items += q
			width += q * st.Width
			w := demand.Descale(st.Width, magnification)
			for k := 0; k < q; k++ {
				fillers = append(fillers, w)
			}
		}

		if !used {
			prefixEnded = true
			if width != 0 || items != 0 {
				return nil, nil, &model.ExtractionInvariantViolation{
					Reel:   r,
					Detail: fmt.Sprintf("unused reel carries %d items of width %d", items, width),
				}
			}
			continue
		}
		if prefixEnded {
			return nil, nil, &model.ExtractionInvariantViolation{
				Reel:   r,
				Detail: "used reels do not form a prefix",
			}
		}
		if items > rm.MaxPerReel {
			return nil, nil, &model.ExtractionInvariantViolation{
				Reel:   r,
				Detail: fmt.Sprintf("%d items exceed the limit of %d", items, rm.MaxPerReel),
			}
		}
		if !rm.Window.Contains(width) {
			return nil, nil, &model.ExtractionInvariantViolation{
				Reel:   r,
				Detail: fmt.Sprintf("width %d outside [%d, %d]", width, rm.Window.LB, rm.Window.UB),
			}
		}

		widths = append(widths, fillers...)
		sort.Sort(sort.Reverse(sort.Float64Slice(widths)))
		sort.Sort(sort.Reverse(sort.Float64Slice(fillers)))
		patterns = append(patterns, model.CuttingPattern{
			Widths: widths,
			Total:  demand.Descale(width, magnification),
			Unit:   unit,
			Remark: model.FormatRemark(fillers),
			Count:  1,
		})
	}

	for w, q := range residual {
		if q != 0 {
			return nil, nil, &model.ExtractionInvariantViolation{
				Reel:   -1,
				Detail: fmt.Sprintf("residual demand %d for width %g", q, w),
			}
		}
	}
	return patterns, residual, nil
}
