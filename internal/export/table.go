package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/piwi3910/ReelCut/internal/model"
)

// PatternHeaders are the column titles of the tabular plan report.
var PatternHeaders = []string{"width1", "width2", "width3", "width4", "width5", "unit", "total", "qty", "remark"}

// PatternRows renders every pattern as a row of PatternHeaders. Empty
// width slots are left blank.
func PatternRows(plan model.Plan) ([]string, [][]string) {
	rows := make([][]string, 0, len(plan.Patterns))
	for _, p := range plan.Patterns {
		row := make([]string, 0, len(PatternHeaders))
		for slot := 1; slot <= model.MaxWidthSlots; slot++ {
			if slot > len(p.Widths) {
				row = append(row, "")
				continue
			}
			row = append(row, formatFloat(p.Width(slot)))
		}
		row = append(row,
			string(p.Unit),
			formatFloat(p.Total),
			strconv.Itoa(p.Count),
			p.Remark,
		)
		rows = append(rows, row)
	}
	return PatternHeaders, rows
}

// OverflowWidths returns the widths beyond the fifth slot, which the
// tabular layout cannot show.
func OverflowWidths(p model.CuttingPattern) []float64 {
	if len(p.Widths) <= model.MaxWidthSlots {
		return nil
	}
	return p.Widths[model.MaxWidthSlots:]
}

// ParseRemark reverses model.FormatRemark. Malformed entries are skipped.
func ParseRemark(remark string) []float64 {
	s := strings.TrimSpace(remark)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []float64
	for _, part := range strings.Split(s, ",") {
		w, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			continue
		}
		out = append(out, w)
	}
	return out
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
