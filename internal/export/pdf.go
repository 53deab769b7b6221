// Package export writes slitting plans to PDF, label sheets, Excel
// workbooks and DXF drawings.
package export

import (
	"fmt"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/ReelCut/internal/model"
)

// stripColor represents an RGB color for one width on a reel strip.
type stripColor struct {
	R, G, B int
}

var stripColors = []stripColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Filler stock is drawn in grey so it stands apart from order widths.
var fillerColor = stripColor{R: 189, G: 189, B: 189}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	stripHeight  = 9.0
	stripGap     = 6.0
)

// ExportPDF renders the plan as a pattern table, one strip diagram per
// pattern scaled to the machine's maximum width, and a summary page.
func ExportPDF(path string, plan model.Plan, machine model.MachineSpec, settings model.Settings) error {
	if len(plan.Patterns) == 0 {
		return fmt.Errorf("no cutting patterns to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	y := renderHeader(pdf, plan, machine)
	renderPatternTable(pdf, plan, y+4)

	pdf.AddPage()
	renderStrips(pdf, plan, machine)

	pdf.AddPage()
	renderSummaryPage(pdf, plan, machine, settings)

	return pdf.OutputFileAndClose(path)
}

func renderHeader(pdf *fpdf.Fpdf, plan model.Plan, machine model.MachineSpec) float64 {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, fmt.Sprintf("Slitting Plan %s", plan.ID), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+11)
	line := fmt.Sprintf("Status: %s | Reels: %d | Machine: %s (%g-%g %s)",
		plan.Status, plan.TotalReels(), machine.Name, machine.LB, machine.UB, plan.Unit)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, line, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+18, pageWidth-marginRight, marginTop+18)
	return marginTop + 20
}

// renderPatternTable draws the width1..width5 table and returns the y
// position below it.
func renderPatternTable(pdf *fpdf.Fpdf, plan model.Plan, y float64) float64 {
	headers, rows := PatternRows(plan)
	colWidths := make([]float64, len(headers))
	for i := range colWidths {
		colWidths[i] = 22
	}
	colWidths[len(colWidths)-1] = pageWidth - marginLeft - marginRight - 22*float64(len(headers)-1)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	x := marginLeft
	for i, h := range headers {
		pdf.SetXY(x, y)
		pdf.CellFormat(colWidths[i], 6, h, "1", 0, "C", true, 0, "")
		x += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range rows {
		if y > pageHeight-marginBottom-6 {
			pdf.AddPage()
			y = marginTop
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		x = marginLeft
		for j, cell := range row {
			pdf.SetXY(x, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			x += colWidths[j]
		}
		y += 6
	}
	return y
}

// renderStrips draws each pattern as a horizontal bar across the machine
// width, one colored segment per slit reel.
func renderStrips(pdf *fpdf.Fpdf, plan model.Plan, machine model.MachineSpec) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(100, 8, "Slitting Layouts", "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight - 30
	scale := drawWidth / maxReelWidth(plan, machine)
	colors := widthColors(plan)

	y := marginTop + 14
	for i, p := range plan.Patterns {
		if y+stripHeight > pageHeight-marginBottom {
			pdf.AddPage()
			y = marginTop
		}

		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(marginLeft, y+2)
		pdf.CellFormat(28, 5, fmt.Sprintf("#%d  x%d", i+1, p.Count), "", 0, "L", false, 0, "")

		x := marginLeft + 30
		pdf.SetDrawColor(100, 100, 100)
		pdf.SetFillColor(250, 250, 250)
		pdf.SetLineWidth(0.3)
		pdf.Rect(x, y, machine.UB*scale, stripHeight, "FD")

		for _, seg := range layoutSegments(p) {
			col := colors[seg.width]
			if seg.filler {
				col = fillerColor
			}
			w := seg.width * scale
			pdf.SetFillColor(col.R, col.G, col.B)
			pdf.SetDrawColor(30, 30, 30)
			pdf.Rect(x, y, w, stripHeight, "FD")
			if w > 8 {
				pdf.SetFont("Helvetica", "", 6)
				label := fmt.Sprintf("%g", seg.width)
				lw := pdf.GetStringWidth(label)
				pdf.SetXY(x+(w-lw)/2, y+stripHeight/2-2)
				pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
			}
			x += w
		}
		y += stripHeight + stripGap
	}
	pdf.SetTextColor(0, 0, 0)
}

func renderSummaryPage(pdf *fpdf.Fpdf, plan model.Plan, machine model.MachineSpec, settings model.Settings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Plan Summary", "", 0, "L", false, 0, "")

	y := marginTop + 14
	items := []struct {
		label string
		value string
	}{
		{"Status", string(plan.Status)},
		{"Reels Used", fmt.Sprintf("%d", plan.TotalReels())},
		{"Lower Bound", fmt.Sprintf("%d", plan.LowerBound)},
		{"Distinct Patterns", fmt.Sprintf("%d", len(plan.Patterns))},
		{"Trim Loss", fmt.Sprintf("%.2f %s", plan.TrimLoss(machine.UB), plan.Unit)},
		{"Solve Time", plan.WallTime.String()},
		{"Workers", fmt.Sprintf("%d", settings.CPUWorkers)},
		{"Time Limit", fmt.Sprintf("%d s", settings.MaxTimeSeconds)},
		{"Max Per Reel", fmt.Sprintf("%d", settings.MaxPerReel)},
		{"Magnification", fmt.Sprintf("%d", settings.Magnification)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	if open := plan.Unused.Total(); open != 0 {
		y += 6
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, fmt.Sprintf("WARNING: %d reels of demand not placed", open), "", 0, "L", false, 0, "")
		y += 8
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, w := range sortedUnusedWidths(plan.Unused) {
			if plan.Unused[w] == 0 {
				continue
			}
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(200, 5, fmt.Sprintf("- %g %s: %d", w, plan.Unit, plan.Unused[w]), "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by ReelCut - Paper Reel Slitting Planner", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// segment is one slit position on a reel.
type segment struct {
	width  float64
	filler bool
}

// layoutSegments lists a pattern's widths, marking the ones that came
// from filler stock according to the remark.
func layoutSegments(p model.CuttingPattern) []segment {
	fillers := map[float64]int{}
	for _, w := range ParseRemark(p.Remark) {
		fillers[w]++
	}
	segs := make([]segment, 0, len(p.Widths))
	// Order widths first, fillers at the far edge.
	var tail []segment
	for _, w := range p.Widths {
		if fillers[w] > 0 {
			fillers[w]--
			tail = append(tail, segment{width: w, filler: true})
			continue
		}
		segs = append(segs, segment{width: w})
	}
	return append(segs, tail...)
}

func widthColors(plan model.Plan) map[float64]stripColor {
	var widths []float64
	seen := map[float64]bool{}
	for _, p := range plan.Patterns {
		for _, w := range p.Widths {
			if !seen[w] {
				seen[w] = true
				widths = append(widths, w)
			}
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(widths)))
	colors := make(map[float64]stripColor, len(widths))
	for i, w := range widths {
		colors[w] = stripColors[i%len(stripColors)]
	}
	return colors
}

func maxReelWidth(plan model.Plan, machine model.MachineSpec) float64 {
	w := machine.UB
	for _, p := range plan.Patterns {
		w = max(w, p.Total)
	}
	if w <= 0 {
		return 1
	}
	return w
}

func sortedUnusedWidths(u model.UnusedDemand) []float64 {
	widths := make([]float64, 0, len(u))
	for w := range u {
		widths = append(widths, w)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(widths)))
	return widths
}
