package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/ReelCut/internal/model"
)

// DXF layout in drawing units (the plan's unit).
const (
	dxfReelHeight = 10.0
	dxfReelGap    = 5.0
	dxfTextHeight = 2.5
)

// ExportDXF draws each pattern as a slitting layout: the machine width as
// an outline on layer FRAME, knife positions on layer SLITS and the width
// annotations on layer TEXT. Patterns are stacked top to bottom.
func ExportDXF(path string, plan model.Plan, machine model.MachineSpec) error {
	if len(plan.Patterns) == 0 {
		return fmt.Errorf("no cutting patterns to export")
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer("FRAME", color.White, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("add layer: %w", err)
	}
	if _, err := d.AddLayer("SLITS", color.Red, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("add layer: %w", err)
	}
	if _, err := d.AddLayer("TEXT", color.Cyan, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("add layer: %w", err)
	}

	width := maxReelWidth(plan, machine)
	for i, p := range plan.Patterns {
		y0 := -float64(i) * (dxfReelHeight + dxfReelGap)
		y1 := y0 + dxfReelHeight

		if err := d.ChangeLayer("FRAME"); err != nil {
			return fmt.Errorf("change layer: %w", err)
		}
		if err := rect(d, 0, y0, width, y1); err != nil {
			return err
		}

		if err := d.ChangeLayer("SLITS"); err != nil {
			return fmt.Errorf("change layer: %w", err)
		}
		x := 0.0
		positions := make([]float64, 0, len(p.Widths))
		for _, seg := range layoutSegments(p) {
			positions = append(positions, x+seg.width/2)
			x += seg.width
			if _, err := d.Line(x, y0, 0, x, y1, 0); err != nil {
				return fmt.Errorf("draw slit: %w", err)
			}
		}

		if err := d.ChangeLayer("TEXT"); err != nil {
			return fmt.Errorf("change layer: %w", err)
		}
		for j, seg := range layoutSegments(p) {
			if _, err := d.Text(formatFloat(seg.width), positions[j], y0+dxfReelHeight/2, 0, dxfTextHeight); err != nil {
				return fmt.Errorf("draw label: %w", err)
			}
		}
		caption := fmt.Sprintf("#%d x%d total %g %s", i+1, p.Count, p.Total, p.Unit)
		if _, err := d.Text(caption, width+dxfReelGap, y0+dxfReelHeight/2, 0, dxfTextHeight); err != nil {
			return fmt.Errorf("draw caption: %w", err)
		}
	}

	return d.SaveAs(path)
}

func rect(d *drawing.Drawing, x0, y0, x1, y1 float64) error {
	edges := [][4]float64{
		{x0, y0, x1, y0},
		{x1, y0, x1, y1},
		{x1, y1, x0, y1},
		{x0, y1, x0, y0},
	}
	for _, e := range edges {
		if _, err := d.Line(e[0], e[1], 0, e[2], e[3], 0); err != nil {
			return fmt.Errorf("draw frame: %w", err)
		}
	}
	return nil
}
