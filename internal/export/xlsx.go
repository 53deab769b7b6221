package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/ReelCut/internal/model"
)

const (
	planSheet   = "Plan"
	unusedSheet = "Unused"
)

// ExportExcel writes the plan table and the unused demand to an .xlsx
// workbook. Patterns wider than five slots keep their extra widths in an
// additional "overflow" column.
func ExportExcel(path string, plan model.Plan) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), planSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(unusedSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	headers, rows := PatternRows(plan)
	headers = append(append([]string{}, headers...), "overflow")
	if err := writeRow(f, planSheet, 1, toCells(headers)); err != nil {
		return err
	}
	for i, row := range rows {
		cells := toCells(row)
		// Numeric cells stay numeric so the sheet can be summed.
		p := plan.Patterns[i]
		for slot := 1; slot <= model.MaxWidthSlots && slot <= len(p.Widths); slot++ {
			cells[slot-1] = p.Width(slot)
		}
		cells[6] = p.Total
		cells[7] = p.Count
		cells = append(cells, joinWidths(OverflowWidths(p)))
		if err := writeRow(f, planSheet, i+2, cells); err != nil {
			return err
		}
	}
	if err := styleHeader(f, planSheet, len(headers), header); err != nil {
		return err
	}
	if err := f.SetColWidth(planSheet, "I", "J", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := writeRow(f, unusedSheet, 1, []any{"width", "unit", "qty"}); err != nil {
		return err
	}
	for i, w := range sortedUnusedWidths(plan.Unused) {
		if err := writeRow(f, unusedSheet, i+2, []any{w, string(plan.Unit), plan.Unused[w]}); err != nil {
			return err
		}
	}
	if err := styleHeader(f, unusedSheet, 3, header); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func toCells(row []string) []any {
	cells := make([]any, len(row))
	for i, c := range row {
		cells[i] = c
	}
	return cells
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell reference: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return fmt.Errorf("cell reference: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}
