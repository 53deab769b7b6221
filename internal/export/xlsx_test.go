package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/ReelCut/internal/model"
)

func TestExportExcel_WritesPlanAndUnusedSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	plan := buildTestPlan()
	plan.Unused[12] = 3

	require.NoError(t, ExportExcel(path, plan))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Plan", "Unused"}, f.GetSheetList())

	rows, err := f.GetRows("Plan")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "width1", rows[0][0])
	assert.Equal(t, "overflow", rows[0][9])
	assert.Equal(t, "40", rows[2][0])
	assert.Equal(t, "82", rows[2][6])
	assert.Equal(t, "[2.0]", rows[2][8])

	unused, err := f.GetRows("Unused")
	require.NoError(t, err)
	require.Len(t, unused, 7)
	assert.Equal(t, []string{"width", "unit", "qty"}, unused[0])
}

func TestExportExcel_OverflowColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.xlsx")
	plan := model.NewPlan(model.UnitInch)
	plan.Patterns = []model.CuttingPattern{
		{Widths: []float64{20, 15, 15, 10, 10, 8, 6}, Total: 84, Unit: model.UnitInch, Remark: "[]", Count: 1},
	}

	require.NoError(t, ExportExcel(path, plan))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue("Plan", "J2")
	require.NoError(t, err)
	assert.Equal(t, "8 + 6", value)
}
