package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/ReelCut/internal/model"
)

func TestExportDXF_DrawsSlitsAndLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.dxf")
	plan := buildTestPlan()

	require.NoError(t, ExportDXF(path, plan, testMachine()))

	drawing, err := dxf.Open(path)
	require.NoError(t, err)

	var lines, texts int
	for _, e := range drawing.Entities() {
		switch e.(type) {
		case *entity.Line:
			lines++
		case *entity.Text:
			texts++
		}
	}
	// 4 frame edges per pattern plus one line per slit.
	assert.Equal(t, 2*4+3+4, lines)
	// One label per slit plus a caption per pattern.
	assert.Equal(t, 3+4+2, texts)
}

func TestExportDXF_EmptyPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dxf")
	assert.Error(t, ExportDXF(path, model.NewPlan(model.UnitInch), testMachine()))
}

func TestRect_DrawsClosedOutline(t *testing.T) {
	d := dxf.NewDrawing()
	require.NoError(t, rect(d, 0, 0, 87, 10))

	entities := d.Entities()
	require.Len(t, entities, 4)
	for _, e := range entities {
		_, ok := e.(*entity.Line)
		assert.True(t, ok, "expected a line, got %T", e)
	}
}
