package export

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piwi3910/ReelCut/internal/model"
)

func testMachine() model.MachineSpec {
	return model.MachineSpec{Name: "PM1", Unit: model.UnitInch, LB: 80, UB: 87}
}

// buildTestPlan creates a realistic slitting plan for testing.
func buildTestPlan() model.Plan {
	plan := model.NewPlan(model.UnitInch)
	plan.Status = model.StatusOptimal
	plan.LowerBound = 3
	plan.WallTime = 1500 * time.Millisecond
	plan.Patterns = []model.CuttingPattern{
		{Widths: []float64{30, 28, 25}, Total: 83, Unit: model.UnitInch, Remark: "[]", Count: 2},
		{Widths: []float64{40, 30, 10, 2}, Total: 82, Unit: model.UnitInch, Remark: "[2.0]", Count: 1},
	}
	plan.Unused = model.UnusedDemand{30: 0, 28: 0, 25: 0, 40: 0, 10: 0}
	plan.ReelsUsed = plan.TotalReels()
	return plan
}

func requireFile(t *testing.T, path string, minSize int64) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("file is empty")
	}
	if info.Size() < minSize {
		t.Errorf("file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.pdf")

	err := ExportPDF(path, buildTestPlan(), testMachine(), model.DefaultSettings())
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	requireFile(t, path, 1000)
}

func TestExportPDF_EmptyPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	plan := model.NewPlan(model.UnitInch)
	plan.Status = model.StatusInfeasible
	if err := ExportPDF(path, plan, testMachine(), model.DefaultSettings()); err == nil {
		t.Fatal("expected error for plan without patterns, got nil")
	}
}

func TestExportPDF_WithUnusedDemand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unused.pdf")

	plan := buildTestPlan()
	plan.Status = model.StatusFeasible
	plan.Unused[12] = 3

	if err := ExportPDF(path, plan, testMachine(), model.DefaultSettings()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	requireFile(t, path, 1000)
}

func TestExportPDF_ManyPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.pdf")

	plan := model.NewPlan(model.UnitMM)
	plan.Status = model.StatusOptimal
	for i := 0; i < 40; i++ {
		w := float64(500 + i*10)
		plan.Patterns = append(plan.Patterns, model.CuttingPattern{
			Widths: []float64{w, w, w, 2100 - 3*w},
			Total:  2100,
			Unit:   model.UnitMM,
			Remark: "[]",
			Count:  1,
		})
	}
	machine := model.MachineSpec{Name: "PM1", Unit: model.UnitMM, LB: 2032, UB: 2210}

	if err := ExportPDF(path, plan, machine, model.DefaultSettings()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	requireFile(t, path, 1000)
}

func TestLayoutSegments_FillersLast(t *testing.T) {
	p := model.CuttingPattern{Widths: []float64{40, 30, 10, 2}, Remark: "[2.0]"}

	segs := layoutSegments(p)
	if len(segs) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(segs))
	}
	last := segs[3]
	if last.width != 2 || !last.filler {
		t.Errorf("expected filler 2 last, got %+v", last)
	}
	for _, s := range segs[:3] {
		if s.filler {
			t.Errorf("unexpected filler segment %+v", s)
		}
	}
}

func TestLayoutSegments_FillerMatchingOrderWidth(t *testing.T) {
	// One of the two 2-inch slits is filler; the other belongs to an order.
	p := model.CuttingPattern{Widths: []float64{10, 2, 2}, Remark: "[2.0]"}

	fillers := 0
	for _, s := range layoutSegments(p) {
		if s.filler {
			fillers++
		}
	}
	if fillers != 1 {
		t.Errorf("expected exactly one filler segment, got %d", fillers)
	}
}

func TestWidthColors_Distinct(t *testing.T) {
	colors := widthColors(buildTestPlan())
	if len(colors) != 6 {
		t.Fatalf("expected 6 distinct widths, got %d", len(colors))
	}
	seen := map[string]bool{}
	for _, c := range colors {
		key := fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
		if seen[key] {
			t.Errorf("color %s assigned twice", key)
		}
		seen[key] = true
	}
}
