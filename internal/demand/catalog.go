package demand

import (
	"math"
	"sort"

	"github.com/piwi3910/ReelCut/internal/model"
)

// Catalog is the scaled capacity data the model builder consumes: the
// filler widths that may pad a reel and the machine's width window.
type Catalog struct {
	Stock  []model.StockItem
	Window model.CapacityWindow
}

// NewCatalog scales the stock widths and the machine spec together.
func NewCatalog(stockWidths []float64, spec model.MachineSpec, magnification int) (Catalog, error) {
	stock, err := ScaleStock(stockWidths, magnification)
	if err != nil {
		return Catalog{}, err
	}
	window, err := ScaleWindow(spec, magnification)
	if err != nil {
		return Catalog{}, err
	}
	return Catalog{Stock: stock, Window: window}, nil
}

// ScaleStock scales filler widths, drops duplicates and sorts them widest first.
func ScaleStock(widths []float64, magnification int) ([]model.StockItem, error) {
	if magnification <= 0 {
		return nil, model.NewInvalidInput("magnification", "must be positive, got %d", magnification)
	}
	seen := make(map[int]bool, len(widths))
	items := make([]model.StockItem, 0, len(widths))
	for i, w := range widths {
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, model.NewInvalidInput("stock", "entry %d: width must be positive, got %v", i+1, w)
		}
		sw := Scale(w, magnification)
		if sw <= 0 {
			return nil, model.NewInvalidInput("stock", "entry %d: width %v rounds to zero at magnification %d", i+1, w, magnification)
		}
		if seen[sw] {
			continue
		}
		seen[sw] = true
		items = append(items, model.StockItem{Width: sw})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Width > items[j].Width
	})
	return items, nil
}

// ScaleWindow converts a machine spec into a scaled capacity window.
func ScaleWindow(spec model.MachineSpec, magnification int) (model.CapacityWindow, error) {
	if magnification <= 0 {
		return model.CapacityWindow{}, model.NewInvalidInput("magnification", "must be positive, got %d", magnification)
	}
	if spec.UB <= 0 {
		return model.CapacityWindow{}, model.NewInvalidInput("capacity.ub", "missing or non-positive upper bound")
	}
	if spec.LB < 0 {
		return model.CapacityWindow{}, model.NewInvalidInput("capacity.lb", "must not be negative, got %v", spec.LB)
	}
	window := model.CapacityWindow{
		LB: Scale(spec.LB, magnification),
		UB: Scale(spec.UB, magnification),
	}
	if window.LB > window.UB {
		return model.CapacityWindow{}, model.NewInvalidInput("capacity", "lb %v exceeds ub %v", spec.LB, spec.UB)
	}
	return window, nil
}

// SelectMachine returns the first machine spec for the given unit.
func SelectMachine(specs []model.MachineSpec, unit model.Unit) (model.MachineSpec, error) {
	for _, s := range specs {
		if s.Unit == unit {
			return s, nil
		}
	}
	return model.MachineSpec{}, model.NewInvalidInput("machine_specs", "no machine spec for unit %q", unit)
}
