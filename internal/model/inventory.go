package model

import "github.com/google/uuid"

// StockPreset is a reusable filler width kept in the local inventory.
// Widths are stored per unit, mirroring the stock catalog file layout.
type StockPreset struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Inch float64 `json:"inch"`
	MM   float64 `json:"mm"`
}

// NewStockPreset creates a new StockPreset with a generated ID.
func NewStockPreset(name string, inch, mm float64) StockPreset {
	return StockPreset{
		ID:   uuid.New().String()[:8],
		Name: name,
		Inch: inch,
		MM:   mm,
	}
}

// WidthIn returns the preset width in the given unit, or 0 if not defined.
func (sp StockPreset) WidthIn(u Unit) float64 {
	switch u {
	case UnitInch:
		return sp.Inch
	case UnitMM:
		return sp.MM
	default:
		return 0
	}
}

// Inventory holds the user's saved filler widths and machine profiles.
type Inventory struct {
	Stocks   []StockPreset `json:"stocks"`
	Machines []MachineSpec `json:"machines"`
}

// DefaultInventory returns an inventory populated with common defaults.
func DefaultInventory() Inventory {
	return Inventory{
		Stocks: []StockPreset{
			NewStockPreset("Filler 2in", 2.0, 50.8),
			NewStockPreset("Filler 3in", 3.0, 76.2),
			NewStockPreset("Filler 4in", 4.0, 101.6),
		},
		Machines: []MachineSpec{
			{Name: "PM1 inch", Unit: UnitInch, LB: 80, UB: 87},
			{Name: "PM1 mm", Unit: UnitMM, LB: 2032, UB: 2210},
		},
	}
}

// StockWidths returns every defined preset width for a unit.
func (inv *Inventory) StockWidths(u Unit) []float64 {
	var widths []float64
	for _, s := range inv.Stocks {
		if w := s.WidthIn(u); w > 0 {
			widths = append(widths, w)
		}
	}
	return widths
}

// FindStockByID returns a pointer to the stock preset with the given ID, or nil.
func (inv *Inventory) FindStockByID(id string) *StockPreset {
	for i := range inv.Stocks {
		if inv.Stocks[i].ID == id {
			return &inv.Stocks[i]
		}
	}
	return nil
}

// FindMachine returns the first machine spec matching name, or nil.
func (inv *Inventory) FindMachine(name string) *MachineSpec {
	for i := range inv.Machines {
		if inv.Machines[i].Name == name {
			return &inv.Machines[i]
		}
	}
	return nil
}

// MachineFor returns the first machine spec for the unit, or nil.
func (inv *Inventory) MachineFor(u Unit) *MachineSpec {
	for i := range inv.Machines {
		if inv.Machines[i].Unit == u {
			return &inv.Machines[i]
		}
	}
	return nil
}
