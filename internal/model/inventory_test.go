package model

import "testing"

func TestNewStockPreset(t *testing.T) {
	sp := NewStockPreset("Filler 2in", 2.0, 50.8)

	if sp.ID == "" {
		t.Error("expected generated ID")
	}
	if sp.WidthIn(UnitInch) != 2.0 || sp.WidthIn(UnitMM) != 50.8 {
		t.Errorf("unexpected widths %+v", sp)
	}
	if sp.WidthIn(Unit("cm")) != 0 {
		t.Error("expected 0 for unsupported unit")
	}
}

func TestInventoryStockWidths(t *testing.T) {
	inv := Inventory{Stocks: []StockPreset{
		{ID: "a", Inch: 2, MM: 50.8},
		{ID: "b", Inch: 3},
	}}

	if got := inv.StockWidths(UnitInch); len(got) != 2 {
		t.Errorf("expected 2 inch widths, got %v", got)
	}
	if got := inv.StockWidths(UnitMM); len(got) != 1 || got[0] != 50.8 {
		t.Errorf("expected only the defined mm width, got %v", got)
	}
}

func TestInventoryLookups(t *testing.T) {
	inv := DefaultInventory()

	if inv.FindStockByID(inv.Stocks[1].ID) == nil {
		t.Error("expected to find stock by ID")
	}
	if inv.FindStockByID("missing") != nil {
		t.Error("expected nil for unknown ID")
	}
	if m := inv.FindMachine("PM1 mm"); m == nil || m.Unit != UnitMM {
		t.Errorf("expected PM1 mm, got %+v", m)
	}
	if inv.FindMachine("PM7") != nil {
		t.Error("expected nil for unknown machine")
	}
	if m := inv.MachineFor(UnitInch); m == nil || m.UB != 87 {
		t.Errorf("expected inch machine with ub 87, got %+v", m)
	}

	// Lookups return pointers into the inventory.
	inv.FindMachine("PM1 inch").UB = 90
	if inv.Machines[0].UB != 90 {
		t.Error("expected FindMachine to return an in-place pointer")
	}
}
