package model

import (
	"math"
	"testing"
)

func TestEstimateReelsBasic(t *testing.T) {
	orders := []Order{{Width: 1000, Qty: 3}, {Width: 200, Qty: 2}}
	est := EstimateReels(orders, CapacityWindow{LB: 800, UB: 1200}, 5)

	if est.TotalWidth != 3400 {
		t.Errorf("expected total width 3400, got %d", est.TotalWidth)
	}
	if est.TotalItems != 5 {
		t.Errorf("expected 5 items, got %d", est.TotalItems)
	}
	if est.ByWidth != 3 {
		t.Errorf("expected 3 reels by width, got %d", est.ByWidth)
	}
	if est.ByItems != 1 {
		t.Errorf("expected 1 reel by items, got %d", est.ByItems)
	}
	if est.ReelsNeededMin != 3 {
		t.Errorf("expected 3 reels minimum, got %d", est.ReelsNeededMin)
	}

	expectedLoss := (3600.0 - 3400.0) / 3600.0 * 100
	if math.Abs(est.TrimLossPct-expectedLoss) > 1e-9 {
		t.Errorf("expected trim loss %.3f%%, got %.3f%%", expectedLoss, est.TrimLossPct)
	}
}

func TestEstimateReelsItemBound(t *testing.T) {
	est := EstimateReels([]Order{{Width: 1, Qty: 7}}, CapacityWindow{LB: 0, UB: 100}, 2)

	if est.ByItems != 4 || est.ReelsNeededMin != 4 {
		t.Errorf("expected item cap to dominate with 4 reels, got %+v", est)
	}
}

func TestEstimateReelsEmpty(t *testing.T) {
	est := EstimateReels(nil, CapacityWindow{LB: 8, UB: 12}, 5)

	if est.ReelsNeededMin != 0 {
		t.Errorf("expected 0 reels, got %d", est.ReelsNeededMin)
	}
	if est.TrimLossPct != 0 {
		t.Errorf("expected no trim loss, got %f", est.TrimLossPct)
	}
}

func TestEstimateReelsExactFit(t *testing.T) {
	est := EstimateReels([]Order{{Width: 6, Qty: 4}}, CapacityWindow{LB: 12, UB: 12}, 5)

	if est.ReelsNeededMin != 2 {
		t.Errorf("expected 2 reels, got %d", est.ReelsNeededMin)
	}
	if est.TrimLossPct != 0 {
		t.Errorf("expected zero loss for exact fit, got %f", est.TrimLossPct)
	}
}

func TestEstimateReelsZeroLimits(t *testing.T) {
	est := EstimateReels([]Order{{Width: 6, Qty: 4}}, CapacityWindow{}, 0)

	if est.ByWidth != 0 || est.ByItems != 0 {
		t.Errorf("expected no bound without limits, got %+v", est)
	}
}
