package model

// ReelEstimate holds a demand-only lower bound on the number of reels needed.
// Filler stock only adds width and items, so neither bound can be beaten.
type ReelEstimate struct {
	TotalWidth     int     `json:"total_width"`      // Summed scaled width of all demand
	TotalItems     int     `json:"total_items"`      // Summed order quantity
	ByWidth        int     `json:"by_width"`         // ceil(TotalWidth / UB)
	ByItems        int     `json:"by_items"`         // ceil(TotalItems / MaxPerReel)
	ReelsNeededMin int     `json:"reels_needed_min"` // max(ByWidth, ByItems)
	TrimLossPct    float64 `json:"trim_loss_pct"`    // Expected loss at ReelsNeededMin reels of UB width
}

// EstimateReels computes the lower bound for a set of scaled orders.
func EstimateReels(orders []Order, window CapacityWindow, maxPerReel int) ReelEstimate {
	var est ReelEstimate
	for _, o := range orders {
		est.TotalWidth += o.Width * o.Qty
		est.TotalItems += o.Qty
	}
	if window.UB > 0 {
		est.ByWidth = ceilDiv(est.TotalWidth, window.UB)
	}
	if maxPerReel > 0 {
		est.ByItems = ceilDiv(est.TotalItems, maxPerReel)
	}
	est.ReelsNeededMin = max(est.ByWidth, est.ByItems)

	if est.ReelsNeededMin > 0 && window.UB > 0 {
		capacity := float64(est.ReelsNeededMin * window.UB)
		est.TrimLossPct = (capacity - float64(est.TotalWidth)) / capacity * 100.0
	}
	return est
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
