// Package demand prepares solver input: it collapses raw orders into unique
// scaled widths and scales the stock catalog and machine capacity window
// into the same integer unit system.
package demand

import (
	"math"
	"sort"

	"github.com/piwi3910/ReelCut/internal/model"
)

// Scale converts a real-unit width to the integer solver domain.
func Scale(width float64, magnification int) int {
	return int(math.Round(width * float64(magnification)))
}

// Descale converts a scaled width back to real units.
func Descale(width, magnification int) float64 {
	return float64(width) / float64(magnification)
}

// Aggregate filters zero-quantity lines, scales widths and merges lines of
// equal width. The result is sorted by descending width.
func Aggregate(raw []model.RawOrder, magnification int) ([]model.Order, error) {
	if magnification <= 0 {
		return nil, model.NewInvalidInput("magnification", "must be positive, got %d", magnification)
	}
	for i, r := range raw {
		if r.Width <= 0 || math.IsNaN(r.Width) || math.IsInf(r.Width, 0) {
			return nil, model.NewInvalidInput("orders", "line %d: width must be positive, got %v", i+1, r.Width)
		}
		if r.Qty < 0 {
			return nil, model.NewInvalidInput("orders", "line %d: quantity must not be negative, got %d", i+1, r.Qty)
		}
	}

	qtyByWidth := make(map[int]int)
	for i, r := range raw {
		if r.Qty == 0 {
			continue
		}
		w := Scale(r.Width, magnification)
		if w <= 0 {
			return nil, model.NewInvalidInput("orders", "line %d: width %v rounds to zero at magnification %d", i+1, r.Width, magnification)
		}
		qtyByWidth[w] += r.Qty
	}

	orders := make([]model.Order, 0, len(qtyByWidth))
	for w, q := range qtyByWidth {
		orders = append(orders, model.Order{Width: w, Qty: q})
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].Width > orders[j].Width
	})
	return orders, nil
}

// TotalQuantity returns the summed quantity of all orders, which is also
// the number of candidate reels the model declares.
func TotalQuantity(orders []model.Order) int {
	total := 0
	for _, o := range orders {
		total += o.Qty
	}
	return total
}

// InitialUnused returns the unused-demand accumulator for a set of orders,
// keyed by real-unit width.
func InitialUnused(orders []model.Order, magnification int) model.UnusedDemand {
	unused := make(model.UnusedDemand, len(orders))
	for _, o := range orders {
		unused[Descale(o.Width, magnification)] = o.Qty
	}
	return unused
}
