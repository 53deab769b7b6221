package engine

import (
	"github.com/piwi3910/ReelCut/internal/cpmodel"
	"github.com/piwi3910/ReelCut/internal/model"
)

// ReelModel is a built cutting-stock model together with the variable
// handles needed to decode a solver assignment.
type ReelModel struct {
	Model      *cpmodel.Model
	Orders     []model.Order
	Stock      []model.StockItem
	Window     model.CapacityWindow
	MaxPerReel int
	Reels      int // candidate reels, equal to the total order quantity
	LowerBound int // demand-only bound on the number of used reels

	OrderVars [][]cpmodel.Var // [order][reel]
	StockVars [][]cpmodel.Var // [stock][reel]
	ReelUsed  []cpmodel.Var   // [reel]
}

// BuildReelModel declares one candidate reel per unit of demand and
// constrains how orders and filler stock may be packed into them.
//
// Every order must be placed exactly, a reel holds at most maxPerReel items,
// a used reel's width lies inside the window while an unused reel stays
// empty, and used reels form a prefix of the reel range. The objective
// minimizes the number of used reels.
func BuildReelModel(orders []model.Order, stock []model.StockItem, window model.CapacityWindow, maxPerReel int) (*ReelModel, error) {
	if maxPerReel <= 0 {
		return nil, model.NewInvalidInput("max_per_reel", "must be positive, got %d", maxPerReel)
	}
	if window.UB <= 0 {
		return nil, model.NewInvalidInput("capacity.ub", "must be positive, got %d", window.UB)
	}
	if window.LB < 0 || window.LB > window.UB {
		return nil, model.NewInvalidInput("capacity", "window [%d, %d] is empty or negative", window.LB, window.UB)
	}
	reels := 0
	for i, o := range orders {
		if o.Width <= 0 || o.Qty <= 0 {
			return nil, model.NewInvalidInput("orders", "order %d: width and quantity must be positive, got %d x %d", i, o.Width, o.Qty)
		}
		reels += o.Qty
	}
	for i, s := range stock {
		if s.Width <= 0 {
			return nil, model.NewInvalidInput("stock", "item %d: width must be positive, got %d", i, s.Width)
		}
	}

	b := cpmodel.NewBuilder()
	cap64 := int64(maxPerReel)

	orderVars := make([][]cpmodel.Var, len(orders))
	for o := range orders {
		orderVars[o] = make([]cpmodel.Var, reels)
		for r := 0; r < reels; r++ {
			orderVars[o][r] = b.NewIntVar(0, cap64)
		}
	}
	reelUsed := make([]cpmodel.Var, reels)
	for r := range reelUsed {
		reelUsed[r] = b.NewBoolVar()
	}
	stockVars := make([][]cpmodel.Var, len(stock))
	for s := range stock {
		stockVars[s] = make([]cpmodel.Var, reels)
		for r := 0; r < reels; r++ {
			stockVars[s][r] = b.NewIntVar(0, cap64)
		}
	}

	// Demand is met exactly.
	for o, ord := range orders {
		b.AddEquality(cpmodel.NewLinearExpr().AddSum(orderVars[o]...), int64(ord.Qty))
	}

	// W(r): the packed width of reel r.
	reelWidth := func(r int) *cpmodel.LinearExpr {
		e := cpmodel.NewLinearExpr()
		for o, ord := range orders {
			e.AddTerm(orderVars[o][r], int64(ord.Width))
		}
		for s, st := range stock {
			e.AddTerm(stockVars[s][r], int64(st.Width))
		}
		return e
	}

	for r := 0; r < reels; r++ {
		items := cpmodel.NewLinearExpr()
		for o := range orders {
			items.Add(orderVars[o][r])
		}
		for s := range stock {
			items.Add(stockVars[s][r])
		}
		b.AddLessOrEqual(items, cap64)

		// used*lb <= W(r) <= used*ub
		b.AddLessOrEqual(reelWidth(r).AddTerm(reelUsed[r], -int64(window.UB)), 0)
		b.AddGreaterOrEqual(reelWidth(r).AddTerm(reelUsed[r], -int64(window.LB)), 0)

		if r > 0 {
			b.AddGreaterOrEqual(cpmodel.NewLinearExpr().Add(reelUsed[r-1]).AddTerm(reelUsed[r], -1), 0)
		}
	}

	total := cpmodel.NewLinearExpr().AddSum(reelUsed...)
	b.AddLessOrEqual(total, int64(reels))
	b.Minimize(total)

	for r := 0; r < reels; r++ {
		b.AddHint(reelUsed[r], 0)
		for s := range stock {
			b.AddHint(stockVars[s][r], 0)
		}
	}

	lb := min(model.EstimateReels(orders, window, maxPerReel).ReelsNeededMin, reels)
	b.SetObjectiveLowerBound(int64(lb))

	m, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &ReelModel{
		Model:      m,
		Orders:     orders,
		Stock:      stock,
		Window:     window,
		MaxPerReel: maxPerReel,
		Reels:      reels,
		LowerBound: lb,
		OrderVars:  orderVars,
		StockVars:  stockVars,
		ReelUsed:   reelUsed,
	}, nil
}
