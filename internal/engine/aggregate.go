package engine

import (
	"sort"

	"github.com/piwi3910/ReelCut/internal/model"
)

// AggregatePatterns merges patterns that differ only in Count and sorts
// the result widest first: by first width, then second, and so on.
// Aggregating an already aggregated list returns it unchanged.
func AggregatePatterns(patterns []model.CuttingPattern) []model.CuttingPattern {
	index := make(map[string]int, len(patterns))
	out := make([]model.CuttingPattern, 0, len(patterns))
	for _, p := range patterns {
		key := p.Key()
		if i, ok := index[key]; ok {
			out[i].Count += p.Count
			continue
		}
		index[key] = len(out)
		p.Widths = append([]float64(nil), p.Widths...)
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return patternLess(out[i], out[j])
	})
	return out
}

// patternLess orders a before b when a's width sequence is larger.
// Missing slots count as zero.
func patternLess(a, b model.CuttingPattern) bool {
	n := max(len(a.Widths), len(b.Widths))
	for slot := 1; slot <= n; slot++ {
		wa, wb := a.Width(slot), b.Width(slot)
		if wa != wb {
			return wa > wb
		}
	}
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	if a.Unit != b.Unit {
		return a.Unit < b.Unit
	}
	return a.Remark < b.Remark
}
