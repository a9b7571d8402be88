// internal/consensus/lca.go
package consensus

import (
	"taxassign/internal/hits"
	"taxassign/internal/taxonomy"
)

// lcaAssigner tries each assign rank from fine to coarse. At rank R only
// hits with pident >= threshold(R) take part; their lineages are truncated
// at R and intersected. A round is accepted when its hits agree through R,
// or when their common prefix is already finer than the next coarser
// assign rank. The coarsest round settles for whatever prefix is shared.
type lcaAssigner struct {
	report     []taxonomy.Rank
	assign     []taxonomy.Rank
	thresholds []float64
}

func (a *lcaAssigner) Assign(query string, hs []hits.Hit, lineages []taxonomy.Lineage) Assignment {
	rows := make([][]taxonomy.TaxID, 0, len(hs))
	for i := len(a.assign) - 1; i >= 0; i-- {
		rank, minIdent := a.assign[i], a.thresholds[i]
		rows = rows[:0]
		for j, h := range hs {
			if h.PIdent < minIdent {
				continue
			}
			l := lineages[j].Truncate(rank)
			rows = append(rows, l[:])
		}
		if len(rows) == 0 {
			continue
		}
		common, depth, agreed := Intersect(rows, 0)
		deepest := taxonomy.Rank(depth - 1)
		if !agreed && i > 0 && deepest <= a.assign[i-1] {
			continue
		}
		var l taxonomy.Lineage
		copy(l[:], common)
		return fromLineage(query, a.report, l, deepest)
	}
	return unclassified(query, a.report)
}
