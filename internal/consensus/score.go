// internal/consensus/score.go
package consensus

import (
	"taxassign/internal/hits"
	"taxassign/internal/taxonomy"
)

// scoreAssigner copies the full lineage of the best hit (hits.Less order).
type scoreAssigner struct {
	report []taxonomy.Rank
}

func (a *scoreAssigner) Assign(query string, hs []hits.Hit, lineages []taxonomy.Lineage) Assignment {
	if len(hs) == 0 {
		return unclassified(query, a.report)
	}
	best := 0
	for i := 1; i < len(hs); i++ {
		if hits.Less(hs[i], hs[best]) {
			best = i
		}
	}
	return fromLineage(query, a.report, lineages[best], taxonomy.Species)
}
