// internal/consensus/vote.go
package consensus

import (
	"taxassign/internal/hits"
	"taxassign/internal/taxonomy"
)

// voteAssigner takes one vote per hit at every report rank. The plurality
// candidate is kept when its share strictly exceeds the threshold; a hit
// with no node at the rank votes for the gap. The first rank that fails
// leaves it and every finer rank unclassified.
type voteAssigner struct {
	report    []taxonomy.Rank
	threshold float64
}

func (a *voteAssigner) Assign(query string, hs []hits.Hit, lineages []taxonomy.Lineage) Assignment {
	out := unclassified(query, a.report)
	if len(hs) == 0 {
		return out
	}
	counts := make(map[taxonomy.TaxID]int, len(lineages))
	total := float64(len(lineages))
	for i, r := range a.report {
		clear(counts)
		for _, l := range lineages {
			counts[l.At(r)]++
		}
		winner, n := plurality(counts)
		if float64(n)/total <= a.threshold {
			break
		}
		if winner == 0 {
			out.Calls[i] = Call{Rank: r, State: StateGap}
		} else {
			out.Calls[i] = Call{Rank: r, State: StateAssigned, TaxID: winner}
		}
	}
	normalise(out.Calls)
	return out
}

// plurality returns the most voted candidate. Ties go to the lowest taxid,
// and the gap (0) loses every tie.
func plurality(counts map[taxonomy.TaxID]int) (taxonomy.TaxID, int) {
	var (
		best  taxonomy.TaxID
		bestN int
	)
	for id, n := range counts {
		if n < bestN || (n == bestN && !beats(id, best)) {
			continue
		}
		best, bestN = id, n
	}
	return best, bestN
}

func beats(id, cur taxonomy.TaxID) bool {
	switch {
	case id == 0:
		return false
	case cur == 0:
		return true
	}
	return id < cur
}
