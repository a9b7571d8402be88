// internal/consensus/assignment.go
package consensus

import (
	"strconv"

	"taxassign/internal/hits"
	"taxassign/internal/taxonomy"
)

// Unclassified is the literal written for ranks below the assignment.
const Unclassified = "unclassified"

// State of one report rank.
type State uint8

const (
	// StateUnclassified: below the resolution of the assignment.
	StateUnclassified State = iota
	// StateAssigned: a taxon was assigned at this rank.
	StateAssigned
	// StateGap: the resolved lineage has no node of this rank. It renders as
	// unclassified but does not truncate finer ranks.
	StateGap
)

// Call is the outcome at one report rank.
type Call struct {
	Rank  taxonomy.Rank
	State State
	TaxID taxonomy.TaxID
	Name  string
}

// Assignment is the consensus for one query (or contig).
type Assignment struct {
	Query string
	Calls []Call

	// Best is the best surviving hit, when there is one.
	Best    hits.Hit
	HasBest bool
}

// Classified reports whether any rank was assigned.
func (a Assignment) Classified() bool {
	for _, c := range a.Calls {
		if c.State == StateAssigned {
			return true
		}
	}
	return false
}

// Resolution is the finest assigned report rank, or NoRank.
func (a Assignment) Resolution() taxonomy.Rank {
	res := taxonomy.NoRank
	for _, c := range a.Calls {
		if c.State == StateAssigned {
			res = c.Rank
		}
	}
	return res
}

// Monotonic reports whether no rank is assigned (or a gap) below an
// unclassified one.
func (a Assignment) Monotonic() bool {
	seenUnc := false
	for _, c := range a.Calls {
		switch c.State {
		case StateUnclassified:
			seenUnc = true
		default:
			if seenUnc {
				return false
			}
		}
	}
	return true
}

// Value renders call i as a name (or taxid when byID is set).
func (a Assignment) Value(i int, byID bool) string {
	c := a.Calls[i]
	if c.State != StateAssigned {
		return Unclassified
	}
	if byID || c.Name == "" {
		return strconv.FormatInt(int64(c.TaxID), 10)
	}
	return c.Name
}

// unclassified returns an all-unclassified assignment.
func unclassified(query string, report []taxonomy.Rank) Assignment {
	calls := make([]Call, len(report))
	for i, r := range report {
		calls[i] = Call{Rank: r}
	}
	return Assignment{Query: query, Calls: calls}
}

// fromLineage projects l onto report ranks, treating slots finer than depth
// as unclassified, then normalises trailing gaps.
func fromLineage(query string, report []taxonomy.Rank, l taxonomy.Lineage, depth taxonomy.Rank) Assignment {
	a := unclassified(query, report)
	for i, r := range report {
		if r > depth {
			break
		}
		if id := l.At(r); id != 0 {
			a.Calls[i] = Call{Rank: r, State: StateAssigned, TaxID: id}
		} else {
			a.Calls[i] = Call{Rank: r, State: StateGap}
		}
	}
	normalise(a.Calls)
	return a
}

// normalise turns gaps after the last assigned rank into unclassified, and
// everything after the first unclassified rank into unclassified.
func normalise(calls []Call) {
	last := -1
	for i, c := range calls {
		if c.State == StateUnclassified {
			break
		}
		if c.State == StateAssigned {
			last = i
		}
	}
	for i := last + 1; i < len(calls); i++ {
		calls[i] = Call{Rank: calls[i].Rank}
	}
}
