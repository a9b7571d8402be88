// internal/taxonomy/lineage.go
package taxonomy

import (
	"context"
	"errors"

	"taxassign/internal/metrics"
)

// Lineage is a root→taxon path projected onto the rank vocabulary. A zero
// slot is a gap: the path has no node of that rank.
type Lineage [NumRanks]TaxID

// At returns the taxon at rank r (0 for a gap or an invalid rank).
func (l Lineage) At(r Rank) TaxID {
	if !r.Valid() {
		return 0
	}
	return l[r]
}

// Deepest returns the finest occupied rank, or NoRank for a root-only path.
func (l Lineage) Deepest() Rank {
	for r := Species; r >= 0; r-- {
		if l[r] != 0 {
			return r
		}
	}
	return NoRank
}

// Truncate clears every slot finer than r. Truncating at NoRank leaves only
// the root, i.e. an all-gap lineage.
func (l Lineage) Truncate(r Rank) Lineage {
	for i := int(r) + 1; i < NumRanks; i++ {
		l[i] = 0
	}
	return l
}

// Project builds a Lineage from a root-first node path.
func Project(path []Node) Lineage {
	var l Lineage
	for _, n := range path {
		if n.Rank.Valid() {
			l[n.Rank] = n.ID
		}
	}
	return l
}

// Resolver memoises lineages and names for one worker. It is not safe for
// concurrent use; give every worker its own.
type Resolver struct {
	store Store
	diag  *metrics.Diagnostics

	lineages map[TaxID]Lineage
	missing  map[TaxID]struct{}
	names    map[TaxID]string
}

// NewResolver wraps a store. diag may be nil.
func NewResolver(s Store, diag *metrics.Diagnostics) *Resolver {
	return &Resolver{
		store:    s,
		diag:     diag,
		lineages: make(map[TaxID]Lineage, 1024),
		missing:  make(map[TaxID]struct{}),
		names:    make(map[TaxID]string, 4096),
	}
}

// Lineage resolves id once and serves later calls from the memo. Unknown ids
// (and ids whose ancestors are unknown) return ErrNotFound every time.
func (r *Resolver) Lineage(ctx context.Context, id TaxID) (Lineage, error) {
	if l, ok := r.lineages[id]; ok {
		r.diag.CacheLookup(true)
		return l, nil
	}
	if _, ok := r.missing[id]; ok {
		r.diag.CacheLookup(true)
		return Lineage{}, ErrNotFound
	}
	r.diag.CacheLookup(false)

	path, err := Path(ctx, r.store, id)
	if errors.Is(err, ErrNotFound) {
		r.missing[id] = struct{}{}
		return Lineage{}, err
	}
	if err != nil {
		return Lineage{}, err
	}
	for _, n := range path {
		r.names[n.ID] = n.Name
	}
	l := Project(path)
	r.lineages[id] = l
	return l, nil
}

// Name returns the display name of a taxon seen through Lineage, falling
// back to the store.
func (r *Resolver) Name(ctx context.Context, id TaxID) string {
	if n, ok := r.names[id]; ok {
		return n
	}
	n, err := r.store.Node(ctx, id)
	if err != nil {
		return ""
	}
	r.names[id] = n.Name
	return n.Name
}
