// internal/consensus/classifier.go
package consensus

import (
	"context"
	"errors"

	"taxassign/internal/hits"
	"taxassign/internal/metrics"
	"taxassign/internal/taxonomy"
)

// Filters are the per-query significance settings.
type Filters struct {
	MaxEValue  float64
	TopPercent float64
}

// Classifier runs one query end to end: lineage lookup, significance
// filters, consensus and naming. It owns a Resolver, so each worker needs
// its own Classifier.
type Classifier struct {
	assigner Assigner
	filters  Filters
	resolver *taxonomy.Resolver
	diag     *metrics.Diagnostics

	lin map[taxonomy.TaxID]taxonomy.Lineage
}

// NewClassifier wires an Assigner to a per-worker Resolver. diag may be nil.
func NewClassifier(a Assigner, f Filters, r *taxonomy.Resolver, diag *metrics.Diagnostics) *Classifier {
	return &Classifier{
		assigner: a,
		filters:  f,
		resolver: r,
		diag:     diag,
		lin:      make(map[taxonomy.TaxID]taxonomy.Lineage),
	}
}

// Classify assigns q. Hits whose taxon is absent from the taxonomy are
// dropped before filtering; a query with nothing left is unclassified.
func (c *Classifier) Classify(ctx context.Context, q hits.Query) (Assignment, error) {
	if err := ctx.Err(); err != nil {
		return Assignment{}, err
	}
	clear(c.lin)
	known := make([]hits.Hit, 0, len(q.Hits))
	missing := 0
	for _, h := range q.Hits {
		l, err := c.resolver.Lineage(ctx, h.TaxID)
		if errors.Is(err, taxonomy.ErrNotFound) {
			missing++
			continue
		}
		if err != nil {
			return Assignment{}, err
		}
		c.lin[h.TaxID] = l
		known = append(known, h)
	}
	c.diag.HitsDropped(metrics.ReasonMissingTaxon, missing)

	kept, st := hits.Filter(known, c.filters.MaxEValue, c.filters.TopPercent)
	c.diag.HitsDropped(metrics.ReasonEValue, st.EValue)
	c.diag.HitsDropped(metrics.ReasonTopPercent, st.Top)

	ls := make([]taxonomy.Lineage, len(kept))
	for i, h := range kept {
		ls[i] = c.lin[h.TaxID]
	}
	a := c.assigner.Assign(q.ID, kept, ls)
	a.Best, a.HasBest = hits.Best(kept)
	c.Name(ctx, &a)
	c.diag.Query(a.Classified())
	return a, nil
}

// Name fills the display name of every assigned call.
func (c *Classifier) Name(ctx context.Context, a *Assignment) {
	for i := range a.Calls {
		if a.Calls[i].State == StateAssigned {
			a.Calls[i].Name = c.resolver.Name(ctx, a.Calls[i].TaxID)
		}
	}
}
