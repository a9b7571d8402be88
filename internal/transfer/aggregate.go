// internal/transfer/aggregate.go
package transfer

import (
	"context"
	"errors"
	"fmt"

	"taxassign/internal/consensus"
	"taxassign/internal/metrics"
	"taxassign/internal/pipeline"
)

// ErrUnknownRank is returned when IgnoreUnclassifiedAt names no table column.
var ErrUnknownRank = errors.New("rank is not a column of the taxonomy table")

// Options controls Aggregate.
type Options struct {
	// IgnoreUnclassifiedAt drops ORFs unclassified at this rank column from
	// the contig consensus. Empty keeps every ORF.
	IgnoreUnclassifiedAt string
	// Reverse also builds the contig-consistent ORF table.
	Reverse  bool
	Pipeline pipeline.Config
}

// Result holds the aggregated tables.
type Result struct {
	Ranks   []string
	Contigs []Row
	ORFs    []Row // nil unless Options.Reverse
}

type contigUnit struct {
	id   string
	orfs [][]string
}

// Aggregate computes one consensus row per contig by intersecting its member
// ORF rows coarse→fine; ranks past the first disagreement are unclassified.
// A contig whose ORFs were all ignored, or that has no ORF in the table, is
// unclassified at every rank. ORFs without a contig do not take part. Every
// contig of the membership is reported, in membership order.
func Aggregate(ctx context.Context, t *Table, m *Membership, opts Options, diag *metrics.Diagnostics) (*Result, error) {
	ignore := -1
	if opts.IgnoreUnclassifiedAt != "" {
		if ignore = t.Column(opts.IgnoreUnclassifiedAt); ignore < 0 {
			return nil, fmt.Errorf("%w: %q (columns: %v)", ErrUnknownRank, opts.IgnoreUnclassifiedAt, t.Ranks)
		}
	}

	members := make(map[string][][]string)
	orphans := 0
	for _, row := range t.Rows {
		c, ok := m.Contig(row.ID)
		if !ok {
			orphans++
			continue
		}
		members[c] = append(members[c], row.Values)
	}
	diag.ORFsIgnored(metrics.ReasonNoContig, orphans)

	units := make([]contigUnit, 0, len(m.Contigs()))
	for _, c := range m.Contigs() {
		units = append(units, contigUnit{id: c, orfs: members[c]})
	}

	width := len(t.Ranks)
	newWorker := func() pipeline.Worker[contigUnit, Row] {
		return func(ctx context.Context, u contigUnit) (Row, error) {
			if err := ctx.Err(); err != nil {
				return Row{}, err
			}
			return consensusRow(u, width, ignore, diag), nil
		}
	}
	contigs, err := pipeline.Run(ctx, opts.Pipeline, units, newWorker)
	if err != nil {
		return nil, err
	}

	res := &Result{Ranks: t.Ranks, Contigs: contigs}
	if opts.Reverse {
		res.ORFs = reverse(t, m, contigs)
	}
	return res, nil
}

func consensusRow(u contigUnit, width, ignore int, diag *metrics.Diagnostics) Row {
	rows := u.orfs
	if ignore >= 0 {
		kept := make([][]string, 0, len(rows))
		for _, r := range rows {
			if r[ignore] != consensus.Unclassified {
				kept = append(kept, r)
			}
		}
		diag.ORFsIgnored(metrics.ReasonUnclassifiedRank, len(rows)-len(kept))
		rows = kept
	}

	vals := make([]string, width)
	common, depth, _ := consensus.Intersect(rows, consensus.Unclassified)
	copy(vals, common)
	for i := depth; i < width; i++ {
		vals[i] = consensus.Unclassified
	}
	diag.Contig(depth > 0)
	return Row{ID: u.id, Values: vals}
}

// reverse gives every ORF the row of its contig. ORFs without a contig keep
// their own row. The source table is not modified.
func reverse(t *Table, m *Membership, contigs []Row) []Row {
	byContig := make(map[string][]string, len(contigs))
	for _, c := range contigs {
		byContig[c.ID] = c.Values
	}
	out := make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		vals := row.Values
		if c, ok := m.Contig(row.ID); ok {
			if cv, ok := byContig[c]; ok {
				vals = cv
			}
		}
		out[i] = Row{ID: row.ID, Values: append([]string(nil), vals...)}
	}
	return out
}
