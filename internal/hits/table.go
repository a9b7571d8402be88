// internal/hits/table.go
package hits

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"taxassign/internal/metrics"
)

// Query is all hits of one query id, in input order.
type Query struct {
	ID   string
	Hits []Hit
}

// ReadTable reads a tab-separated hit table and groups records by query in
// order of first appearance. Queries need not be contiguous. Taxa are read
// from the 13th column for FormatAnnotated; otherwise they stay 0 until
// Resolve.
func ReadTable(r io.Reader, format Format) ([]Query, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var (
		out   []Query
		index = make(map[string]int)
	)
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("hit table: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(fields) == 1 && fields[0] == "" {
			continue
		}
		if len(fields) < blastColumns {
			return nil, fmt.Errorf("hit table line %d: want at least %d columns, got %d", line, blastColumns, len(fields))
		}
		if format == FormatAnnotated && len(fields) < annotatedColumns {
			return nil, fmt.Errorf("hit table line %d: annotated format needs a taxid in column %d", line, annotatedColumns)
		}
		h, err := parseHit(fields, format)
		if err != nil {
			return nil, fmt.Errorf("hit table line %d: %w", line, err)
		}
		i, ok := index[h.Query]
		if !ok {
			i = len(out)
			index[h.Query] = i
			out = append(out, Query{ID: h.Query})
		}
		h.pos = len(out[i].Hits)
		out[i].Hits = append(out[i].Hits, h)
	}
	return out, nil
}

// Subjects returns the set of subject ids referenced by qs.
func Subjects(qs []Query) map[string]struct{} {
	m := make(map[string]struct{})
	for _, q := range qs {
		for _, h := range q.Hits {
			m[h.Subject] = struct{}{}
		}
	}
	return m
}

// Resolve maps subjects through accessions (when non-nil; a mapped id
// overrides an annotated column) and drops hits left without a taxon. Queries
// are kept even when all their hits go. It returns the number of dropped hits.
func Resolve(qs []Query, accessions *AccessionMap, diag *metrics.Diagnostics) int {
	dropped := 0
	for qi := range qs {
		kept := qs[qi].Hits[:0]
		for _, h := range qs[qi].Hits {
			if accessions != nil {
				if id, ok := accessions.Lookup(h.Subject); ok {
					h.TaxID = id
				}
			}
			if h.TaxID == 0 {
				dropped++
				continue
			}
			kept = append(kept, h)
		}
		qs[qi].Hits = kept
	}
	diag.HitsDropped(metrics.ReasonUnresolvedSubject, dropped)
	return dropped
}
