// internal/transfer/table.go
package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"taxassign/internal/consensus"
)

// Row is one keyed line of a taxonomy table.
type Row struct {
	ID     string
	Values []string // one per rank column
}

// Table is a per-ORF taxonomy table as written by the assign command.
type Table struct {
	Key   string   // header of the id column
	Ranks []string // remaining header columns, coarse→fine
	Rows  []Row
}

// Column returns the index of a rank column (case-insensitive), or -1.
func (t *Table) Column(rank string) int {
	for i, r := range t.Ranks {
		if strings.EqualFold(r, rank) {
			return i
		}
	}
	return -1
}

// ReadTable parses a tab-separated taxonomy table with a header row. Empty
// cells and any spelling of "unclassified" are normalised to
// consensus.Unclassified.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("taxonomy table: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("taxonomy table: %w", err)
	}
	if len(head) < 2 {
		return nil, fmt.Errorf("taxonomy table: header needs an id column and at least one rank, got %d columns", len(head))
	}
	t := &Table{Key: head[0], Ranks: append([]string(nil), head[1:]...)}
	seen := make(map[string]struct{})
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("taxonomy table: %w", err)
		}
		id := rec[0]
		if _, dup := seen[id]; dup {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("taxonomy table: line %d: duplicate id %q", line, id)
		}
		seen[id] = struct{}{}
		vals := make([]string, len(rec)-1)
		for i, v := range rec[1:] {
			if v == "" || strings.EqualFold(v, consensus.Unclassified) {
				v = consensus.Unclassified
			}
			vals[i] = v
		}
		t.Rows = append(t.Rows, Row{ID: id, Values: vals})
	}
	return t, nil
}
