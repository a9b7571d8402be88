// internal/writers/table.go
package writers

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"taxassign/internal/consensus"
	"taxassign/internal/taxonomy"
	"taxassign/internal/transfer"
)

// Header keys of the tables.
const (
	QueryKey  = "query"
	ContigKey = "contig"
)

func init() {
	Register("tsv", WriteTSV)
}

// WriteTSV writes the taxonomy table: a header of "query" plus the report
// ranks, then one row per assignment with names (or taxids) or
// "unclassified".
func WriteTSV(w io.Writer, as []consensus.Assignment, opt Options) error {
	bw := bufio.NewWriter(w)
	writeLine(bw, QueryKey, taxonomy.RankNames(opt.Ranks))
	vals := make([]string, len(opt.Ranks))
	for _, a := range as {
		for i := range vals {
			vals[i] = a.Value(i, opt.ByTaxID)
		}
		writeLine(bw, a.Query, vals)
	}
	return bw.Flush()
}

// WriteRows writes a keyed table such as the contig consensus.
func WriteRows(w io.Writer, key string, ranks []string, rows []transfer.Row) error {
	bw := bufio.NewWriter(w)
	writeLine(bw, key, ranks)
	for _, r := range rows {
		writeLine(bw, r.ID, r.Values)
	}
	return ignoreBrokenPipe(bw.Flush())
}

// WriteBlob writes the best hit of every query that has one, in the
// blobtools hits layout: query, taxid, bitscore, then subject, pident and
// evalue.
func WriteBlob(w io.Writer, as []consensus.Assignment) error {
	bw := bufio.NewWriter(w)
	for _, a := range as {
		if !a.HasBest {
			continue
		}
		h := a.Best
		writeLine(bw, a.Query, []string{
			strconv.FormatInt(int64(h.TaxID), 10),
			ftoa(h.BitScore),
			h.Subject,
			ftoa(h.PIdent),
			ftoa(h.EValue),
		})
	}
	return ignoreBrokenPipe(bw.Flush())
}

// writeLine errors surface on Flush.
func writeLine(bw *bufio.Writer, key string, vals []string) {
	bw.WriteString(key)
	if len(vals) > 0 {
		bw.WriteByte('\t')
		bw.WriteString(strings.Join(vals, "\t"))
	}
	bw.WriteByte('\n')
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
