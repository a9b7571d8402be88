// Package hits reads tabular similarity-search output, resolves subjects to
// taxa and applies the per-query significance filters.
package hits

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"taxassign/internal/taxonomy"
)

// Hit is one alignment record (BLAST tabular "outfmt 6" plus taxon).
type Hit struct {
	Query    string
	Subject  string
	PIdent   float64
	Length   int
	Mismatch int
	GapOpen  int
	QStart   int
	QEnd     int
	SStart   int
	SEnd     int
	EValue   float64
	BitScore float64
	TaxID    taxonomy.TaxID

	pos int // input position within the query, final tie-break
}

// Format selects how subjects are mapped to taxa.
type Format string

const (
	// FormatBLAST is plain 12-column output; taxa come from an accession map.
	FormatBLAST Format = "blast"
	// FormatAnnotated carries the subject taxid in a 13th column.
	FormatAnnotated Format = "annotated"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatBLAST:
		return FormatBLAST, nil
	case FormatAnnotated, "taxid":
		return FormatAnnotated, nil
	}
	return "", fmt.Errorf("unknown hit table format %q (want blast | annotated)", s)
}

const (
	blastColumns     = 12
	annotatedColumns = 13
)

// parseHit fills a Hit from one record. fields has at least 12 entries.
func parseHit(fields []string, format Format) (Hit, error) {
	var (
		h   Hit
		err error
	)
	h.Query = fields[0]
	h.Subject = fields[1]
	if h.PIdent, err = atof(fields[2], "pident"); err != nil {
		return h, err
	}
	ints := []*int{&h.Length, &h.Mismatch, &h.GapOpen, &h.QStart, &h.QEnd, &h.SStart, &h.SEnd}
	names := []string{"length", "mismatch", "gapopen", "qstart", "qend", "sstart", "send"}
	for i, p := range ints {
		if *p, err = atoi(fields[3+i], names[i]); err != nil {
			return h, err
		}
	}
	if h.EValue, err = atof(fields[10], "evalue"); err != nil {
		return h, err
	}
	if h.BitScore, err = atof(fields[11], "bitscore"); err != nil {
		return h, err
	}
	if h.PIdent < 0 || h.PIdent > 100 {
		return h, fmt.Errorf("pident %v out of range [0,100]", h.PIdent)
	}
	if h.EValue < 0 {
		return h, fmt.Errorf("negative evalue %v", h.EValue)
	}
	if h.BitScore <= 0 {
		return h, fmt.Errorf("bitscore %v must be positive", h.BitScore)
	}
	if format == FormatAnnotated && len(fields) >= annotatedColumns {
		h.TaxID = parseTaxID(fields[12])
	}
	return h, nil
}

// parseTaxID reads the first id of a ';'-separated list. Anything that is
// not a positive integer is unresolved (0).
func parseTaxID(s string) taxonomy.TaxID {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return taxonomy.TaxID(v)
}

func atof(s, col string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: %q is not a finite number", col, s)
	}
	return v, nil
}

func atoi(s, col string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		// Some aligners print integral columns as floats.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("%s: %w", col, err)
		}
		v = int(f)
	}
	return v, nil
}

// Less is the best-hit total order: bitscore desc, e-value asc, taxid asc,
// subject id asc, then input position.
func Less(a, b Hit) bool {
	if a.BitScore != b.BitScore {
		return a.BitScore > b.BitScore
	}
	if a.EValue != b.EValue {
		return a.EValue < b.EValue
	}
	if a.TaxID != b.TaxID {
		return a.TaxID < b.TaxID
	}
	if a.Subject != b.Subject {
		return a.Subject < b.Subject
	}
	return a.pos < b.pos
}

// Best returns the first hit under Less.
func Best(hs []Hit) (Hit, bool) {
	if len(hs) == 0 {
		return Hit{}, false
	}
	best := hs[0]
	for _, h := range hs[1:] {
		if Less(h, best) {
			best = h
		}
	}
	return best, true
}
