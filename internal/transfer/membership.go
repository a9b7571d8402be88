// Package transfer lifts per-ORF taxonomy to contigs: it reads the ORF to
// contig membership, intersects member ORF lineages per contig and can
// propagate the contig consensus back to the ORFs.
package transfer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MembershipFormat selects how ReadMembership parses its input.
type MembershipFormat string

const (
	FormatAuto MembershipFormat = "auto"
	FormatGFF  MembershipFormat = "gff"
	FormatTSV  MembershipFormat = "tsv"
)

// ErrMembership marks malformed membership input.
var ErrMembership = errors.New("bad membership input")

// ParseMembershipFormat validates a format name ("" means auto).
func ParseMembershipFormat(s string) (MembershipFormat, error) {
	switch MembershipFormat(strings.ToLower(s)) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatGFF, "gff3":
		return FormatGFF, nil
	case FormatTSV:
		return FormatTSV, nil
	}
	return "", fmt.Errorf("unknown membership format %q (want auto | gff | tsv)", s)
}

// Membership maps ORF ids to contig ids.
type Membership struct {
	contig  map[string]string
	contigs []string // first-appearance order
	seen    map[string]struct{}
}

// Contig returns the contig an ORF belongs to.
func (m *Membership) Contig(orf string) (string, bool) {
	c, ok := m.contig[orf]
	return c, ok
}

// Contigs lists contig ids in input order.
func (m *Membership) Contigs() []string { return m.contigs }

// Len is the number of ORFs.
func (m *Membership) Len() int { return len(m.contig) }

func (m *Membership) add(contig, orf string) error {
	if prev, ok := m.contig[orf]; ok {
		if prev != contig {
			return fmt.Errorf("%w: ORF %q listed under contigs %q and %q", ErrMembership, orf, prev, contig)
		}
		return nil
	}
	if _, ok := m.seen[contig]; !ok {
		m.seen[contig] = struct{}{}
		m.contigs = append(m.contigs, contig)
	}
	m.contig[orf] = contig
	return nil
}

// ReadMembership parses a GFF (contig in column 1, ORF id built from the ID
// attribute) or a two-column contig/ORF table. FormatAuto decides from the
// first data line. Comment lines and blank lines are skipped; a GFF
// "##FASTA" section ends the input.
func ReadMembership(r io.Reader, format MembershipFormat) (*Membership, error) {
	m := &Membership{contig: make(map[string]string), seen: make(map[string]struct{})}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(text, "##FASTA") {
			break
		}
		if text == "" || text[0] == '#' {
			continue
		}
		f := strings.Split(text, "\t")
		if format == FormatAuto {
			switch {
			case len(f) >= 9:
				format = FormatGFF
			case len(f) == 2:
				format = FormatTSV
			default:
				return nil, fmt.Errorf("%w: line %d: %d columns, cannot tell GFF (9) from TSV (2)", ErrMembership, line, len(f))
			}
		}
		var contig, orf string
		switch format {
		case FormatGFF:
			if len(f) < 9 {
				return nil, fmt.Errorf("%w: line %d: GFF needs 9 columns, got %d", ErrMembership, line, len(f))
			}
			id, ok := gffID(f[8])
			if !ok {
				return nil, fmt.Errorf("%w: line %d: no ID attribute", ErrMembership, line)
			}
			contig = f[0]
			orf = contig + "_" + id[strings.LastIndexByte(id, '_')+1:]
		default:
			if len(f) < 2 {
				return nil, fmt.Errorf("%w: line %d: want contig<TAB>orf", ErrMembership, line)
			}
			contig, orf = f[0], f[1]
		}
		if err := m.add(contig, orf); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// gffID extracts the ID attribute from a GFF attributes column.
func gffID(attrs string) (string, bool) {
	for _, kv := range strings.Split(attrs, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if ok && k == "ID" && v != "" {
			return v, true
		}
	}
	return "", false
}
