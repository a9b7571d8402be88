// internal/hits/accession.go
package hits

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"taxassign/internal/fileio"
	"taxassign/internal/taxonomy"
)

// AccessionMap maps subject accessions to taxa. Read-only after loading.
type AccessionMap struct {
	m map[string]taxonomy.TaxID
}

// Lookup returns the taxon for a subject id.
func (a *AccessionMap) Lookup(subject string) (taxonomy.TaxID, bool) {
	if a == nil {
		return 0, false
	}
	id, ok := a.m[subject]
	return id, ok
}

// Len is the number of mapped accessions.
func (a *AccessionMap) Len() int {
	if a == nil {
		return 0
	}
	return len(a.m)
}

// NewAccessionMap builds a map from literal pairs.
func NewAccessionMap(m map[string]taxonomy.TaxID) *AccessionMap {
	return &AccessionMap{m: m}
}

// LoadAccessionFile opens path (gzip by extension) and loads it.
func LoadAccessionFile(path string, want map[string]struct{}) (*AccessionMap, error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	a, err := LoadAccessionMap(rc, want)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// LoadAccessionMap reads tab-separated rows. Two columns map accession →
// taxid; four columns (NCBI prot.accession2taxid) map both accession and
// accession.version to the third column. Header rows starting with
// "accession" are skipped. When want is non-nil only those accessions are
// kept.
func LoadAccessionMap(r io.Reader, want map[string]struct{}) (*AccessionMap, error) {
	a := &AccessionMap{m: make(map[string]taxonomy.TaxID, len(want))}
	keep := func(k string) bool {
		if want == nil {
			return true
		}
		_, ok := want[k]
		return ok
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		txt := sc.Text()
		if txt == "" || strings.HasPrefix(txt, "accession") {
			continue
		}
		f := strings.Split(txt, "\t")
		var keys []string
		var col string
		switch {
		case len(f) >= 4:
			keys, col = []string{f[0], f[1]}, f[2]
		case len(f) >= 2:
			keys, col = []string{f[0]}, f[1]
		default:
			return nil, fmt.Errorf("line %d: want 2 or 4 columns, got %d", line, len(f))
		}
		if !keep(keys[0]) && (len(keys) == 1 || !keep(keys[1])) {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(col), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: taxid: %w", line, err)
		}
		for _, k := range keys {
			if keep(k) {
				a.m[k] = taxonomy.TaxID(v)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return a, nil
}
