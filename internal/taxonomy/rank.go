// internal/taxonomy/rank.go
package taxonomy

import (
	"fmt"
	"strings"
)

// Rank is a position in the canonical coarse→fine rank vocabulary.
type Rank int8

// Canonical ranks, coarse to fine. NoRank sorts before everything and never
// occupies a lineage slot.
const (
	NoRank Rank = iota - 1
	Superkingdom
	Kingdom
	Phylum
	Class
	Order
	Family
	Genus
	Species
)

// NumRanks is the number of lineage slots.
const NumRanks = int(Species) + 1

var rankNames = [NumRanks]string{
	"superkingdom", "kingdom", "phylum", "class", "order", "family", "genus", "species",
}

var rankAliases = map[string]Rank{
	"domain": Superkingdom,
}

func (r Rank) String() string {
	if r < 0 || int(r) >= NumRanks {
		return "no rank"
	}
	return rankNames[r]
}

// Valid reports whether r occupies a lineage slot.
func (r Rank) Valid() bool { return r >= 0 && int(r) < NumRanks }

// ParseRank maps a rank name to the vocabulary. Unknown names are an error.
func ParseRank(s string) (Rank, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	for i, n := range rankNames {
		if n == k {
			return Rank(i), nil
		}
	}
	if r, ok := rankAliases[k]; ok {
		return r, nil
	}
	return NoRank, fmt.Errorf("unknown rank %q (want one of %s)", s, strings.Join(rankNames[:], ", "))
}

// rankOf is the lenient form used when reading stores: anything outside the
// vocabulary is NoRank.
func rankOf(s string) Rank {
	r, err := ParseRank(s)
	if err != nil {
		return NoRank
	}
	return r
}

// ParseRanks parses a list and requires strictly increasing (coarse→fine)
// order without duplicates.
func ParseRanks(names []string) ([]Rank, error) {
	out := make([]Rank, 0, len(names))
	for i, n := range names {
		r, err := ParseRank(n)
		if err != nil {
			return nil, err
		}
		if i > 0 && r <= out[i-1] {
			return nil, fmt.Errorf("ranks must be ordered coarse to fine without repeats: %q after %q", n, names[i-1])
		}
		out = append(out, r)
	}
	return out, nil
}

// RankNames renders ranks back to their canonical names.
func RankNames(rs []Rank) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.String()
	}
	return out
}
