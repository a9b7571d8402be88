// Package taxonomy is the read-only lookup service over the taxonomic tree.
//
// Stores are immutable once opened and safe for concurrent readers. Lineages
// are projected onto the fixed rank vocabulary (see Rank) and memoised per
// worker by a Resolver.
package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// TaxID identifies a taxon.
type TaxID int64

// Node is one taxon of the tree. The root's Parent is itself or 0.
type Node struct {
	ID     TaxID
	Parent TaxID
	Rank   Rank
	Name   string
}

// IsRoot reports whether n terminates a parent walk.
func (n Node) IsRoot() bool { return n.Parent == n.ID || n.Parent == 0 }

// ErrNotFound is returned for a taxon id the store does not know.
var ErrNotFound = errors.New("taxon not found")

// ErrCycle is returned when a parent walk does not reach the root.
var ErrCycle = errors.New("taxonomy parent walk did not terminate")

// maxDepth bounds parent walks.
const maxDepth = 512

// Store is the minimal capability the assigner needs.
type Store interface {
	Node(ctx context.Context, id TaxID) (Node, error)
	Close() error
}

// LineageStore is implemented by stores that can return a whole root→taxon
// path in one call.
type LineageStore interface {
	Lineage(ctx context.Context, id TaxID) ([]Node, error)
}

// Open picks a backend from the file name: .sqlite/.db → SQLiteStore,
// anything else is read as a nodes TSV into a MemStore.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".sqlite3", ".db":
		return OpenSQLite(path)
	default:
		return LoadNodesFile(path)
	}
}

// Path walks parents from id to the root and returns the nodes root first.
func Path(ctx context.Context, s Store, id TaxID) ([]Node, error) {
	if ls, ok := s.(LineageStore); ok {
		return ls.Lineage(ctx, id)
	}
	var rev []Node
	cur := id
	for depth := 0; ; depth++ {
		if depth >= maxDepth {
			return nil, fmt.Errorf("%w: taxon %d", ErrCycle, id)
		}
		n, err := s.Node(ctx, cur)
		if err != nil {
			return nil, err
		}
		rev = append(rev, n)
		if n.IsRoot() {
			break
		}
		cur = n.Parent
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev, nil
}
