// internal/taxonomy/memstore.go
package taxonomy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// MemStore is an immutable in-memory tree.
type MemStore struct {
	nodes map[TaxID]Node
	root  TaxID
}

// NewMemStore validates that nodes form a single-rooted tree.
func NewMemStore(nodes []Node) (*MemStore, error) {
	m := &MemStore{nodes: make(map[TaxID]Node, len(nodes))}
	for _, n := range nodes {
		if _, dup := m.nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate taxon %d", n.ID)
		}
		m.nodes[n.ID] = n
		if n.IsRoot() {
			if m.root != 0 {
				return nil, fmt.Errorf("multiple roots: %d and %d", m.root, n.ID)
			}
			m.root = n.ID
		}
	}
	if len(nodes) > 0 && m.root == 0 {
		return nil, fmt.Errorf("taxonomy has no root")
	}
	ctx := context.Background()
	for _, n := range nodes {
		if !n.IsRoot() {
			if _, ok := m.nodes[n.Parent]; !ok {
				return nil, fmt.Errorf("taxon %d: parent %d: %w", n.ID, n.Parent, ErrNotFound)
			}
		}
		if _, err := Path(ctx, m, n.ID); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Node implements Store.
func (m *MemStore) Node(_ context.Context, id TaxID) (Node, error) {
	n, ok := m.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return n, nil
}

// Len is the number of taxa.
func (m *MemStore) Len() int { return len(m.nodes) }

// Close implements Store.
func (m *MemStore) Close() error { return nil }

// LoadNodesFile reads a nodes TSV from disk.
func LoadNodesFile(path string) (*MemStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := LoadNodesTSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadNodesTSV reads "taxid<TAB>parent<TAB>rank<TAB>name" rows. Blank lines
// and '#' comments are skipped.
func LoadNodesTSV(r io.Reader) (*MemStore, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var nodes []Node
	line := 0
	for sc.Scan() {
		line++
		txt := strings.TrimRight(sc.Text(), "\r")
		if txt == "" || strings.HasPrefix(txt, "#") {
			continue
		}
		f := strings.Split(txt, "\t")
		if len(f) < 4 {
			return nil, fmt.Errorf("line %d: want 4 columns, got %d", line, len(f))
		}
		id, err := strconv.ParseInt(strings.TrimSpace(f[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: taxid: %w", line, err)
		}
		parent, err := strconv.ParseInt(strings.TrimSpace(f[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parent: %w", line, err)
		}
		nodes = append(nodes, Node{
			ID:     TaxID(id),
			Parent: TaxID(parent),
			Rank:   rankOf(f[2]),
			Name:   strings.TrimSpace(f[3]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return NewMemStore(nodes)
}
