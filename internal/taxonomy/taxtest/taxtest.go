// Package taxtest provides a small fixed taxonomy for tests.
package taxtest

import (
	"fmt"
	"strings"

	"taxassign/internal/taxonomy"
)

// Well-known ids of the fixture tree.
const (
	Root               taxonomy.TaxID = 1
	Cellular           taxonomy.TaxID = 131567
	Bacteria           taxonomy.TaxID = 2
	Archaea            taxonomy.TaxID = 2157
	Proteobacteria     taxonomy.TaxID = 1224
	Gamma              taxonomy.TaxID = 1236
	Enterobacterales   taxonomy.TaxID = 91347
	Enterobacteriaceae taxonomy.TaxID = 543
	Escherichia        taxonomy.TaxID = 561
	EColi              taxonomy.TaxID = 562
	EAlbertii          taxonomy.TaxID = 208962
	Salmonella         taxonomy.TaxID = 590
	SEnterica          taxonomy.TaxID = 28901
	Firmicutes         taxonomy.TaxID = 1239
	Eubacteriales      taxonomy.TaxID = 186802 // no class above it
	Lachnospiraceae    taxonomy.TaxID = 186803
	Blautia            taxonomy.TaxID = 572511
	BObeum             taxonomy.TaxID = 40520
	Euryarchaeota      taxonomy.TaxID = 28890
)

// Nodes returns the fixture rows.
func Nodes() []taxonomy.Node {
	return []taxonomy.Node{
		{ID: Root, Parent: Root, Rank: taxonomy.NoRank, Name: "root"},
		{ID: Cellular, Parent: Root, Rank: taxonomy.NoRank, Name: "cellular organisms"},
		{ID: Bacteria, Parent: Cellular, Rank: taxonomy.Superkingdom, Name: "Bacteria"},
		{ID: Archaea, Parent: Cellular, Rank: taxonomy.Superkingdom, Name: "Archaea"},
		{ID: Proteobacteria, Parent: Bacteria, Rank: taxonomy.Phylum, Name: "Proteobacteria"},
		{ID: Gamma, Parent: Proteobacteria, Rank: taxonomy.Class, Name: "Gammaproteobacteria"},
		{ID: Enterobacterales, Parent: Gamma, Rank: taxonomy.Order, Name: "Enterobacterales"},
		{ID: Enterobacteriaceae, Parent: Enterobacterales, Rank: taxonomy.Family, Name: "Enterobacteriaceae"},
		{ID: Escherichia, Parent: Enterobacteriaceae, Rank: taxonomy.Genus, Name: "Escherichia"},
		{ID: EColi, Parent: Escherichia, Rank: taxonomy.Species, Name: "Escherichia coli"},
		{ID: EAlbertii, Parent: Escherichia, Rank: taxonomy.Species, Name: "Escherichia albertii"},
		{ID: Salmonella, Parent: Enterobacteriaceae, Rank: taxonomy.Genus, Name: "Salmonella"},
		{ID: SEnterica, Parent: Salmonella, Rank: taxonomy.Species, Name: "Salmonella enterica"},
		{ID: Firmicutes, Parent: Bacteria, Rank: taxonomy.Phylum, Name: "Firmicutes"},
		{ID: Eubacteriales, Parent: Firmicutes, Rank: taxonomy.Order, Name: "Eubacteriales"},
		{ID: Lachnospiraceae, Parent: Eubacteriales, Rank: taxonomy.Family, Name: "Lachnospiraceae"},
		{ID: Blautia, Parent: Lachnospiraceae, Rank: taxonomy.Genus, Name: "Blautia"},
		{ID: BObeum, Parent: Blautia, Rank: taxonomy.Species, Name: "Blautia obeum"},
		{ID: Euryarchaeota, Parent: Archaea, Rank: taxonomy.Phylum, Name: "Euryarchaeota"},
	}
}

// Store builds the fixture as a MemStore.
func Store() *taxonomy.MemStore {
	s, err := taxonomy.NewMemStore(Nodes())
	if err != nil {
		panic(err)
	}
	return s
}

// NodesTSV is the fixture in LoadNodesTSV format.
func NodesTSV() string {
	var b strings.Builder
	for _, n := range Nodes() {
		fmt.Fprintf(&b, "%d\t%d\t%s\t%s\n", n.ID, n.Parent, n.Rank, n.Name)
	}
	return b.String()
}
