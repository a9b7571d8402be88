package taxonomy_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"taxassign/internal/metrics"
	"taxassign/internal/taxonomy"
	"taxassign/internal/taxonomy/taxtest"
)

func TestParseRank(t *testing.T) {
	r, err := taxonomy.ParseRank("Genus")
	require.NoError(t, err)
	assert.Equal(t, taxonomy.Genus, r)

	r, err = taxonomy.ParseRank("domain")
	require.NoError(t, err)
	assert.Equal(t, taxonomy.Superkingdom, r)

	_, err = taxonomy.ParseRank("clade")
	assert.Error(t, err)
}

func TestParseRanks_Order(t *testing.T) {
	rs, err := taxonomy.ParseRanks([]string{"phylum", "genus", "species"})
	require.NoError(t, err)
	assert.Equal(t, []taxonomy.Rank{taxonomy.Phylum, taxonomy.Genus, taxonomy.Species}, rs)

	_, err = taxonomy.ParseRanks([]string{"genus", "phylum"})
	assert.Error(t, err, "out of order")

	_, err = taxonomy.ParseRanks([]string{"genus", "genus"})
	assert.Error(t, err, "duplicate")
}

func TestMemStore_RejectsBadTrees(t *testing.T) {
	_, err := taxonomy.NewMemStore([]taxonomy.Node{
		{ID: 1, Parent: 1}, {ID: 2, Parent: 2},
	})
	assert.ErrorContains(t, err, "multiple roots")

	_, err = taxonomy.NewMemStore([]taxonomy.Node{
		{ID: 1, Parent: 1}, {ID: 2, Parent: 3},
	})
	assert.ErrorIs(t, err, taxonomy.ErrNotFound)

	_, err = taxonomy.NewMemStore([]taxonomy.Node{
		{ID: 1, Parent: 1}, {ID: 2, Parent: 3}, {ID: 3, Parent: 2},
	})
	assert.ErrorIs(t, err, taxonomy.ErrCycle)
}

func TestPathAndProject(t *testing.T) {
	s := taxtest.Store()
	path, err := taxonomy.Path(context.Background(), s, taxtest.EColi)
	require.NoError(t, err)
	require.Equal(t, taxtest.Root, path[0].ID)
	require.Equal(t, taxtest.EColi, path[len(path)-1].ID)

	l := taxonomy.Project(path)
	assert.Equal(t, taxtest.Bacteria, l.At(taxonomy.Superkingdom))
	assert.Equal(t, taxtest.Escherichia, l.At(taxonomy.Genus))
	assert.Equal(t, taxtest.EColi, l.At(taxonomy.Species))
	assert.Equal(t, taxonomy.TaxID(0), l.At(taxonomy.Kingdom), "kingdom is a gap")
	assert.Equal(t, taxonomy.Species, l.Deepest())

	tr := l.Truncate(taxonomy.Genus)
	assert.Equal(t, taxonomy.TaxID(0), tr.At(taxonomy.Species))
	assert.Equal(t, taxtest.Escherichia, tr.At(taxonomy.Genus))
	assert.Equal(t, taxonomy.NoRank, l.Truncate(taxonomy.NoRank).Deepest())
}

func TestResolver_Memoises(t *testing.T) {
	diag := metrics.New()
	r := taxonomy.NewResolver(taxtest.Store(), diag)
	ctx := context.Background()

	a, err := r.Lineage(ctx, taxtest.BObeum)
	require.NoError(t, err)
	b, err := r.Lineage(ctx, taxtest.BObeum)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, taxonomy.TaxID(0), a.At(taxonomy.Class))
	assert.Equal(t, "Blautia", r.Name(ctx, taxtest.Blautia))

	_, err = r.Lineage(ctx, 999999)
	assert.ErrorIs(t, err, taxonomy.ErrNotFound)
	_, err = r.Lineage(ctx, 999999)
	assert.ErrorIs(t, err, taxonomy.ErrNotFound)

	assert.Equal(t, 2.0, diag.Value("taxassign_lineage_cache_total", "miss"))
	assert.Equal(t, 2.0, diag.Value("taxassign_lineage_cache_total", "hit"))
}

func TestLoadNodesTSV(t *testing.T) {
	s, err := taxonomy.LoadNodesTSV(strings.NewReader("# comment\n" + taxtest.NodesTSV()))
	require.NoError(t, err)
	assert.Equal(t, len(taxtest.Nodes()), s.Len())

	n, err := s.Node(context.Background(), taxtest.Gamma)
	require.NoError(t, err)
	assert.Equal(t, taxonomy.Class, n.Rank)
	assert.Equal(t, "Gammaproteobacteria", n.Name)

	_, err = taxonomy.LoadNodesTSV(strings.NewReader("1\t1\tno rank\n"))
	assert.Error(t, err)
}

// writeEte3 builds a tiny ete3-style database from the fixture.
func writeEte3(t *testing.T, dropTrackFor taxonomy.TaxID) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxonomy.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE species (taxid INT PRIMARY KEY, parent INT, spname VARCHAR(50) COLLATE NOCASE, common VARCHAR(50) COLLATE NOCASE, rank VARCHAR(50), track TEXT)`)
	require.NoError(t, err)

	mem := taxtest.Store()
	for _, n := range taxtest.Nodes() {
		path, err := taxonomy.Path(context.Background(), mem, n.ID)
		require.NoError(t, err)
		ids := make([]string, 0, len(path))
		for i := len(path) - 1; i >= 0; i-- {
			ids = append(ids, strconv.FormatInt(int64(path[i].ID), 10))
		}
		track := strings.Join(ids, ",")
		if n.ID == dropTrackFor {
			track = ""
		}
		_, err = db.Exec(`INSERT INTO species VALUES (?, ?, ?, '', ?, ?)`,
			int64(n.ID), int64(n.Parent), n.Name, n.Rank.String(), track)
		require.NoError(t, err)
	}
	return path
}

func TestSQLiteStore_TrackFastPath(t *testing.T) {
	path := writeEte3(t, 0)
	s, err := taxonomy.Open(path)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	got, err := taxonomy.Path(ctx, s, taxtest.EAlbertii)
	require.NoError(t, err)
	want, err := taxonomy.Path(ctx, taxtest.Store(), taxtest.EAlbertii)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = s.Node(ctx, 424242)
	assert.ErrorIs(t, err, taxonomy.ErrNotFound)
	_, err = taxonomy.Path(ctx, s, 424242)
	assert.ErrorIs(t, err, taxonomy.ErrNotFound)
}

func TestSQLiteStore_MissingTrackFallsBackToWalk(t *testing.T) {
	path := writeEte3(t, taxtest.BObeum)
	s, err := taxonomy.OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	r := taxonomy.NewResolver(s, nil)
	l, err := r.Lineage(context.Background(), taxtest.BObeum)
	require.NoError(t, err)
	assert.Equal(t, taxtest.Firmicutes, l.At(taxonomy.Phylum))
	assert.Equal(t, taxtest.BObeum, l.At(taxonomy.Species))
	assert.Equal(t, "Blautia obeum", r.Name(context.Background(), taxtest.BObeum))
}

func TestOpenSQLite_RejectsForeignDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE other (id INT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = taxonomy.OpenSQLite(path)
	assert.ErrorContains(t, err, "no species table")
}
