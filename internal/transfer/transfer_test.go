package transfer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxassign/internal/metrics"
	"taxassign/internal/pipeline"
)

const gff = "##gff-version 3\n" +
	"# Sequence Data: seqnum=1\n" +
	"k1\tProdigal_v2.6.3\tCDS\t1\t300\t50.1\t+\t0\tID=1_1;partial=00;start_type=ATG\n" +
	"k1\tProdigal_v2.6.3\tCDS\t400\t900\t60.2\t-\t0\tID=1_2;partial=00\n" +
	"k2\tProdigal_v2.6.3\tCDS\t1\t300\t50.1\t+\t0\tID=2_1;partial=00\n" +
	"k3\tProdigal_v2.6.3\tCDS\t1\t300\t50.1\t+\t0\tID=3_1;partial=00\n" +
	"##FASTA\n>k1\nACGT\n"

const orfTable = "query\tsuperkingdom\tphylum\tgenus\tspecies\n" +
	"k1_1\tBacteria\tProteobacteria\tEscherichia\tEscherichia coli\n" +
	"k1_2\tBacteria\tProteobacteria\tEscherichia\tEscherichia albertii\n" +
	"k2_1\tBacteria\tUnclassified\tunclassified\t\n" +
	"k4_1\tArchaea\tEuryarchaeota\tunclassified\tunclassified\n"

func TestReadMembership_GFF(t *testing.T) {
	for _, f := range []MembershipFormat{FormatGFF, FormatAuto} {
		m, err := ReadMembership(strings.NewReader(gff), f)
		require.NoError(t, err)
		assert.Equal(t, []string{"k1", "k2", "k3"}, m.Contigs())
		assert.Equal(t, 4, m.Len())
		c, ok := m.Contig("k1_2")
		assert.True(t, ok)
		assert.Equal(t, "k1", c)
	}
}

func TestReadMembership_TSV(t *testing.T) {
	m, err := ReadMembership(strings.NewReader("c1\torfA\nc1\torfB\n\nc2\torfC\n"), FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, m.Contigs())
	c, _ := m.Contig("orfC")
	assert.Equal(t, "c2", c)

	_, err = ReadMembership(strings.NewReader("c1\torfA\nc2\torfA\n"), FormatTSV)
	assert.ErrorIs(t, err, ErrMembership)

	_, err = ReadMembership(strings.NewReader("a\tb\tc\n"), FormatAuto)
	assert.ErrorIs(t, err, ErrMembership)

	_, err = ReadMembership(strings.NewReader("k1\ts\tCDS\t1\t2\t.\t+\t0\tName=x\n"), FormatGFF)
	assert.ErrorContains(t, err, "no ID")
}

func TestReadTable_Normalises(t *testing.T) {
	tab, err := ReadTable(strings.NewReader(orfTable))
	require.NoError(t, err)
	assert.Equal(t, "query", tab.Key)
	assert.Equal(t, []string{"superkingdom", "phylum", "genus", "species"}, tab.Ranks)
	require.Len(t, tab.Rows, 4)
	assert.Equal(t, []string{"Bacteria", "unclassified", "unclassified", "unclassified"}, tab.Rows[2].Values)
	assert.Equal(t, 2, tab.Column("Genus"))

	_, err = ReadTable(strings.NewReader(orfTable + "k1_1\tx\tx\tx\tx\n"))
	assert.ErrorContains(t, err, "duplicate")
}

func aggregate(t *testing.T, opts Options) (*Result, *metrics.Diagnostics) {
	t.Helper()
	tab, err := ReadTable(strings.NewReader(orfTable))
	require.NoError(t, err)
	m, err := ReadMembership(strings.NewReader(gff), FormatAuto)
	require.NoError(t, err)
	diag := metrics.New()
	res, err := Aggregate(context.Background(), tab, m, opts, diag)
	require.NoError(t, err)
	return res, diag
}

func TestAggregate(t *testing.T) {
	res, diag := aggregate(t, Options{})
	require.Len(t, res.Contigs, 3)
	assert.Equal(t, Row{ID: "k1", Values: []string{"Bacteria", "Proteobacteria", "Escherichia", "unclassified"}}, res.Contigs[0])
	assert.Equal(t, Row{ID: "k2", Values: []string{"Bacteria", "unclassified", "unclassified", "unclassified"}}, res.Contigs[1])
	assert.Equal(t, Row{ID: "k3", Values: []string{"unclassified", "unclassified", "unclassified", "unclassified"}}, res.Contigs[2],
		"a contig without ORFs in the table still gets a row")
	assert.Nil(t, res.ORFs)
	assert.Equal(t, 1.0, diag.Value("taxassign_orfs_ignored_total", metrics.ReasonNoContig))
	assert.Equal(t, 2.0, diag.Value("taxassign_contigs_total", metrics.ResultClassified))
	assert.Equal(t, 1.0, diag.Value("taxassign_contigs_total", metrics.ResultUnclassified))
}

func TestAggregate_IgnoreUnclassified(t *testing.T) {
	res, diag := aggregate(t, Options{IgnoreUnclassifiedAt: "phylum"})
	assert.Equal(t, []string{"unclassified", "unclassified", "unclassified", "unclassified"}, res.Contigs[1].Values,
		"every ORF of k2 was ignored")
	assert.Equal(t, 1.0, diag.Value("taxassign_orfs_ignored_total", metrics.ReasonUnclassifiedRank))
	assert.Equal(t, 2.0, diag.Value("taxassign_contigs_total", metrics.ResultUnclassified), "k2 and k3")

	tab, _ := ReadTable(strings.NewReader(orfTable))
	m, _ := ReadMembership(strings.NewReader(gff), FormatAuto)
	_, err := Aggregate(context.Background(), tab, m, Options{IgnoreUnclassifiedAt: "order"}, nil)
	assert.ErrorIs(t, err, ErrUnknownRank)
}

func TestAggregate_ConsensusOfRemainingORFs(t *testing.T) {
	const table = "query\tsuperkingdom\tphylum\tgenus\tspecies\n" +
		"c1_1\tBacteria\tProteobacteria\tEscherichia\tEscherichia coli\n" +
		"c1_2\tBacteria\tProteobacteria\tEscherichia\tEscherichia coli\n" +
		"c1_3\tBacteria\tProteobacteria\tunclassified\tunclassified\n" +
		"c2_1\tBacteria\tProteobacteria\tEscherichia\tEscherichia coli\n" +
		"c2_2\tBacteria\tProteobacteria\tEscherichia\tEscherichia coli\n"
	const members = "c1\tc1_1\nc1\tc1_2\nc1\tc1_3\nc2\tc2_1\nc2\tc2_2\n"
	ecoli := []string{"Bacteria", "Proteobacteria", "Escherichia", "Escherichia coli"}

	run := func(ignore string) *Result {
		tab, err := ReadTable(strings.NewReader(table))
		require.NoError(t, err)
		m, err := ReadMembership(strings.NewReader(members), FormatTSV)
		require.NoError(t, err)
		res, err := Aggregate(context.Background(), tab, m, Options{IgnoreUnclassifiedAt: ignore}, nil)
		require.NoError(t, err)
		require.Len(t, res.Contigs, 2)
		return res
	}

	res := run("")
	assert.Equal(t, []string{"Bacteria", "Proteobacteria", "unclassified", "unclassified"}, res.Contigs[0].Values)
	assert.Equal(t, ecoli, res.Contigs[1].Values, "identical ORF lineages are kept to species")

	res = run("genus")
	assert.Equal(t, ecoli, res.Contigs[0].Values, "only the ORFs classified at genus vote")
	assert.Equal(t, ecoli, res.Contigs[1].Values)
}

func TestAggregate_Reverse(t *testing.T) {
	res, _ := aggregate(t, Options{Reverse: true})
	require.Len(t, res.ORFs, 4)
	assert.Equal(t, "k1_1", res.ORFs[0].ID)
	assert.Equal(t, []string{"Bacteria", "Proteobacteria", "Escherichia", "unclassified"}, res.ORFs[0].Values)
	assert.Equal(t, res.ORFs[0].Values, res.ORFs[1].Values)
	assert.Equal(t, []string{"Archaea", "Euryarchaeota", "unclassified", "unclassified"}, res.ORFs[3].Values,
		"ORF without a contig keeps its row")

	tab, _ := ReadTable(strings.NewReader(orfTable))
	assert.Equal(t, "Escherichia coli", tab.Rows[0].Values[3])
}

func TestAggregate_ParallelMatchesSerial(t *testing.T) {
	serial, _ := aggregate(t, Options{Reverse: true})
	parallel, _ := aggregate(t, Options{Reverse: true, Pipeline: pipeline.Config{Workers: 4, ChunkSize: 1}})
	assert.Equal(t, serial, parallel)
}
