// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"taxassign/internal/config"
	"taxassign/internal/consensus"
	"taxassign/internal/hits"
	"taxassign/internal/writers"
)

// GlobalOptions holds flags shared by every command. Flags that map to a
// config key (see config.FlagKeys) are only registered here; their values
// are read back through config.Load.
type GlobalOptions struct {
	ConfigPath string
	Quiet      bool
	Stats      bool
}

// AssignOptions holds the assign positional arguments and output flags.
type AssignOptions struct {
	HitsPath  string
	OutPath   string
	TaxIDOut  string
	BlobOut   string
	Overwrite bool
}

// TransferOptions holds the transfer positional arguments and output flags.
type TransferOptions struct {
	ORFTable   string
	Membership string
	OutPath    string
	ORFTaxOut  string
	Overwrite  bool
}

// AddGlobalFlags registers the persistent flags.
func AddGlobalFlags(fs *pflag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.ConfigPath, "config", "", "YAML config file (default: ./taxassign.yaml, then ~/.config/taxassign/taxassign.yaml)")
	fs.BoolVarP(&g.Quiet, "quiet", "q", false, "only log warnings and errors")
	fs.BoolVar(&g.Stats, "stats", false, "print a diagnostics table to stderr when done")

	fs.String("log-level", config.DefaultLogLevel, "log level: debug | info | warn | error")
	fs.String("log-format", config.DefaultLogFormat, "log format: console | json")
	fs.IntP("workers", "p", config.DefaultWorkers, "number of workers (0 = all CPUs)")
	fs.IntP("chunk-size", "c", config.DefaultChunkSize, "units of work per chunk sent to a worker")
	fs.String("metrics-out", "", "write run counters in Prometheus textfile format to this path")
}

// AddAssignFlags registers the assign flags.
func AddAssignFlags(fs *pflag.FlagSet, o *AssignOptions) {
	fs.StringP("mode", "m", config.DefaultMode, "consensus mode: rank_lca | rank_vote | score")
	fs.StringSlice("assign-ranks", consensus.DefaultAssignRanks, "ranks to assign, coarse to fine")
	fs.StringSlice("rank-thresholds", floats(consensus.DefaultThresholds), "minimum percent identity per assign rank")
	fs.StringSlice("report-ranks", consensus.DefaultReportRanks, "ranks to report, coarse to fine")
	fs.Float64("vote-threshold", consensus.DefaultVoteThreshold, "share of votes a taxon must exceed in rank_vote mode")
	fs.Float64P("top", "T", hits.DefaultTopPercent, "keep hits within this percent of the best bitscore")
	fs.Float64P("evalue", "e", hits.DefaultMaxEValue, "maximum e-value")
	fs.String("format", config.DefaultFormat, "hit table format: blast | annotated (13th column is the subject taxid)")
	fs.String("taxidmap", "", "accession to taxid map (prot.accession2taxid[.gz]); required for --format blast")
	fs.StringP("taxdb", "t", "", "taxonomy database (.sqlite ete3 database or nodes TSV)")
	fs.StringP("output-format", "o", config.DefaultOutputFormat, "main output format: "+strings.Join(writers.Formats(), " | "))

	fs.StringVar(&o.TaxIDOut, "taxidout", "", "also write the table with taxids instead of names")
	fs.StringVar(&o.BlobOut, "blobout", "", "also write best hits in blobtools hits layout")
	fs.BoolVar(&o.Overwrite, "overwrite", false, "overwrite existing output files")
}

// AddTransferFlags registers the transfer flags.
func AddTransferFlags(fs *pflag.FlagSet, o *TransferOptions) {
	fs.String("ignore-unc-rank", "", "ignore ORFs unclassified at this rank")
	fs.String("membership-format", config.DefaultMembershipFormat, "membership input: auto | gff | tsv")
	fs.StringVar(&o.ORFTaxOut, "orf-tax-out", "", "also transfer the contig taxonomy back to ORFs and write it here")
	fs.BoolVar(&o.Overwrite, "overwrite", false, "overwrite existing output files")
}

// Args fills the positional arguments: <hits> <outfile>.
func (o *AssignOptions) Args(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("assign takes 2 arguments (hit table, output file), got %d", len(args))
	}
	o.HitsPath, o.OutPath = args[0], args[1]
	return o.validate()
}

func (o *AssignOptions) validate() error {
	if o.HitsPath == "" || o.OutPath == "" {
		return errors.New("hit table and output file must not be empty")
	}
	if clash(o.OutPath, o.TaxIDOut, o.BlobOut) {
		return errors.New("output, --taxidout and --blobout must be different files")
	}
	return nil
}

// Args fills the positional arguments: <orf_taxonomy> <membership> <contig_taxonomy>.
func (o *TransferOptions) Args(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("transfer takes 3 arguments (ORF taxonomy, membership, contig output), got %d", len(args))
	}
	o.ORFTable, o.Membership, o.OutPath = args[0], args[1], args[2]
	if clash(o.OutPath, o.ORFTaxOut) {
		return errors.New("contig output and --orf-tax-out must be different files")
	}
	return nil
}

// clash reports whether two non-empty, non-stdout paths are equal.
func clash(paths ...string) bool {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" || p == "-" {
			continue
		}
		if _, dup := seen[p]; dup {
			return true
		}
		seen[p] = struct{}{}
	}
	return false
}

func floats(fs []float64) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = fmt.Sprint(f)
	}
	return out
}
