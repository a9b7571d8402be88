// Package config layers flags, TAXASSIGN_* environment variables, an
// optional YAML file and built-in defaults into one validated Config.
package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"taxassign/internal/consensus"
	"taxassign/internal/hits"
	"taxassign/internal/taxonomy"
	"taxassign/internal/transfer"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full run configuration.
type Config struct {
	Assign      AssignConfig      `mapstructure:"assign" yaml:"assign"`
	Transfer    TransferConfig    `mapstructure:"transfer" yaml:"transfer"`
	Performance PerformanceConfig `mapstructure:"performance" yaml:"performance"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Taxonomy    TaxonomyConfig    `mapstructure:"taxonomy" yaml:"taxonomy"`
	Metrics     MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
}

// AssignConfig drives the assign command.
type AssignConfig struct {
	Mode           string    `mapstructure:"mode" yaml:"mode"`
	AssignRanks    []string  `mapstructure:"assign_ranks" yaml:"assign_ranks"`
	RankThresholds []float64 `mapstructure:"rank_thresholds" yaml:"rank_thresholds"`
	ReportRanks    []string  `mapstructure:"report_ranks" yaml:"report_ranks"`
	VoteThreshold  float64   `mapstructure:"vote_threshold" yaml:"vote_threshold"`
	TopPercent     float64   `mapstructure:"top" yaml:"top"`
	MaxEValue      float64   `mapstructure:"evalue" yaml:"evalue"`
	Format         string    `mapstructure:"format" yaml:"format"`
	TaxIDMap       string    `mapstructure:"taxidmap" yaml:"taxidmap"`
	OutputFormat   string    `mapstructure:"output_format" yaml:"output_format"`
}

// TransferConfig drives the transfer command.
type TransferConfig struct {
	IgnoreUncRank    string `mapstructure:"ignore_unc_rank" yaml:"ignore_unc_rank"`
	MembershipFormat string `mapstructure:"membership_format" yaml:"membership_format"`
}

// PerformanceConfig sizes the worker pool.
type PerformanceConfig struct {
	Workers   int `mapstructure:"workers" yaml:"workers"`
	ChunkSize int `mapstructure:"chunk_size" yaml:"chunk_size"`
}

// LoggingConfig selects the zap setup.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // console | json
}

// TaxonomyConfig locates the taxonomy database.
type TaxonomyConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// MetricsConfig controls the diagnostics export.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// Defaults.
const (
	DefaultMode             = "rank_lca"
	DefaultFormat           = "blast"
	DefaultOutputFormat     = "tsv"
	DefaultMembershipFormat = "auto"
	DefaultWorkers          = 1
	DefaultChunkSize        = 1
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
)

// Validate checks every section; it never touches the filesystem.
func (c *Config) Validate() error {
	if _, err := c.Consensus(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	a := c.Assign
	if a.TopPercent < 0 || a.TopPercent > 100 {
		return fmt.Errorf("%w: top %v outside [0,100]", ErrInvalid, a.TopPercent)
	}
	if a.MaxEValue < 0 {
		return fmt.Errorf("%w: evalue %v is negative", ErrInvalid, a.MaxEValue)
	}
	if _, err := hits.ParseFormat(a.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch a.OutputFormat {
	case "tsv", "jsonl", "json":
	default:
		return fmt.Errorf("%w: output format %q (want tsv | jsonl | json)", ErrInvalid, a.OutputFormat)
	}
	if _, err := transfer.ParseMembershipFormat(c.Transfer.MembershipFormat); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Performance.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0", ErrInvalid)
	}
	if c.Performance.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk_size must be >= 1", ErrInvalid)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging format %q (want console | json)", ErrInvalid, c.Logging.Format)
	}
	return nil
}

// Consensus builds the consensus settings from the assign section.
func (c *Config) Consensus() (consensus.Config, error) {
	var out consensus.Config
	s, err := consensus.ParseStrategy(c.Assign.Mode)
	if err != nil {
		return out, err
	}
	assign, err := taxonomy.ParseRanks(c.Assign.AssignRanks)
	if err != nil {
		return out, fmt.Errorf("assign ranks: %w", err)
	}
	report, err := taxonomy.ParseRanks(c.Assign.ReportRanks)
	if err != nil {
		return out, fmt.Errorf("report ranks: %w", err)
	}
	out = consensus.Config{
		Strategy:      s,
		AssignRanks:   assign,
		Thresholds:    append([]float64(nil), c.Assign.RankThresholds...),
		ReportRanks:   report,
		VoteThreshold: c.Assign.VoteThreshold,
	}
	return out, out.Validate()
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
