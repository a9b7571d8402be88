package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"taxassign/internal/consensus"
	"taxassign/internal/hits"
)

// configName is the config file name without extension.
const configName = "taxassign"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix.
const envPrefix = "TAXASSIGN"

// FlagKeys maps config keys to the flag names that override them.
var FlagKeys = map[string]string{
	"assign.mode":                "mode",
	"assign.assign_ranks":        "assign-ranks",
	"assign.rank_thresholds":     "rank-thresholds",
	"assign.report_ranks":        "report-ranks",
	"assign.vote_threshold":      "vote-threshold",
	"assign.top":                 "top",
	"assign.evalue":              "evalue",
	"assign.format":              "format",
	"assign.taxidmap":            "taxidmap",
	"assign.output_format":       "output-format",
	"transfer.ignore_unc_rank":   "ignore-unc-rank",
	"transfer.membership_format": "membership-format",
	"performance.workers":        "workers",
	"performance.chunk_size":     "chunk-size",
	"logging.level":              "log-level",
	"logging.format":             "log-format",
	"taxonomy.path":              "taxdb",
	"metrics.textfile":           "metrics-out",
}

// Load merges flags > env > config file > defaults. configPath may be
// empty, in which case taxassign.yaml is searched in the working directory
// and $HOME/.config/taxassign; a missing file is not an error. flags may be
// nil; only flags listed in FlagKeys and present in the set are bound.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: read config: %w", ErrInvalid, err)
		}
	}

	if flags != nil {
		for key, name := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("assign.mode", DefaultMode)
	v.SetDefault("assign.assign_ranks", consensus.DefaultAssignRanks)
	v.SetDefault("assign.rank_thresholds", consensus.DefaultThresholds)
	v.SetDefault("assign.report_ranks", consensus.DefaultReportRanks)
	v.SetDefault("assign.vote_threshold", consensus.DefaultVoteThreshold)
	v.SetDefault("assign.top", hits.DefaultTopPercent)
	v.SetDefault("assign.evalue", hits.DefaultMaxEValue)
	v.SetDefault("assign.format", DefaultFormat)
	v.SetDefault("assign.taxidmap", "")
	v.SetDefault("assign.output_format", DefaultOutputFormat)

	v.SetDefault("transfer.ignore_unc_rank", "")
	v.SetDefault("transfer.membership_format", DefaultMembershipFormat)

	v.SetDefault("performance.workers", DefaultWorkers)
	v.SetDefault("performance.chunk_size", DefaultChunkSize)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)

	v.SetDefault("taxonomy.path", "")
	v.SetDefault("metrics.textfile", "")
}
