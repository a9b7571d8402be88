// internal/consensus/config.go
package consensus

import (
	"errors"
	"fmt"
	"strings"

	"taxassign/internal/taxonomy"
)

// ErrConfig marks configuration errors; they are raised before any input is read.
var ErrConfig = errors.New("invalid configuration")

// Strategy selects the consensus algorithm.
type Strategy int

const (
	// RankLCA intersects identity-truncated lineages (default).
	RankLCA Strategy = iota
	// RankVote takes a per-rank plurality vote.
	RankVote
	// BestScore copies the lineage of the best hit.
	BestScore
)

var strategyNames = map[Strategy]string{
	RankLCA:   "rank_lca",
	RankVote:  "rank_vote",
	BestScore: "score",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy accepts the canonical names and a few aliases.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rank_lca", "lca", "lowest-common-ancestor":
		return RankLCA, nil
	case "rank_vote", "vote", "rank-vote":
		return RankVote, nil
	case "score", "best-score", "best_score":
		return BestScore, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q (want rank_lca | rank_vote | score)", ErrConfig, s)
}

// Config is everything a strategy needs.
type Config struct {
	Strategy      Strategy
	AssignRanks   []taxonomy.Rank // coarse→fine
	Thresholds    []float64       // minimum percent identity, paired with AssignRanks
	ReportRanks   []taxonomy.Rank // coarse→fine
	VoteThreshold float64
}

// Defaults used by the CLI.
var (
	DefaultAssignRanks   = []string{"phylum", "genus", "species"}
	DefaultThresholds    = []float64{45, 60, 85}
	DefaultReportRanks   = []string{"superkingdom", "phylum", "class", "order", "family", "genus", "species"}
	DefaultVoteThreshold = 0.5
)

// DefaultConfig is rank_lca with the default rank lists.
func DefaultConfig() Config {
	assign, _ := taxonomy.ParseRanks(DefaultAssignRanks)
	report, _ := taxonomy.ParseRanks(DefaultReportRanks)
	return Config{
		Strategy:      RankLCA,
		AssignRanks:   assign,
		Thresholds:    append([]float64(nil), DefaultThresholds...),
		ReportRanks:   report,
		VoteThreshold: DefaultVoteThreshold,
	}
}

// Validate fails fast on inconsistent settings.
func (c Config) Validate() error {
	if len(c.AssignRanks) != len(c.Thresholds) {
		return fmt.Errorf("%w: %d assign ranks but %d rank thresholds", ErrConfig, len(c.AssignRanks), len(c.Thresholds))
	}
	if c.Strategy == RankLCA && len(c.AssignRanks) == 0 {
		return fmt.Errorf("%w: rank_lca needs at least one assign rank", ErrConfig)
	}
	if err := checkRanks("assign", c.AssignRanks); err != nil {
		return err
	}
	if len(c.ReportRanks) == 0 {
		return fmt.Errorf("%w: no report ranks", ErrConfig)
	}
	if err := checkRanks("report", c.ReportRanks); err != nil {
		return err
	}
	for i, t := range c.Thresholds {
		if t < 0 || t > 100 {
			return fmt.Errorf("%w: threshold %v for %s outside [0,100]", ErrConfig, t, c.AssignRanks[i])
		}
	}
	if c.VoteThreshold < 0 || c.VoteThreshold >= 1 {
		return fmt.Errorf("%w: vote threshold %v outside [0,1)", ErrConfig, c.VoteThreshold)
	}
	if _, ok := strategyNames[c.Strategy]; !ok {
		return fmt.Errorf("%w: unknown strategy %d", ErrConfig, int(c.Strategy))
	}
	return nil
}

func checkRanks(what string, rs []taxonomy.Rank) error {
	for i, r := range rs {
		if !r.Valid() {
			return fmt.Errorf("%w: %s rank %d is not in the rank vocabulary", ErrConfig, what, i)
		}
		if i > 0 && r <= rs[i-1] {
			return fmt.Errorf("%w: %s ranks must be ordered coarse to fine (%s after %s)", ErrConfig, what, r, rs[i-1])
		}
	}
	return nil
}
