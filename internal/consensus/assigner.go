// internal/consensus/assigner.go
package consensus

import (
	"taxassign/internal/hits"
	"taxassign/internal/taxonomy"
)

// Assigner turns the surviving hits of one query into an Assignment.
// lineages[i] is the lineage of hs[i]. Implementations are stateless and
// safe for concurrent use.
type Assigner interface {
	Assign(query string, hs []hits.Hit, lineages []taxonomy.Lineage) Assignment
}

// New validates cfg and returns the strategy it selects.
func New(cfg Config) (Assigner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	report := append([]taxonomy.Rank(nil), cfg.ReportRanks...)
	switch cfg.Strategy {
	case RankVote:
		return &voteAssigner{report: report, threshold: cfg.VoteThreshold}, nil
	case BestScore:
		return &scoreAssigner{report: report}, nil
	default:
		return &lcaAssigner{
			report:     report,
			assign:     append([]taxonomy.Rank(nil), cfg.AssignRanks...),
			thresholds: append([]float64(nil), cfg.Thresholds...),
		}, nil
	}
}
