// internal/writers/jsonl.go
package writers

import (
	"bufio"
	"encoding/json"
	"io"

	"taxassign/internal/consensus"
	"taxassign/internal/taxonomy"
	"taxassign/pkg/api"
)

func init() {
	Register("jsonl", WriteJSONL)
	Register("json", WriteJSON)
}

// WriteJSON writes all assignments as one indented JSON array.
func WriteJSON(w io.Writer, as []consensus.Assignment, opt Options) error {
	list := make([]api.AssignmentV1, len(as))
	for i, a := range as {
		list[i] = ToAPI(a, opt.Mode)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

// WriteJSONL writes one api.AssignmentV1 per line.
func WriteJSONL(w io.Writer, as []consensus.Assignment, opt Options) error {
	bw := bufio.NewWriterSize(w, 64<<10)
	enc := json.NewEncoder(bw)
	for _, a := range as {
		if err := enc.Encode(ToAPI(a, opt.Mode)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

var stateNames = map[consensus.State]string{
	consensus.StateAssigned:     "assigned",
	consensus.StateGap:          "gap",
	consensus.StateUnclassified: "unclassified",
}

// ToAPI converts an assignment to the v1 wire type.
func ToAPI(a consensus.Assignment, mode consensus.Strategy) api.AssignmentV1 {
	out := api.AssignmentV1{
		Query:      a.Query,
		Mode:       mode.String(),
		Resolution: consensus.Unclassified,
		Ranks:      make([]api.RankV1, len(a.Calls)),
	}
	if r := a.Resolution(); r != taxonomy.NoRank {
		out.Resolution = r.String()
	}
	for i, c := range a.Calls {
		rv := api.RankV1{Rank: c.Rank.String(), State: stateNames[c.State]}
		if c.State == consensus.StateAssigned {
			rv.Name = c.Name
			rv.TaxID = int64(c.TaxID)
		}
		out.Ranks[i] = rv
	}
	if a.HasBest {
		out.BestHit = &api.BestHitV1{
			Subject:  a.Best.Subject,
			TaxID:    int64(a.Best.TaxID),
			PIdent:   a.Best.PIdent,
			EValue:   a.Best.EValue,
			BitScore: a.Best.BitScore,
		}
	}
	return out
}
