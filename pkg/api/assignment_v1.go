// pkg/api/assignment_v1.go
package api

import _ "embed"

// RankV1 is one report rank of an assignment.
type RankV1 struct {
	Rank  string `json:"rank"`
	State string `json:"state"` // "assigned" | "gap" | "unclassified"
	Name  string `json:"name,omitempty"`
	TaxID int64  `json:"taxid,omitempty"`
}

// BestHitV1 is the best surviving hit of a query.
type BestHitV1 struct {
	Subject  string  `json:"subject"`
	TaxID    int64   `json:"taxid"`
	PIdent   float64 `json:"pident"`
	EValue   float64 `json:"evalue"`
	BitScore float64 `json:"bitscore"`
}

// AssignmentV1 is the stable JSONL schema for one query assignment.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type AssignmentV1 struct {
	Query      string     `json:"query"`
	Mode       string     `json:"mode"`
	Resolution string     `json:"resolution"` // finest assigned rank or "unclassified"
	Ranks      []RankV1   `json:"ranks"`
	BestHit    *BestHitV1 `json:"best_hit,omitempty"`
}

// AssignmentV1Schema is the JSON schema of AssignmentV1.
//
//go:embed assignment_v1.schema.json
var AssignmentV1Schema []byte
