// Package writers turns assignments and contig tables into serialized outputs.
//
// Design:
//   - Writers own all presentation knowledge (TSV tables, blob hits, JSONL).
//   - consensus stays domain-only; pipeline stays orchestration-only.
//   - JSONL goes through pkg/api (v1) for a stable wire format.
package writers
