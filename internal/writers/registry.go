// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"taxassign/internal/consensus"
	"taxassign/internal/taxonomy"
)

// Options describes the table every assignment writer renders.
type Options struct {
	Ranks   []taxonomy.Rank
	ByTaxID bool
	Mode    consensus.Strategy
}

// AssignmentWriter renders a complete, ordered set of assignments.
type AssignmentWriter func(w io.Writer, as []consensus.Assignment, opt Options) error

// Writer registry (format → handler). Register in init() blocks.
var assignmentWriters = map[string]AssignmentWriter{}

// Register adds or replaces a format (last wins).
func Register(format string, fn AssignmentWriter) { assignmentWriters[format] = fn }

// Formats lists the registered formats.
func Formats() []string {
	out := make([]string, 0, len(assignmentWriters))
	for f := range assignmentWriters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Write dispatches to the writer registered for format.
func Write(format string, w io.Writer, as []consensus.Assignment, opt Options) error {
	fn, ok := assignmentWriters[format]
	if !ok {
		return fmt.Errorf("unknown output format %q (want one of %v)", format, Formats())
	}
	return ignoreBrokenPipe(fn(w, as, opt))
}
