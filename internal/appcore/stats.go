package appcore

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"taxassign/internal/metrics"
)

// WriteStats renders the non-zero run counters as a table.
func WriteStats(w io.Writer, d *metrics.Diagnostics) error {
	samples, err := d.Snapshot()
	if err != nil {
		return err
	}
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.AppendHeader(table.Row{"counter", "label", "value"})
	for _, s := range samples {
		tbl.AppendRow(table.Row{s.Name, s.Label, humanize.Comma(int64(s.Value))})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("%d counters", len(samples))})
	tbl.Render()
	return nil
}
