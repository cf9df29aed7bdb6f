package export

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/list"
	"github.com/jedib0t/go-pretty/table"

	"mdb-audit/internal/schema"
)

// PrintSummary renders the end-of-run overview to w.
func PrintSummary(w io.Writer, r *schema.Report, outputDir string) {
	l := list.NewWriter()
	l.SetStyle(list.StyleConnectedRounded)

	tb := table.NewWriter()
	tb.SetStyle(table.StyleLight)
	tb.SetTitle("📊 Access Migration Analysis")
	tb.AppendRow(table.Row{"Source", r.DatabasePath})
	tb.AppendRow(table.Row{"Target", r.TargetDialect})
	tb.AppendRow(table.Row{"Output", outputDir})
	l.AppendItem(tb.Render())

	tb = table.NewWriter()
	tb.SetStyle(table.StyleLight)
	tb.SetTitle("🗂️ Inventory")
	tb.AppendHeader(table.Row{"TABLES", "ROWS", "QUERIES", "RELATIONSHIPS", "INFERRED FKS", "DEAD COLUMNS", "INDEXES"})
	tb.AppendRow(table.Row{
		r.Tables.Count, groupThousands(r.TotalRows()), r.Queries.Count, r.Relationships.Count,
		len(r.InferredForeignKeys), len(r.DeadColumns), len(r.Indexes),
	})
	l.AppendItem(tb.Render())

	by := r.PotentialIssues.BySeverity
	tb = table.NewWriter()
	tb.SetStyle(table.StyleLight)
	tb.SetTitle("⚠️ Issues")
	tb.AppendHeader(table.Row{"TOTAL", "HIGH", "MEDIUM", "LOW"})
	tb.AppendRow(table.Row{r.PotentialIssues.Count, by[schema.SeverityHigh], by[schema.SeverityMedium], by[schema.SeverityLow]})
	l.AppendItem(tb.Render())

	if len(r.Failures) > 0 {
		tb = table.NewWriter()
		tb.SetStyle(table.StyleLight)
		tb.SetTitle("❌ Steps with partial data")
		tb.AppendHeader(table.Row{"Step", "Item", "Error"})
		for _, f := range r.Failures {
			tb.AppendRow(table.Row{f.Step, f.Item, f.Message})
		}
		l.AppendItem(tb.Render())
	}

	fmt.Fprintln(w, l.Render())
}
