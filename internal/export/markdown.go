package export

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/table"

	"mdb-audit/internal/schema"
)

func markdownTable(header table.Row, rows []table.Row) string {
	tw := table.NewWriter()
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	return tw.RenderMarkdown() + "\n\n"
}

// ExecutiveSummary renders the overview document for the migration team.
func ExecutiveSummary(r *schema.Report, target string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Access to %s Migration Summary\n\n", target)
	fmt.Fprintf(&b, "**Source Database:** `%s`\n\n", r.DatabasePath)
	fmt.Fprintf(&b, "**Analysis Date:** %s\n\n", r.AnalysisDate)

	b.WriteString("## Overview\n\n")
	b.WriteString(markdownTable(table.Row{"Metric", "Count"}, []table.Row{
		{"Tables", r.Tables.Count},
		{"Saved Queries", r.Queries.Count},
		{"Relationships", r.Relationships.Count},
		{"Total Rows", groupThousands(r.TotalRows())},
		{"Inferred Foreign Keys", len(r.InferredForeignKeys)},
		{"Dead Columns", len(r.DeadColumns)},
		{"Recommended Indexes", len(r.Indexes)},
	}))

	b.WriteString("## Tables\n\n")
	rows := make([]table.Row, 0, len(r.TableDetails))
	for _, t := range r.TableDetails {
		pk := t.PrimaryKey
		if pk == "" {
			pk = "-"
		}
		rows = append(rows, table.Row{t.Name, t.PgName, groupThousands(t.RowCount), len(t.Columns), pk})
	}
	b.WriteString(markdownTable(table.Row{"Access Table", target + " Table", "Rows", "Columns", "Primary Key"}, rows))

	issues := r.PotentialIssues
	b.WriteString("## Potential Issues\n\n")
	fmt.Fprintf(&b, "**Total:** %d (HIGH: %d, MEDIUM: %d, LOW: %d)\n\n", issues.Count,
		issues.BySeverity[schema.SeverityHigh], issues.BySeverity[schema.SeverityMedium], issues.BySeverity[schema.SeverityLow])

	var high []schema.Issue
	for _, i := range issues.Details {
		if i.Severity == schema.SeverityHigh {
			high = append(high, i)
		}
	}
	if len(high) > 0 {
		b.WriteString("### High Priority\n\n")
		for _, i := range high {
			fmt.Fprintf(&b, "- **%s**: %s\n", i.Type, i.Issue)
		}
		b.WriteString("\n")
	}

	if len(r.InferredForeignKeys) > 0 {
		b.WriteString("## Inferred Relationships\n\n")
		rows = rows[:0]
		for _, fk := range r.InferredForeignKeys {
			rows = append(rows, table.Row{
				fk.SourceTable + "." + fk.SourceColumn,
				fk.TargetTable + "." + fk.TargetColumn,
				fk.Confidence, fk.Pattern,
			})
		}
		b.WriteString(markdownTable(table.Row{"From", "To", "Confidence", "Pattern"}, rows))
	}

	var orphaned []schema.OrphanReport
	for _, o := range r.Orphans {
		if o.OrphanCount > 0 {
			orphaned = append(orphaned, o)
		}
	}
	if len(orphaned) > 0 {
		b.WriteString("## Orphan Records\n\n")
		rows = rows[:0]
		for _, o := range orphaned {
			rows = append(rows, table.Row{o.Table, o.Column, o.OrphanCount, fmt.Sprintf("%.2f%%", o.OrphanPercent)})
		}
		b.WriteString(markdownTable(table.Row{"Table", "Column", "Orphans", "Percent"}, rows))
	}

	if len(r.DeadColumns) > 0 {
		counts := map[string]int{}
		for _, d := range r.DeadColumns {
			counts[d.Reason]++
		}
		b.WriteString("## Dead Columns\n\n")
		b.WriteString(markdownTable(table.Row{"Reason", "Columns"}, []table.Row{
			{schema.DeadAlwaysNull, counts[schema.DeadAlwaysNull]},
			{schema.DeadMostlyNull, counts[schema.DeadMostlyNull]},
			{schema.DeadSingleValue, counts[schema.DeadSingleValue]},
		}))
	}

	var risky int
	for _, p := range r.PowerBIImpact {
		if p.RiskLevel == schema.SeverityHigh {
			risky++
		}
	}
	b.WriteString("## Power BI\n\n")
	fmt.Fprintf(&b, "- %d table(s) need query changes, %d of them high risk.\n", len(r.PowerBIImpact), risky)
	fmt.Fprintf(&b, "- %d DAX reference(s) change because columns are renamed.\n\n", len(r.DAXImpact))

	if len(r.Failures) > 0 {
		b.WriteString("## Analysis Gaps\n\n")
		for _, f := range r.Failures {
			if f.Item != "" {
				fmt.Fprintf(&b, "- `%s` (%s): %s\n", f.Step, f.Item, f.Message)
			} else {
				fmt.Fprintf(&b, "- `%s`: %s\n", f.Step, f.Message)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// MigrationChecklist renders the phased task list.
func MigrationChecklist(r *schema.Report, target string) string {
	var deprecated int
	for _, t := range r.TableDetails {
		if IsDeprecated(t) {
			deprecated++
		}
	}
	var fkReady, fkReview int
	for _, fk := range r.InferredForeignKeys {
		if fk.Confidence == schema.ConfidenceLow {
			fkReview++
		} else {
			fkReady++
		}
	}

	phases := []struct {
		title string
		items []string
	}{
		{"Phase 1: Review", []string{
			"Fill in `05_migration/migration_review_checklist.xlsx` with stakeholders",
			fmt.Sprintf("Decide on %d table(s) flagged as deprecated, test or empty", deprecated),
			fmt.Sprintf("Resolve %d HIGH severity issue(s) in `02_quality/issues.xlsx`", r.PotentialIssues.BySeverity[schema.SeverityHigh]),
			fmt.Sprintf("Review %d dead column(s) in `02_quality/dead_columns.xlsx`", len(r.DeadColumns)),
			fmt.Sprintf("Recreate %d saved query(ies) listed in `01_schema/queries.xlsx`", r.Queries.Count),
		}},
		{"Phase 2: Schema", []string{
			fmt.Sprintf("Create the %d table(s) with `01_schema/create_tables.sql` on %s", len(r.TableDetails), target),
			"Compare against `01_schema/native_schema.sql`",
		}},
		{"Phase 3: Data", []string{
			"Run `05_migration/01_extract.sh` to export CSV files",
			"Run `05_migration/02_load.sql` to load them in dependency order",
			"Run `05_migration/03_transform.sql` to clean values and reset sequences",
		}},
		{"Phase 4: Keys and Integrity", []string{
			fmt.Sprintf("Apply %d foreign key(s) from `03_keys/foreign_keys.sql`; review %d commented low-confidence guess(es)", fkReady, fkReview),
			"Fix orphan rows listed in `02_quality/orphan_records.xlsx` first",
			fmt.Sprintf("Create %d index(es) from `03_keys/indexes.sql`", len(r.Indexes)),
		}},
		{"Phase 5: Power BI", []string{
			"Optionally create `04_powerbi/compatibility_views.sql` for a gradual cut-over",
			fmt.Sprintf("Update %d M query source(s) per `04_powerbi/powerbi_impact.xlsx`", len(r.PowerBIImpact)),
			fmt.Sprintf("Update %d DAX reference(s) per `04_powerbi/dax_impact.xlsx`", len(r.DAXImpact)),
		}},
		{"Phase 6: Validation", []string{
			"Run `05_migration/validation_queries.sql` and compare expected and actual rows",
			"Run `mdb-audit verify` against the target database",
			"Refresh every Power BI report and compare totals with the Access version",
		}},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Migration Checklist: Access to %s\n\n", target)
	fmt.Fprintf(&b, "Source: `%s` (%d tables, %s rows)\n\n", r.DatabasePath, len(r.TableDetails), groupThousands(r.TotalRows()))
	for _, p := range phases {
		fmt.Fprintf(&b, "## %s\n\n", p.title)
		for _, item := range p.items {
			fmt.Fprintf(&b, "- [ ] %s\n", item)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// groupThousands formats 1234567 as 1,234,567.
func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
