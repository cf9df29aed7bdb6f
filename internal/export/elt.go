package export

import (
	"fmt"
	"strings"

	"mdb-audit/internal/dialect"
	"mdb-audit/internal/schema"
)

const csvDir = "csv"

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func csvFile(t *schema.TableDetail) string {
	return t.PgName + ".csv"
}

// ExtractScript writes a bash script exporting every table to CSV.
func ExtractScript(r *schema.Report) string {
	var b strings.Builder
	b.WriteString("#!/usr/bin/env bash\n")
	b.WriteString("# Step 1: extract every Access table to CSV with mdb-export.\n")
	fmt.Fprintf(&b, "# Generated: %s\n", r.AnalysisDate)
	b.WriteString("set -euo pipefail\n\n")
	fmt.Fprintf(&b, "DB=\"${1:-%s}\"\n", strings.ReplaceAll(r.DatabasePath, `"`, `\"`))
	fmt.Fprintf(&b, "OUT=\"${2:-%s}\"\n", csvDir)
	b.WriteString("mkdir -p \"$OUT\"\n\n")

	for _, t := range r.TableDetails {
		fmt.Fprintf(&b, "mdb-export \"$DB\" %s > \"$OUT/%s\"\n", shellQuote(t.Name), csvFile(t))
		fmt.Fprintf(&b, "echo %s\n", shellQuote(fmt.Sprintf("exported %s (%d rows expected)", t.Name, t.RowCount)))
	}
	b.WriteString("\necho \"extract complete\"\n")
	return b.String()
}

// LoadScript loads the CSV files with referenced tables first. Tables are
// emptied in the reverse order.
func (w SQLWriter) LoadScript(r *schema.Report) string {
	var b strings.Builder
	w.header(&b, r, "Step 2: load extracted CSV files")
	d := w.Dialect

	order, breaks := schema.LoadOrder(r)
	if len(breaks) > 0 {
		fmt.Fprintf(&b, "-- Dependency cycles broken at: %s\n\n", strings.Join(breaks, ", "))
	}

	if s := d.BeforeLoad(); s != "" {
		b.WriteString(s + "\n\n")
	}

	for i := len(order) - 1; i >= 0; i-- {
		b.WriteString(d.TruncateQuery(w.table(r.Detail(order[i]))) + "\n")
	}
	b.WriteString("\n")

	for i, name := range order {
		t := r.Detail(name)
		cols := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			cols = append(cols, d.QuoteIdent(c.PgName))
		}
		fmt.Fprintf(&b, "-- %d. %s (%d rows)\n", i+1, t.Name, t.RowCount)
		b.WriteString(d.LoadQuery(w.table(t), cols, csvDir+"/"+csvFile(t)) + "\n")
	}

	if s := d.AfterLoad(); s != "" {
		b.WriteString("\n" + s + "\n")
	}
	return b.String()
}

// TransformScript cleans loaded data: blank strings become NULL and
// autonumber sequences continue after the loaded maximum.
func (w SQLWriter) TransformScript(r *schema.Report) string {
	var b strings.Builder
	w.header(&b, r, "Step 3: transform loaded data")
	d := w.Dialect

	for _, t := range r.TableDetails {
		var stmts []string
		for _, c := range t.Columns {
			col := d.QuoteIdent(c.PgName)
			switch dialect.CanonicalAccessType(c.Type) {
			case "TEXT", "MEMO", "VARCHAR":
				stmts = append(stmts, fmt.Sprintf("UPDATE %s SET %s = NULLIF(TRIM(%s), '') WHERE %s IS NOT NULL;",
					w.table(t), col, col, col))
			case "COUNTER":
				if s := d.ResetIdentityQuery(w.table(t), c.PgName); s != "" {
					stmts = append(stmts, s)
				}
			}
		}
		if len(stmts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "-- %s\n%s\n\n", t.Name, strings.Join(stmts, "\n"))
	}
	return b.String()
}
