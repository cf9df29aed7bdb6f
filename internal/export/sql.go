package export

import (
	"fmt"
	"strings"

	"mdb-audit/internal/dialect"
	"mdb-audit/internal/schema"
)

// SQLWriter renders the report into DDL and check scripts for one target.
type SQLWriter struct {
	Dialect dialect.Dialect
	Schema  string
}

func (w SQLWriter) table(t *schema.TableDetail) string {
	return w.Dialect.QualifiedName(w.Schema, t.PgName)
}

func (w SQLWriter) header(b *strings.Builder, r *schema.Report, title string) {
	fmt.Fprintf(b, "-- %s\n", title)
	fmt.Fprintf(b, "-- Target: %s\n", w.Dialect.Name())
	fmt.Fprintf(b, "-- Source: %s\n", r.DatabasePath)
	fmt.Fprintf(b, "-- Generated: %s\n\n", r.AnalysisDate)
}

// pgColumn returns the normalized name of a column, falling back to
// normalizing the given name when the table is unknown.
func pgColumn(r *schema.Report, table, column string) string {
	if t := r.Detail(table); t != nil {
		if c, ok := t.Column(column); ok {
			return c.PgName
		}
	}
	return schema.Normalize(column)
}

func pgTable(r *schema.Report, table string) string {
	if t := r.Detail(table); t != nil {
		return t.PgName
	}
	return schema.Normalize(table)
}

// CreateTables maps every table through the dialect's type table.
func (w SQLWriter) CreateTables(r *schema.Report) string {
	var b strings.Builder
	w.header(&b, r, "Schema generated from Access database")

	for _, t := range r.TableDetails {
		fmt.Fprintf(&b, "-- Table: %s\n", t.Name)
		fmt.Fprintf(&b, "CREATE TABLE %s (\n", w.table(t))
		lines := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			line := fmt.Sprintf("    %s %s", w.Dialect.QuoteIdent(c.PgName), w.Dialect.ColumnType(c.Type, c.Size))
			if !c.Nullable {
				line += " NOT NULL"
			}
			lines = append(lines, line)
		}
		b.WriteString(strings.Join(lines, ",\n"))
		b.WriteString("\n);\n\n")
	}
	return b.String()
}

// NativeSchema wraps mdb-schema's own DDL with a header.
func (w SQLWriter) NativeSchema(r *schema.Report) string {
	var b strings.Builder
	w.header(&b, r, "DDL produced by mdb-schema "+w.Dialect.NativeBackend())
	if r.NativeDDL == "" {
		b.WriteString("-- mdb-schema produced no output; use create_tables.sql instead.\n")
		return b.String()
	}
	b.WriteString(r.NativeDDL)
	if !strings.HasSuffix(r.NativeDDL, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

func constraintName(prefix string, parts ...string) string {
	return indexIdent(prefix + "_" + strings.Join(parts, "_"))
}

func indexIdent(name string) string {
	if len(name) > 63 {
		return name[:63]
	}
	return name
}

// ForeignKeys adds a constraint per inferred key. Low confidence guesses are
// written commented out for review.
func (w SQLWriter) ForeignKeys(r *schema.Report) string {
	var b strings.Builder
	w.header(&b, r, "Foreign keys inferred from data")

	if len(r.InferredForeignKeys) == 0 {
		b.WriteString("-- No foreign keys inferred.\n")
		return b.String()
	}
	d := w.Dialect
	for _, fk := range r.InferredForeignKeys {
		src := pgTable(r, fk.SourceTable)
		srcCol := pgColumn(r, fk.SourceTable, fk.SourceColumn)
		tgt := pgTable(r, fk.TargetTable)
		tgtCol := pgColumn(r, fk.TargetTable, fk.TargetColumn)

		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s);",
			d.QualifiedName(w.Schema, src), d.QuoteIdent(constraintName("fk", src, srcCol)),
			d.QuoteIdent(srcCol), d.QualifiedName(w.Schema, tgt), d.QuoteIdent(tgtCol))

		fmt.Fprintf(&b, "-- %s.%s -> %s.%s (%s, %s, %d/%d values matched)\n",
			fk.SourceTable, fk.SourceColumn, fk.TargetTable, fk.TargetColumn,
			fk.Confidence, fk.Pattern, fk.MatchedValues, fk.TotalValues)
		switch fk.Confidence {
		case schema.ConfidenceLow:
			b.WriteString("-- " + stmt + "\n\n")
		case schema.ConfidenceMedium:
			b.WriteString("-- Orphans exist: clean them up (see orphan_records.xlsx) before enabling.\n")
			b.WriteString(stmt + "\n\n")
		default:
			b.WriteString(stmt + "\n\n")
		}
	}
	return b.String()
}

// Indexes writes the recommended index statements, highest priority first.
func (w SQLWriter) Indexes(r *schema.Report) string {
	var b strings.Builder
	w.header(&b, r, "Recommended indexes")

	for _, priority := range []string{schema.SeverityHigh, schema.SeverityMedium, schema.SeverityLow} {
		first := true
		for _, i := range r.Indexes {
			if i.Priority != priority {
				continue
			}
			if first {
				fmt.Fprintf(&b, "-- %s priority\n", priority)
				first = false
			}
			fmt.Fprintf(&b, "-- %s.%s: %s\n%s\n", i.Table, i.Column, i.Reason, i.SQL)
		}
		if !first {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// CompatibilityViews exposes renamed tables and columns under their Access
// names so existing reports keep working during the cut-over.
func (w SQLWriter) CompatibilityViews(r *schema.Report) string {
	var b strings.Builder
	w.header(&b, r, "Compatibility views using the original Access names")
	d := w.Dialect

	n := 0
	for _, t := range r.TableDetails {
		renamed := t.Name != t.PgName
		for _, c := range t.Columns {
			if c.Name != c.PgName {
				renamed = true
				break
			}
		}
		if !renamed || len(t.Columns) == 0 {
			continue
		}
		n++

		// Unquoted names fold case on several targets, so a view named Risks
		// would land on the risks table.
		view := t.Name
		if strings.EqualFold(t.Name, t.PgName) {
			view = t.PgName + "_compat"
		}
		cols := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			if c.Name == c.PgName {
				cols = append(cols, "    "+d.QuoteIdent(c.PgName))
			} else {
				cols = append(cols, fmt.Sprintf("    %s AS %s", d.QuoteIdent(c.PgName), d.QuoteIdent(c.Name)))
			}
		}
		fmt.Fprintf(&b, "CREATE VIEW %s AS\nSELECT\n%s\nFROM %s;\n\n",
			d.QualifiedName(w.Schema, view), strings.Join(cols, ",\n"), w.table(t))
	}
	if n == 0 {
		b.WriteString("-- No renamed tables or columns; no views needed.\n")
	}
	return b.String()
}

// ValidationQueries checks a loaded target against the analysis snapshot:
// row counts, key uniqueness and inferred key orphans.
func (w SQLWriter) ValidationQueries(r *schema.Report) string {
	var b strings.Builder
	w.header(&b, r, "Post-migration validation queries")
	d := w.Dialect

	b.WriteString("-- 1. Row counts (expected values from the source snapshot)\n")
	for _, t := range r.TableDetails {
		fmt.Fprintf(&b, "SELECT '%s' AS table_name, %d AS expected_rows, COUNT(*) AS actual_rows FROM %s;\n",
			strings.ReplaceAll(t.PgName, "'", "''"), t.RowCount, w.table(t))
	}

	b.WriteString("\n-- 2. Primary key uniqueness (expect no rows)\n")
	for _, t := range r.TableDetails {
		c, ok := t.Column(t.PrimaryKey)
		if !ok {
			continue
		}
		col := d.QuoteIdent(c.PgName)
		fmt.Fprintf(&b, "SELECT %s, COUNT(*) FROM %s GROUP BY %s HAVING COUNT(*) > 1;\n", col, w.table(t), col)
	}

	b.WriteString("\n-- 3. Orphans on inferred foreign keys (expect 0)\n")
	for _, fk := range r.InferredForeignKeys {
		if fk.Confidence == schema.ConfidenceLow {
			continue
		}
		srcCol := d.QuoteIdent(pgColumn(r, fk.SourceTable, fk.SourceColumn))
		tgtCol := d.QuoteIdent(pgColumn(r, fk.TargetTable, fk.TargetColumn))
		fmt.Fprintf(&b, "SELECT COUNT(*) AS orphan_rows FROM %s s LEFT JOIN %s t ON s.%s = t.%s WHERE s.%s IS NOT NULL AND t.%s IS NULL;\n",
			d.QualifiedName(w.Schema, pgTable(r, fk.SourceTable)),
			d.QualifiedName(w.Schema, pgTable(r, fk.TargetTable)),
			srcCol, tgtCol, srcCol, tgtCol)
	}
	return b.String()
}
