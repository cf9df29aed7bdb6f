package export

import (
	"strings"

	"mdb-audit/internal/schema"
)

func TablesSummarySheet(r *schema.Report) Sheet {
	s := Sheet{
		Name:    "Tables",
		Headers: []string{"access_name", "target_name", "columns", "rows", "primary_key", "primary_key_method", "name_changed"},
		Widths:  map[string]float64{"A": 35, "B": 35, "E": 25, "F": 22},
	}
	for _, t := range r.TableDetails {
		pk := t.PrimaryKey
		if pk == "" {
			pk = "NONE"
		}
		s.Rows = append(s.Rows, []any{t.Name, t.PgName, len(t.Columns), t.RowCount, pk, t.PKMethod, t.Name != t.PgName})
	}
	return s
}

func ColumnsDetailSheet(r *schema.Report) Sheet {
	s := Sheet{
		Name:    "Columns",
		Headers: []string{"table", "column", "target_column", "ordinal", "type", "size", "decimal_digits", "nullable", "name_changed", "role", "meaning"},
		Widths:  map[string]float64{"A": 30, "B": 30, "C": 30, "E": 18, "K": 40},
	}
	for _, t := range r.TableDetails {
		for _, c := range t.Columns {
			s.Rows = append(s.Rows, []any{
				t.Name, c.Name, c.PgName, c.Ordinal, c.Type,
				optionalInt(c.Size), optionalInt(c.DecimalDigits), c.Nullable, c.Name != c.PgName,
				schema.ColumnRole(c.Name, c.Type), schema.AnalyzeMeaning(c.Name),
			})
		}
	}
	return s
}

func PrimaryKeysSheet(r *schema.Report) Sheet {
	s := Sheet{
		Name:    "Primary_Keys",
		Headers: []string{"table", "primary_key", "method", "rows"},
		Widths:  map[string]float64{"A": 35, "B": 30, "C": 22},
	}
	for _, t := range r.TableDetails {
		method := t.PKMethod
		if method == "" {
			method = "NONE"
		}
		s.Rows = append(s.Rows, []any{t.Name, t.PrimaryKey, method, t.RowCount})
	}
	return s
}

func RelationshipsSheet(r *schema.Report) Sheet {
	s := Sheet{
		Name:    "Relationships",
		Headers: []string{"definition"},
		Widths:  map[string]float64{"A": 120},
	}
	for _, rel := range r.Relationships.Details {
		s.Rows = append(s.Rows, []any{rel.Definition})
	}
	return s
}

func QueriesSheet(r *schema.Report) Sheet {
	s := Sheet{
		Name:    "Queries",
		Headers: []string{"name", "type", "sql"},
		Widths:  map[string]float64{"A": 35, "C": 100},
	}
	for _, q := range r.Queries.Details {
		s.Rows = append(s.Rows, []any{q.Name, q.Type, q.SQL})
	}
	return s
}

func DataQualitySheet(r *schema.Report) Sheet {
	s := Sheet{
		Name:    "Data_Quality",
		Headers: []string{"table", "column", "null_count", "null_percent", "distinct_count", "sample_values"},
		Widths:  map[string]float64{"A": 30, "B": 30, "F": 60},
	}
	for _, tq := range r.DataQuality {
		for _, cq := range tq.Columns {
			s.Rows = append(s.Rows, []any{
				tq.Table, cq.Column, cq.NullCount, cq.NullPercent, cq.DistinctCount,
				strings.Join(cq.SampleValues, "; "),
			})
		}
	}
	return s
}

func DeadColumnsSheet(r *schema.Report) Sheet {
	s := Sheet{
		Name:    "Dead_Columns",
		Headers: []string{"table", "column", "reason", "null_percent", "distinct_count", "row_count", "action"},
		Widths:  map[string]float64{"A": 30, "B": 30, "C": 15, "G": 50},
	}
	for _, d := range r.DeadColumns {
		s.Rows = append(s.Rows, []any{d.Table, d.Column, d.Reason, d.NullPercent, d.DistinctCount, d.RowCount, d.Action})
	}
	return s
}

func OrphansSheet(r *schema.Report) Sheet {
	s := Sheet{
		Name:    "Orphan_Records",
		Headers: []string{"table", "column", "ref_table", "ref_column", "orphan_count", "total_rows", "orphan_percent", "sample_orphans"},
		Widths:  map[string]float64{"A": 30, "C": 30, "H": 40},
	}
	for _, o := range r.Orphans {
		s.Rows = append(s.Rows, []any{
			o.Table, o.Column, o.RefTable, o.RefColumn, o.OrphanCount, o.TotalRows, o.OrphanPercent,
			strings.Join(o.SampleOrphans, "; "),
		})
	}
	return s
}

func IssuesSheet(r *schema.Report) Sheet {
	s := Sheet{
		Name:    "Issues",
		Headers: []string{"type", "severity", "table", "column", "issue", "action"},
		Widths:  map[string]float64{"A": 16, "C": 30, "D": 30, "E": 60, "F": 50},
	}
	for _, i := range r.PotentialIssues.Details {
		s.Rows = append(s.Rows, []any{i.Type, i.Severity, i.Table, i.Column, i.Issue, i.Action})
	}
	return s
}

func ForeignKeysSheet(r *schema.Report) Sheet {
	s := Sheet{
		Name:    "Inferred_Foreign_Keys",
		Headers: []string{"source_table", "source_column", "target_table", "target_column", "confidence", "pattern", "matched_values", "total_values", "match_percent"},
		Widths:  map[string]float64{"A": 30, "B": 25, "C": 30, "D": 25, "F": 22},
	}
	for _, fk := range r.InferredForeignKeys {
		s.Rows = append(s.Rows, []any{
			fk.SourceTable, fk.SourceColumn, fk.TargetTable, fk.TargetColumn,
			fk.Confidence, fk.Pattern, fk.MatchedValues, fk.TotalValues, fk.MatchPercent,
		})
	}
	return s
}

func IndexesSheet(r *schema.Report) Sheet {
	s := Sheet{
		Name:    "Index_Recommendations",
		Headers: []string{"table", "column", "index_name", "kind", "reason", "priority", "sql"},
		Widths:  map[string]float64{"A": 30, "B": 25, "C": 35, "E": 45, "G": 90},
	}
	for _, i := range r.Indexes {
		s.Rows = append(s.Rows, []any{i.Table, i.Column, i.IndexName, i.Kind, i.Reason, i.Priority, i.SQL})
	}
	return s
}

func PowerBISheet(r *schema.Report) Sheet {
	s := Sheet{
		Name:    "PowerBI_Impact",
		Headers: []string{"access_table", "target_table", "table_renamed", "renamed_columns", "reserved_words", "risk_level", "m_query_change"},
		Widths:  map[string]float64{"A": 30, "B": 30, "E": 30, "G": 100},
	}
	for _, p := range r.PowerBIImpact {
		s.Rows = append(s.Rows, []any{
			p.AccessTable, p.PgTable, yesNo(p.TableRenamed), p.RenamedColumns,
			strings.Join(p.ReservedWords, ", "), p.RiskLevel, p.MQueryChange,
		})
	}
	return s
}

func DAXSheet(r *schema.Report) Sheet {
	s := Sheet{
		Name:    "DAX_Impact",
		Headers: []string{"table", "column", "old_reference", "new_reference", "impact", "note"},
		Widths:  map[string]float64{"A": 30, "B": 30, "C": 45, "D": 45, "F": 60},
	}
	for _, d := range r.DAXImpact {
		s.Rows = append(s.Rows, []any{d.Table, d.Column, d.OldRef, d.NewRef, d.Impact, d.Note})
	}
	return s
}
