package analyze

import (
	"fmt"
	"strings"

	"mdb-audit/internal/dialect"
	"mdb-audit/internal/schema"
)

// Index kinds.
const (
	IndexPrimary = "PRIMARY"
	IndexUnique  = "UNIQUE"
	IndexBTree   = "BTREE"
)

const maxIdentLength = 63

// RecommendIndexes proposes one index per column: the primary key, inferred
// foreign key columns, unique business keys and date columns, in that order.
func RecommendIndexes(r *schema.Report, businessKeys []string, d dialect.Dialect, schemaName string) []schema.IndexInfo {
	out := []schema.IndexInfo{}
	done := make(map[string]bool)

	add := func(t *schema.TableDetail, c schema.ColumnInfo, kind, reason, priority string) {
		key := t.Name + "." + c.Name
		if done[key] {
			return
		}
		done[key] = true

		table := d.QualifiedName(schemaName, t.PgName)
		col := d.QuoteIdent(c.PgName)
		info := schema.IndexInfo{
			Table:    t.Name,
			Column:   c.Name,
			Kind:     kind,
			Reason:   reason,
			Priority: priority,
		}
		switch kind {
		case IndexPrimary:
			info.IndexName = indexName("pk", t.PgName, "")
			info.SQL = fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s);", table, d.QuoteIdent(info.IndexName), col)
		case IndexUnique:
			info.IndexName = indexName("uq", t.PgName, c.PgName)
			info.SQL = fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s);", d.QuoteIdent(info.IndexName), table, col)
		default:
			info.IndexName = indexName("idx", t.PgName, c.PgName)
			info.SQL = fmt.Sprintf("CREATE INDEX %s ON %s (%s);", d.QuoteIdent(info.IndexName), table, col)
		}
		out = append(out, info)
	}

	for _, t := range r.TableDetails {
		if c, ok := t.Column(t.PrimaryKey); ok {
			add(t, c, IndexPrimary, "Primary key ("+t.PKMethod+")", schema.SeverityHigh)
		}
	}

	for _, fk := range r.InferredForeignKeys {
		t := r.Detail(fk.SourceTable)
		if t == nil {
			continue
		}
		c, ok := t.Column(fk.SourceColumn)
		if !ok {
			continue
		}
		priority := schema.SeverityHigh
		if fk.Confidence == schema.ConfidenceLow {
			priority = schema.SeverityLow
		}
		add(t, c, IndexBTree, fmt.Sprintf("Foreign key to %s.%s (%s confidence)", fk.TargetTable, fk.TargetColumn, fk.Confidence), priority)
	}

	for _, t := range r.TableDetails {
		q := r.Quality(t.Name)
		for _, key := range businessKeys {
			c, ok := columnFold(t, key)
			if !ok || q == nil || q.RowCount == 0 {
				continue
			}
			if cq, ok := q.Column(c.Name); ok && cq.NullCount == 0 && cq.DistinctCount == q.RowCount {
				add(t, c, IndexUnique, "Business key with unique values", schema.SeverityMedium)
			}
		}
	}

	for _, t := range r.TableDetails {
		for _, c := range t.Columns {
			if schema.ColumnRole(c.Name, c.Type) == schema.RoleDate {
				add(t, c, IndexBTree, "Date column used for filtering and sorting", schema.SeverityLow)
			}
		}
	}
	return out
}

func columnFold(t *schema.TableDetail, name string) (schema.ColumnInfo, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return schema.ColumnInfo{}, false
}

func indexName(prefix, table, column string) string {
	name := prefix + "_" + table
	if column != "" {
		name += "_" + column
	}
	if len(name) > maxIdentLength {
		name = name[:maxIdentLength]
	}
	return name
}

// PowerBIImpacts rates how much each table's Power BI query must change.
func PowerBIImpacts(tables []*schema.TableDetail, d dialect.Dialect, schemaName string) []schema.PowerBIImpact {
	out := make([]schema.PowerBIImpact, 0, len(tables))
	for _, t := range tables {
		imp := schema.PowerBIImpact{
			AccessTable:   t.Name,
			PgTable:       t.PgName,
			TableRenamed:  t.Name != t.PgName,
			ReservedWords: []string{},
		}
		if d.IsReserved(strings.ToLower(t.PgName)) {
			imp.ReservedWords = append(imp.ReservedWords, t.PgName)
		}
		for _, c := range t.Columns {
			if c.Name != c.PgName {
				imp.RenamedColumns++
			}
			if d.IsReserved(strings.ToLower(c.PgName)) {
				imp.ReservedWords = append(imp.ReservedWords, c.PgName)
			}
		}

		switch {
		case len(imp.ReservedWords) > 0:
			imp.RiskLevel = schema.SeverityHigh
		case imp.TableRenamed || imp.RenamedColumns > 0:
			imp.RiskLevel = schema.SeverityMedium
		default:
			imp.RiskLevel = schema.SeverityLow
		}

		change := fmt.Sprintf(`Replace Access source with Source{[Schema="%s",Item="%s"]}[Data]`, d.GetSchemaName(schemaName), t.PgName)
		if imp.RenamedColumns > 0 {
			change += fmt.Sprintf("; rename %d column(s) back with Table.RenameColumns or use the compatibility view", imp.RenamedColumns)
		}
		imp.MQueryChange = change
		out = append(out, imp)
	}
	return out
}

// DAXImpacts lists the DAX references that break for every renamed column.
func DAXImpacts(tables []*schema.TableDetail, d dialect.Dialect) []schema.DAXImpact {
	out := []schema.DAXImpact{}
	for _, t := range tables {
		for _, c := range t.Columns {
			if c.Name == c.PgName {
				continue
			}
			imp := schema.DAXImpact{
				Table:  t.Name,
				Column: c.Name,
				OldRef: daxRef(t.Name, c.Name),
				NewRef: daxRef(t.PgName, c.PgName),
				Impact: schema.SeverityMedium,
				Note:   "Update measures and calculated columns that reference this column",
			}
			if d.IsReserved(strings.ToLower(c.PgName)) {
				imp.Impact = schema.SeverityHigh
				imp.Note = "New name is a reserved word; keep it quoted in native queries"
			} else if t.Name != t.PgName {
				imp.Note = "Table is renamed too; update both table and column references"
			}
			out = append(out, imp)
		}
	}
	return out
}

func daxRef(table, column string) string {
	return "'" + strings.ReplaceAll(table, "'", "''") + "'[" + strings.ReplaceAll(column, "]", "]]") + "]"
}
