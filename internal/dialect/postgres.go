package dialect

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

type PostgresDialect struct{}

var postgresTypes = map[string]string{
	"COUNTER":        "SERIAL",
	"LONG INTEGER":   "INTEGER",
	"INTEGER":        "INTEGER",
	"SMALLINT":       "SMALLINT",
	"BYTE":           "SMALLINT",
	"SINGLE":         "REAL",
	"DOUBLE":         "DOUBLE PRECISION",
	"NUMERIC":        "NUMERIC",
	"CURRENCY":       "NUMERIC(19,4)",
	"DATETIME":       "TIMESTAMP",
	"BOOLEAN":        "BOOLEAN",
	"TEXT":           "TEXT",
	"MEMO":           "TEXT",
	"VARCHAR":        "VARCHAR",
	"LONGBINARY":     "BYTEA",
	"OLE":            "BYTEA",
	"REPLICATION ID": "UUID",
}

var postgresReserved = reservedSet(
	"user", "order", "table", "group", "select", "where", "index",
	"key", "primary", "foreign", "check", "default", "constraint",
	"all", "analyse", "analyze", "and", "any", "array", "as", "asc",
	"both", "case", "cast", "collate", "column", "create", "current_date",
	"current_time", "current_user", "desc", "distinct", "do", "else", "end",
	"except", "false", "fetch", "for", "from", "grant", "having", "in",
	"initially", "intersect", "into", "leading", "limit", "not", "null",
	"offset", "on", "only", "or", "references", "returning", "some",
	"symmetric", "then", "to", "trailing", "true", "union", "unique",
	"using", "variadic", "when", "window", "with",
)

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) NativeBackend() string { return "postgres" }

func (d *PostgresDialect) ColumnType(accessType string, size *int) string {
	return mapType(postgresTypes, accessType, size, "VARCHAR(%d)", "TEXT")
}

func (d *PostgresDialect) QuoteIdent(name string) string {
	return pq.QuoteIdentifier(name)
}

func (d *PostgresDialect) IsReserved(word string) bool {
	return postgresReserved[word]
}

// BeforeLoad disables triggers and FK checks for the session; it needs
// superuser rights.
func (d *PostgresDialect) BeforeLoad() string {
	return "SET session_replication_role = 'replica';"
}

func (d *PostgresDialect) AfterLoad() string {
	return "SET session_replication_role = 'origin';"
}

func (d *PostgresDialect) TruncateQuery(table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s CASCADE;", table)
}

// LoadQuery uses psql's client-side \copy.
func (d *PostgresDialect) LoadQuery(table string, cols []string, csvPath string) string {
	return fmt.Sprintf("\\copy %s (%s) FROM '%s' WITH (FORMAT csv, HEADER true)",
		table, strings.Join(cols, ", "), escapeLiteral(csvPath))
}

func (d *PostgresDialect) ResetIdentityQuery(table, column string) string {
	return fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE(MAX(%s), 1)) FROM %s;",
		escapeLiteral(table), escapeLiteral(column), d.QuoteIdent(column), table)
}

func (d *PostgresDialect) CountQuery(schema, table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QualifiedName(schema, table))
}

func (d *PostgresDialect) GetLimitRowQuery(query string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}

func (d *PostgresDialect) QualifiedName(schema, table string) string {
	return d.QuoteIdent(d.GetSchemaName(schema)) + "." + d.QuoteIdent(table)
}

func (d *PostgresDialect) GetSchemaName(input string) string {
	if input == "" {
		return "public"
	}
	return input
}
