package dialect

import (
	"fmt"
	"strings"
)

type MSSQLDialect struct{}

var mssqlTypes = map[string]string{
	"COUNTER":        "INT IDENTITY(1,1)",
	"LONG INTEGER":   "INT",
	"INTEGER":        "SMALLINT",
	"SMALLINT":       "SMALLINT",
	"BYTE":           "TINYINT",
	"SINGLE":         "REAL",
	"DOUBLE":         "FLOAT",
	"NUMERIC":        "DECIMAL(28,6)",
	"CURRENCY":       "MONEY",
	"DATETIME":       "DATETIME2",
	"BOOLEAN":        "BIT",
	"TEXT":           "NVARCHAR(255)",
	"MEMO":           "NVARCHAR(MAX)",
	"VARCHAR":        "NVARCHAR(255)",
	"LONGBINARY":     "VARBINARY(MAX)",
	"OLE":            "VARBINARY(MAX)",
	"REPLICATION ID": "UNIQUEIDENTIFIER",
}

var mssqlReserved = reservedSet(
	"user", "order", "table", "group", "select", "where", "index", "key",
	"primary", "foreign", "check", "default", "constraint", "file", "plan",
	"public", "rule", "schema", "identity", "percent", "open", "close",
)

func (d *MSSQLDialect) Name() string { return "sqlserver" }

// NativeBackend: mdbtools has no SQL Server backend; sybase DDL is the closest.
func (d *MSSQLDialect) NativeBackend() string { return "sybase" }

func (d *MSSQLDialect) ColumnType(accessType string, size *int) string {
	return mapType(mssqlTypes, accessType, size, "NVARCHAR(%d)", "NVARCHAR(MAX)")
}

func (d *MSSQLDialect) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (d *MSSQLDialect) IsReserved(word string) bool {
	return mssqlReserved[word]
}

func (d *MSSQLDialect) BeforeLoad() string {
	return "EXEC sp_MSforeachtable 'ALTER TABLE ? NOCHECK CONSTRAINT all';"
}

func (d *MSSQLDialect) AfterLoad() string {
	return "EXEC sp_MSforeachtable 'ALTER TABLE ? WITH CHECK CHECK CONSTRAINT all';"
}

func (d *MSSQLDialect) TruncateQuery(table string) string {
	return fmt.Sprintf("DELETE FROM %s;", table)
}

func (d *MSSQLDialect) LoadQuery(table string, cols []string, csvPath string) string {
	return fmt.Sprintf("BULK INSERT %s FROM '%s' WITH (FORMAT = 'CSV', FIRSTROW = 2, KEEPIDENTITY);",
		table, escapeLiteral(csvPath))
}

func (d *MSSQLDialect) ResetIdentityQuery(table, column string) string {
	return fmt.Sprintf("DBCC CHECKIDENT ('%s', RESEED);", escapeLiteral(table))
}

func (d *MSSQLDialect) CountQuery(schema, table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QualifiedName(schema, table))
}

func (d *MSSQLDialect) GetLimitRowQuery(query string, limit int) string {
	// SQL Server uses TOP instead of LIMIT
	if strings.HasPrefix(strings.ToUpper(query), "SELECT ") {
		return fmt.Sprintf("SELECT TOP %d %s", limit, query[7:])
	}
	return query
}

func (d *MSSQLDialect) QualifiedName(schema, table string) string {
	return d.QuoteIdent(d.GetSchemaName(schema)) + "." + d.QuoteIdent(table)
}

func (d *MSSQLDialect) GetSchemaName(input string) string {
	if input == "" || input == "public" {
		return "dbo"
	}
	return input
}
