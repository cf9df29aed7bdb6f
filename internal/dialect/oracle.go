package dialect

import (
	"fmt"
	"strings"
)

type OracleDialect struct{}

var oracleTypes = map[string]string{
	"COUNTER":        "NUMBER(10) GENERATED BY DEFAULT AS IDENTITY",
	"LONG INTEGER":   "NUMBER(10)",
	"INTEGER":        "NUMBER(5)",
	"SMALLINT":       "NUMBER(5)",
	"BYTE":           "NUMBER(3)",
	"SINGLE":         "BINARY_FLOAT",
	"DOUBLE":         "BINARY_DOUBLE",
	"NUMERIC":        "NUMBER",
	"CURRENCY":       "NUMBER(19,4)",
	"DATETIME":       "TIMESTAMP",
	"BOOLEAN":        "NUMBER(1)",
	"TEXT":           "VARCHAR2(255 CHAR)",
	"MEMO":           "CLOB",
	"VARCHAR":        "VARCHAR2(255 CHAR)",
	"LONGBINARY":     "BLOB",
	"OLE":            "BLOB",
	"REPLICATION ID": "RAW(16)",
}

var oracleReserved = reservedSet(
	"user", "order", "table", "group", "select", "where", "index",
	"primary", "foreign", "check", "default", "constraint", "comment",
	"date", "level", "number", "size", "uid", "resource", "mode", "access",
)

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) NativeBackend() string { return "oracle" }

func (d *OracleDialect) ColumnType(accessType string, size *int) string {
	return mapType(oracleTypes, accessType, size, "VARCHAR2(%d CHAR)", "CLOB")
}

func (d *OracleDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *OracleDialect) IsReserved(word string) bool {
	return oracleReserved[word]
}

func (d *OracleDialect) BeforeLoad() string { return "" }

func (d *OracleDialect) AfterLoad() string { return "" }

func (d *OracleDialect) TruncateQuery(table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s;", table)
}

// LoadQuery: Oracle has no client-side CSV load in SQL; emit the SQL*Loader
// call as a comment for the operator.
func (d *OracleDialect) LoadQuery(table string, cols []string, csvPath string) string {
	return fmt.Sprintf("-- sqlldr data='%s' control=<ctl> -- INTO TABLE %s (%s)",
		csvPath, table, strings.Join(cols, ", "))
}

func (d *OracleDialect) ResetIdentityQuery(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s MODIFY %s GENERATED BY DEFAULT AS IDENTITY (START WITH LIMIT VALUE);", table, d.QuoteIdent(column))
}

func (d *OracleDialect) CountQuery(schema, table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QualifiedName(schema, table))
}

func (d *OracleDialect) GetLimitRowQuery(query string, limit int) string {
	return fmt.Sprintf("%s FETCH FIRST %d ROWS ONLY", query, limit)
}

// QualifiedName: tables live in the connected user's schema unless one is given.
func (d *OracleDialect) QualifiedName(schema, table string) string {
	s := d.GetSchemaName(schema)
	if s == "" {
		return d.QuoteIdent(table)
	}
	return d.QuoteIdent(s) + "." + d.QuoteIdent(table)
}

func (d *OracleDialect) GetSchemaName(input string) string {
	if input == "public" {
		return ""
	}
	return DefaultGetSchemaName(input)
}
