package dialect

import (
	"fmt"
	"strings"
)

type MysqlDialect struct{}

var mysqlTypes = map[string]string{
	"COUNTER":        "INT AUTO_INCREMENT",
	"LONG INTEGER":   "INT",
	"INTEGER":        "SMALLINT",
	"SMALLINT":       "SMALLINT",
	"BYTE":           "TINYINT UNSIGNED",
	"SINGLE":         "FLOAT",
	"DOUBLE":         "DOUBLE",
	"NUMERIC":        "DECIMAL(28,6)",
	"CURRENCY":       "DECIMAL(19,4)",
	"DATETIME":       "DATETIME",
	"BOOLEAN":        "TINYINT(1)",
	"TEXT":           "VARCHAR(255)",
	"MEMO":           "LONGTEXT",
	"VARCHAR":        "VARCHAR(255)",
	"LONGBINARY":     "LONGBLOB",
	"OLE":            "LONGBLOB",
	"REPLICATION ID": "CHAR(36)",
}

var mysqlReserved = reservedSet(
	"user", "order", "table", "group", "select", "where", "index", "key",
	"primary", "foreign", "check", "default", "constraint", "desc", "range",
	"rank", "read", "release", "condition", "interval", "match", "status",
)

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) NativeBackend() string { return "mysql" }

func (d *MysqlDialect) ColumnType(accessType string, size *int) string {
	return mapType(mysqlTypes, accessType, size, "VARCHAR(%d)", "LONGTEXT")
}

func (d *MysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d *MysqlDialect) IsReserved(word string) bool {
	return mysqlReserved[word]
}

func (d *MysqlDialect) CountQuery(schema, table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QualifiedName(schema, table))
}

func (d *MysqlDialect) GetLimitRowQuery(query string, limit int) string {
	return fmt.Sprintf("%s LIMIT %d", query, limit)
}

func (d *MysqlDialect) BeforeLoad() string { return "SET FOREIGN_KEY_CHECKS = 0;" }

func (d *MysqlDialect) AfterLoad() string { return "SET FOREIGN_KEY_CHECKS = 1;" }

func (d *MysqlDialect) TruncateQuery(table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s;", table)
}

func (d *MysqlDialect) LoadQuery(table string, cols []string, csvPath string) string {
	return fmt.Sprintf("LOAD DATA LOCAL INFILE '%s' INTO TABLE %s\n"+
		"  FIELDS TERMINATED BY ',' OPTIONALLY ENCLOSED BY '\"' IGNORE 1 LINES (%s);",
		escapeLiteral(csvPath), table, strings.Join(cols, ", "))
}

// ResetIdentityQuery: AUTO_INCREMENT follows the loaded maximum on its own.
func (d *MysqlDialect) ResetIdentityQuery(table, column string) string { return "" }

// QualifiedName omits the schema unless one is given: MySQL databases are
// selected by the DSN.
func (d *MysqlDialect) QualifiedName(schema, table string) string {
	s := d.GetSchemaName(schema)
	if s == "" {
		return d.QuoteIdent(table)
	}
	return d.QuoteIdent(s) + "." + d.QuoteIdent(table)
}

func (d *MysqlDialect) GetSchemaName(input string) string {
	if input == "public" {
		return ""
	}
	return DefaultGetSchemaName(input)
}
