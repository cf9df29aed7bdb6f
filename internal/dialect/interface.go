package dialect

// Dialect abstracts the target database of a migration.
type Dialect interface {
	// Identity
	Name() string
	NativeBackend() string // mdb-schema backend producing this dialect's DDL

	// DDL Generation
	ColumnType(accessType string, size *int) string
	QuoteIdent(name string) string
	IsReserved(word string) bool

	// Load Scripts
	BeforeLoad() string
	AfterLoad() string
	TruncateQuery(table string) string
	LoadQuery(table string, cols []string, csvPath string) string
	ResetIdentityQuery(table, column string) string

	// Verification Queries
	CountQuery(schema, table string) string
	GetLimitRowQuery(query string, limit int) string

	// Helpers
	QualifiedName(schema, table string) string
	GetSchemaName(input string) string
}
