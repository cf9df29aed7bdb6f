package dialect

import (
	"fmt"
	"strings"
)

// accessAliases folds the spellings mdb-schema and the Access UI use for the
// same storage type into one canonical name.
var accessAliases = map[string]string{
	"LONG":           "LONG INTEGER",
	"AUTONUMBER":     "COUNTER",
	"MEMO/HYPERLINK": "MEMO",
	"HYPERLINK":      "MEMO",
	"OLE OBJECT":     "OLE",
	"YES/NO":         "BOOLEAN",
	"DATE/TIME":      "DATETIME",
	"DATE":           "DATETIME",
	"GUID":           "REPLICATION ID",
	"DECIMAL":        "NUMERIC",
}

// CanonicalAccessType upper-cases an Access type and resolves aliases.
func CanonicalAccessType(accessType string) string {
	t := strings.ToUpper(strings.Join(strings.Fields(accessType), " "))
	if alias, ok := accessAliases[t]; ok {
		return alias
	}
	return t
}

// IsIntegerType reports whether the Access type stores whole numbers.
func IsIntegerType(accessType string) bool {
	switch CanonicalAccessType(accessType) {
	case "COUNTER", "LONG INTEGER", "INTEGER", "BYTE":
		return true
	}
	return false
}

// IsBinaryType reports whether the Access type holds embedded objects.
func IsBinaryType(accessType string) bool {
	switch CanonicalAccessType(accessType) {
	case "OLE", "LONGBINARY", "BINARY":
		return true
	}
	return false
}

// mapType resolves an Access type through a dialect's table. Text types take
// the declared size when present; unknown types fall back.
func mapType(m map[string]string, accessType string, size *int, sizedText, fallback string) string {
	t := CanonicalAccessType(accessType)
	if (t == "TEXT" || t == "VARCHAR") && size != nil && *size > 0 {
		return fmt.Sprintf(sizedText, *size)
	}
	if mapped, ok := m[t]; ok {
		return mapped
	}
	return fallback
}

func reservedSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}

// DefaultGetSchemaName is a default implementation for Getting Schema Name (identity).
func DefaultGetSchemaName(input string) string {
	return input
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
