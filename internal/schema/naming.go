package schema

import "strings"

var nameReplacer = strings.NewReplacer(" ", "_", "-", "_")

// Normalize maps an Access identifier to its target-database form:
// lower case, spaces and hyphens replaced by underscores.
func Normalize(name string) string {
	return nameReplacer.Replace(strings.ToLower(name))
}

// HasSpecialChars reports whether the identifier contains characters that
// require quoting or renaming on the target.
func HasSpecialChars(name string) bool {
	return strings.ContainsAny(name, " ()/%-")
}

// IsGenericName matches spreadsheet-import leftovers such as F1, F2, F10.
func IsGenericName(name string) bool {
	if len(name) < 2 || (name[0] != 'f' && name[0] != 'F') {
		return false
	}
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
