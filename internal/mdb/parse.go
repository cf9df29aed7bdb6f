package mdb

import (
	"regexp"
	"strconv"
	"strings"

	"mdb-audit/internal/schema"
)

var (
	rePrimaryKey  = regexp.MustCompile(`(?i)PRIMARY\s+KEY\s*\(\s*([^),]+)`)
	rePrimaryIdx  = regexp.MustCompile(`(?i)CREATE\s+UNIQUE\s+INDEX\s+["\[]?(?:PrimaryKey|[^\s"\]]*_pkey)["\]]?\s+ON\s+[^(]+\(\s*([^),]+)`)
	reSpaces      = regexp.MustCompile(`\s+`)
	reNotNull     = regexp.MustCompile(`(?i)\bNOT\s+NULL\b`)
	reInlinePK    = regexp.MustCompile(`(?i)\bPRIMARY\s+KEY\b`)
	reColumnExtra = regexp.MustCompile(`(?i)\s+(DEFAULT|PRIMARY|UNIQUE|REFERENCES|CHECK)\b.*$`)
)

// ParseLines splits tool output into trimmed, non-empty lines.
func ParseLines(output string) []string {
	var lines []string
	for _, l := range strings.Split(output, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// ParseTableList returns user tables from `mdb-tables -1` output, dropping
// names that start with systemPrefix.
func ParseTableList(output, systemPrefix string) []string {
	tables := []string{}
	for _, t := range ParseLines(output) {
		if systemPrefix != "" && strings.HasPrefix(t, systemPrefix) {
			continue
		}
		tables = append(tables, t)
	}
	return tables
}

// ParseRelationships keeps the FOREIGN KEY ... REFERENCES statements of
// `mdb-schema --relationships` output.
func ParseRelationships(output string) []schema.Relationship {
	rels := []schema.Relationship{}
	for _, l := range ParseLines(output) {
		u := strings.ToUpper(l)
		if strings.Contains(u, "FOREIGN KEY") && strings.Contains(u, "REFERENCES") {
			rels = append(rels, schema.Relationship{Definition: l})
		}
	}
	return rels
}

// ParseCreateTable extracts column definitions from the CREATE TABLE block
// of `mdb-schema -T <table>` output, together with the declared primary key
// column if the dump contains one.
func ParseCreateTable(output string) ([]schema.ColumnInfo, string) {
	columns := []schema.ColumnInfo{}
	declared := ""

	inCreate := false
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(strings.ToUpper(line), "CREATE TABLE") {
			inCreate = true
			continue
		}
		if !inCreate || line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		if strings.HasPrefix(line, ")") {
			break
		}
		if strings.HasPrefix(line, "(") {
			line = strings.TrimSpace(line[1:])
			if line == "" {
				continue
			}
		}

		quoted := strings.ContainsRune("[\"`", rune(line[0]))
		name, rest := splitName(line)
		if name == "" {
			continue
		}
		if !quoted && isConstraintKeyword(name) {
			continue
		}

		col := parseColumn(name, rest, line, len(columns)+1)
		if declared == "" && reInlinePK.MatchString(rest) {
			declared = col.Name
		}
		columns = append(columns, col)
	}

	if declared == "" {
		declared = declaredPrimaryKey(output)
	}
	return columns, declared
}

func parseColumn(name, rest, line string, ordinal int) schema.ColumnInfo {
	rest = strings.TrimRight(rest, ", ")
	rest = reNotNull.ReplaceAllString(rest, "")
	rest = reColumnExtra.ReplaceAllString(rest, "")
	rest = strings.TrimSpace(rest)

	col := schema.ColumnInfo{
		Name:     name,
		PgName:   schema.Normalize(name),
		Nullable: !reNotNull.MatchString(line),
		Ordinal:  ordinal,
	}

	colType := rest
	if open := strings.Index(rest, "("); open >= 0 {
		colType = rest[:open]
		inner := rest[open+1:]
		if end := strings.Index(inner, ")"); end >= 0 {
			inner = inner[:end]
		}
		parts := strings.Split(inner, ",")
		if size, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
			col.Size = &size
		}
		if len(parts) > 1 {
			if digits, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
				col.DecimalDigits = &digits
			}
		}
	}

	colType = strings.ToUpper(reSpaces.ReplaceAllString(strings.TrimSpace(colType), " "))
	if colType == "" {
		colType = "VARCHAR"
	}
	col.Type = colType
	return col
}

// splitName reads a bracketed, quoted or bare identifier off the front of a
// column definition.
func splitName(line string) (string, string) {
	if line == "" {
		return "", ""
	}
	var closer byte
	switch line[0] {
	case '[':
		closer = ']'
	case '"':
		closer = '"'
	case '`':
		closer = '`'
	}
	if closer != 0 {
		if end := strings.IndexByte(line[1:], closer); end >= 0 {
			return line[1 : end+1], strings.TrimSpace(line[end+2:])
		}
		return strings.Trim(line, `[]"`+"`"), ""
	}
	fields := strings.Fields(line)
	name := strings.TrimRight(fields[0], ",")
	return name, strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
}

func isConstraintKeyword(word string) bool {
	switch strings.ToUpper(word) {
	case "CONSTRAINT", "PRIMARY", "UNIQUE", "FOREIGN", "CHECK", "KEY", "INDEX":
		return true
	}
	return false
}

func declaredPrimaryKey(output string) string {
	for _, re := range []*regexp.Regexp{rePrimaryKey, rePrimaryIdx} {
		if m := re.FindStringSubmatch(output); m != nil {
			return strings.Trim(strings.TrimSpace(m[1]), `[]"`+"`")
		}
	}
	return ""
}
