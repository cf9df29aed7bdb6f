package schema

import (
	"strings"
	"unicode"
)

// Column roles used by index and Power BI recommendations.
const (
	RoleIdentifier = "identifier"
	RoleCode       = "code"
	RoleDate       = "date"
	RoleAmount     = "amount"
	RoleFlag       = "flag"
	RoleText       = "text"
	RoleOther      = "other"
)

var abbreviations = map[string]string{
	// Common Nouns
	"nm": "name", "dt": "date", "no": "number", "num": "number", "cd": "code",
	"desc": "description", "amt": "amount", "cnt": "count", "qty": "quantity",
	"addr": "address", "tel": "phone", "ph": "phone",
	"msg": "message", "txt": "text", "subj": "subject",
	"doc": "document", "usr": "user", "emp": "employee",
	"dept": "department", "grp": "group", "cat": "category",
	"loc": "location", "ref": "reference", "val": "value",
	"bal": "balance", "calc": "calculation", "avg": "average", "pct": "percent",
	"seq": "sequence", "idx": "index", "mgr": "manager", "org": "organisation",

	// Verbs / Status
	"reg": "registered", "mod": "modified", "del": "deleted", "cre": "created",
	"upd": "updated", "yn": "yesno", "stat": "status", "sts": "status",
	"typ": "type", "flg": "flag",
}

// words splits an Access identifier on separators and camelCase boundaries.
func words(name string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
			continue
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]):
			flush()
		case unicode.IsUpper(r) && i > 0 && i+1 < len(runes) && unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1]):
			flush()
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// AnalyzeMeaning expands abbreviations in a column name, e.g.
// "RiskDt" -> "risk date", "Owner_Nm" -> "owner name".
func AnalyzeMeaning(colName string) string {
	parts := words(colName)
	decoded := make([]string, 0, len(parts))
	for _, part := range parts {
		if full, ok := abbreviations[part]; ok {
			decoded = append(decoded, full)
		} else {
			decoded = append(decoded, part)
		}
	}
	return strings.Join(decoded, " ")
}

// ColumnRole classifies a column from its name and declared Access type.
func ColumnRole(colName, accessType string) string {
	t := strings.ToUpper(accessType)
	meaning := AnalyzeMeaning(colName)
	parts := strings.Fields(meaning)
	last := ""
	if len(parts) > 0 {
		last = parts[len(parts)-1]
	}

	switch {
	case t == "COUNTER" || last == "id":
		return RoleIdentifier
	case t == "DATETIME" || t == "DATE" || last == "date" || strings.Contains(meaning, "time"):
		return RoleDate
	case t == "BOOLEAN" || last == "yesno" || last == "flag" || (len(parts) > 1 && parts[0] == "is"):
		return RoleFlag
	case last == "code" || last == "reference" || last == "number":
		return RoleCode
	case t == "CURRENCY" || last == "amount" || last == "cost" || last == "price" || last == "total" || last == "balance":
		return RoleAmount
	case t == "TEXT" || t == "MEMO" || t == "VARCHAR" || strings.HasPrefix(t, "MEMO"):
		return RoleText
	default:
		return RoleOther
	}
}
