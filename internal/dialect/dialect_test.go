package dialect_test

import (
	"testing"

	"mdb-audit/internal/dialect"
)

func intPtr(v int) *int { return &v }

func TestPostgresColumnType(t *testing.T) {
	d := dialect.GetDialect("postgres")
	cases := []struct {
		access string
		size   *int
		want   string
	}{
		{"COUNTER", nil, "SERIAL"},
		{"Long Integer", nil, "INTEGER"},
		{"LONG", nil, "INTEGER"},
		{"CURRENCY", nil, "NUMERIC(19,4)"},
		{"DATETIME", nil, "TIMESTAMP"},
		{"TEXT", intPtr(50), "VARCHAR(50)"},
		{"TEXT", nil, "TEXT"},
		{"MEMO/HYPERLINK", intPtr(255), "TEXT"},
		{"OLE", nil, "BYTEA"},
		{"SOMETHING ODD", nil, "TEXT"},
	}
	for _, c := range cases {
		if got := d.ColumnType(c.access, c.size); got != c.want {
			t.Errorf("ColumnType(%q) = %q, want %q", c.access, got, c.want)
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	cases := map[string]string{
		"postgres":  `"order"`,
		"mysql":     "`order`",
		"sqlserver": "[order]",
		"oracle":    `"order"`,
	}
	for driver, want := range cases {
		if got := dialect.GetDialect(driver).QuoteIdent("order"); got != want {
			t.Errorf("%s: QuoteIdent = %q, want %q", driver, got, want)
		}
	}
}

func TestReservedWords(t *testing.T) {
	d := dialect.GetDialect("postgres")
	for _, w := range []string{"user", "order", "group"} {
		if !d.IsReserved(w) {
			t.Errorf("expected %q reserved", w)
		}
	}
	if d.IsReserved("risks") {
		t.Error("risks should not be reserved")
	}
}

func TestCountQuery(t *testing.T) {
	cases := map[string]string{
		"postgres":  `SELECT COUNT(*) FROM "public"."risks"`,
		"mysql":     "SELECT COUNT(*) FROM `risks`",
		"sqlserver": "SELECT COUNT(*) FROM [dbo].[risks]",
		"oracle":    `SELECT COUNT(*) FROM "risks"`,
	}
	for driver, want := range cases {
		if got := dialect.GetDialect(driver).CountQuery("public", "risks"); got != want {
			t.Errorf("%s: CountQuery = %q, want %q", driver, got, want)
		}
	}
}

func TestGetLimitRowQuery(t *testing.T) {
	q := "SELECT a FROM t"
	if got := dialect.GetDialect("sqlserver").GetLimitRowQuery(q, 0); got != "SELECT TOP 0 a FROM t" {
		t.Errorf("sqlserver: got %q", got)
	}
	if got := dialect.GetDialect("postgres").GetLimitRowQuery(q, 0); got != "SELECT a FROM t LIMIT 0" {
		t.Errorf("postgres: got %q", got)
	}
}

func TestLoadScripts(t *testing.T) {
	pg := dialect.GetDialect("postgres")
	table := pg.QualifiedName("public", "risk_log")

	got := pg.LoadQuery(table, []string{`"id"`, `"title"`}, "csv/Risk Log.csv")
	want := `\copy "public"."risk_log" ("id", "title") FROM 'csv/Risk Log.csv' WITH (FORMAT csv, HEADER true)`
	if got != want {
		t.Errorf("postgres LoadQuery = %q, want %q", got, want)
	}

	reset := pg.ResetIdentityQuery(table, "id")
	if reset != `SELECT setval(pg_get_serial_sequence('"public"."risk_log"', 'id'), COALESCE(MAX("id"), 1)) FROM "public"."risk_log";` {
		t.Errorf("postgres ResetIdentityQuery = %q", reset)
	}

	if got := dialect.GetDialect("mysql").ResetIdentityQuery("`t`", "id"); got != "" {
		t.Errorf("mysql should not reseed, got %q", got)
	}
	if got := dialect.GetDialect("sqlserver").TruncateQuery("[dbo].[t]"); got != "DELETE FROM [dbo].[t];" {
		t.Errorf("sqlserver TruncateQuery = %q", got)
	}
}
