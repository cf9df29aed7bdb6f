package mdb_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap/zaptest"

	"mdb-audit/internal/mdb"
	"mdb-audit/internal/mdb/mdbtest"
)

const riskSchema = `-- ----------------------------------------------------------
-- MDB Tools - A library for reading MS Access database files
-- ----------------------------------------------------------

CREATE TABLE [Risks]
 (
	[RiskID]			Long Integer NOT NULL,
	[Risk Title]			Text (255),
	[Score]			Numeric (18, 2),
	[Raised On]			DateTime,
	[Key]			Text (10),
	[Notes]			Memo/Hyperlink (255),
	CONSTRAINT [PrimaryKey] PRIMARY KEY ([RiskID])
);

CREATE UNIQUE INDEX [Risks_pkey] ON [Risks] ([RiskID]);
`

func newDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "risk.mdb")
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestParseCreateTable(t *testing.T) {
	cols, pk := mdb.ParseCreateTable(riskSchema)

	if pk != "RiskID" {
		t.Errorf("declared PK = %q, want RiskID", pk)
	}
	if len(cols) != 6 {
		t.Fatalf("got %d columns, want 6: %+v", len(cols), cols)
	}

	id := cols[0]
	if id.Name != "RiskID" || id.Type != "LONG INTEGER" || id.Nullable || id.Ordinal != 1 {
		t.Errorf("unexpected RiskID column %+v", id)
	}

	title := cols[1]
	if title.PgName != "risk_title" || title.Size == nil || *title.Size != 255 || !title.Nullable {
		t.Errorf("unexpected title column %+v", title)
	}

	score := cols[2]
	if score.Type != "NUMERIC" || score.Size == nil || *score.Size != 18 || score.DecimalDigits == nil || *score.DecimalDigits != 2 {
		t.Errorf("unexpected score column %+v", score)
	}

	if cols[4].Name != "Key" {
		t.Errorf("bracketed keyword column lost, got %q", cols[4].Name)
	}
	if cols[5].Type != "MEMO/HYPERLINK" {
		t.Errorf("Notes type = %q", cols[5].Type)
	}
}

func TestParseCreateTable_UniqueIndexFallback(t *testing.T) {
	out := "CREATE TABLE [Owners]\n (\n\t[OwnerID]\t\t\tLong Integer,\n\t[Name]\t\t\tText (50)\n);\n" +
		"CREATE UNIQUE INDEX [Owners_pkey] ON [Owners] ([OwnerID]);\n"

	cols, pk := mdb.ParseCreateTable(out)

	if len(cols) != 2 {
		t.Fatalf("got %d columns", len(cols))
	}
	if pk != "OwnerID" {
		t.Errorf("declared PK = %q, want OwnerID", pk)
	}
}

func TestParseCreateTable_Empty(t *testing.T) {
	cols, pk := mdb.ParseCreateTable("")
	if len(cols) != 0 || pk != "" {
		t.Errorf("expected nothing, got %v %q", cols, pk)
	}
}

func TestParseTableList(t *testing.T) {
	got := mdb.ParseTableList("Orders\nMSysObjects\n\n  Risks  \nMSysTest\n", "MSys")
	want := []string{"Orders", "Risks"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestParseRelationships(t *testing.T) {
	out := "-- relationships\nALTER TABLE [Actions] ADD CONSTRAINT [RisksActions] FOREIGN KEY ([RiskID]) REFERENCES [Risks]([RiskID]);\nCOMMENT ON something;\n"

	rels := mdb.ParseRelationships(out)

	if len(rels) != 1 {
		t.Fatalf("got %d relationships", len(rels))
	}
}

func TestNew_ToolMissing(t *testing.T) {
	runner := mdbtest.New().Fail(mdbtest.Key(mdb.ToolTables, "--version"),
		&mdb.CommandError{Name: mdb.ToolTables, Err: exec.ErrNotFound})

	_, err := mdb.New(context.Background(), runner, newDB(t), zaptest.NewLogger(t))

	if !errors.Is(err, mdb.ErrToolMissing) {
		t.Fatalf("expected ErrToolMissing, got %v", err)
	}
}

func TestNew_ExecRunnerBinaryMissing(t *testing.T) {
	runner := mdb.ExecRunner{BinDir: t.TempDir()}

	_, err := mdb.New(context.Background(), runner, newDB(t), zaptest.NewLogger(t))

	if !errors.Is(err, mdb.ErrToolMissing) {
		t.Fatalf("expected ErrToolMissing, got %v", err)
	}
}

func TestNew_VersionRejectedStillStarts(t *testing.T) {
	runner := mdbtest.New().Fail(mdbtest.Key(mdb.ToolTables, "--version"), fmt.Errorf("exit status 1"))

	if _, err := mdb.New(context.Background(), runner, newDB(t), zaptest.NewLogger(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_SourceMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.mdb")

	_, err := mdb.New(context.Background(), mdbtest.New(), missing, zaptest.NewLogger(t))

	if !errors.Is(err, mdb.ErrSourceMissing) {
		t.Fatalf("expected ErrSourceMissing, got %v", err)
	}
}

func TestClient_Commands(t *testing.T) {
	ctx := context.Background()
	runner := mdbtest.New().
		On("mdb-tables -1", "Orders\nMSysTest\n").
		On("mdb-schema -T Orders", "CREATE TABLE [Orders]\n (\n\t[ID]\t\t\tLong Integer\n);\n").
		On("mdb-export Orders", "ID\n1\n2\n").
		On("mdb-queries -L", "qryOpen\n").
		On("mdb-queries qryOpen", "SELECT * FROM Orders;\n")

	c, err := mdb.New(ctx, runner, newDB(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tables := c.Tables(ctx)
	if len(tables) != 1 || tables[0] != "Orders" {
		t.Errorf("Tables = %v", tables)
	}

	cols, _ := c.TableSchema(ctx, "Orders")
	if len(cols) != 1 || cols[0].PgName != "id" {
		t.Errorf("TableSchema = %+v", cols)
	}

	frame, err := c.Export(ctx, "Orders")
	if err != nil || frame.Len() != 2 {
		t.Errorf("Export = %v rows, err %v", frame, err)
	}

	queries := c.Queries(ctx)
	if len(queries) != 1 || queries[0].SQL != "SELECT * FROM Orders;" {
		t.Errorf("Queries = %+v", queries)
	}

	// Unscripted: relationships fail and degrade to an empty list.
	if rels := c.Relationships(ctx); len(rels) != 0 {
		t.Errorf("Relationships = %+v", rels)
	}
}

func TestClient_ExportFailure(t *testing.T) {
	ctx := context.Background()
	runner := mdbtest.New().Fail("mdb-export Broken", errors.New("exit status 1"))

	c, err := mdb.New(ctx, runner, newDB(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Export(ctx, "Broken"); err == nil {
		t.Fatal("expected export error")
	}
}

func TestClient_QuerySQLTruncatedByCharacter(t *testing.T) {
	ctx := context.Background()
	long := strings.Repeat("a", 499) + "é" + strings.Repeat("b", 10)
	runner := mdbtest.New().
		On("mdb-queries -L", "qryLong\n").
		On("mdb-queries qryLong", long)

	c, err := mdb.New(ctx, runner, newDB(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	queries := c.Queries(ctx)
	if len(queries) != 1 {
		t.Fatalf("Queries = %+v", queries)
	}
	sql := queries[0].SQL
	if !utf8.ValidString(sql) {
		t.Fatal("truncated SQL is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(sql); n != 500 {
		t.Errorf("kept %d characters, want 500", n)
	}
	if !strings.HasSuffix(sql, "é") {
		t.Errorf("expected the 500th character to survive, got suffix %q", sql[len(sql)-4:])
	}
}
