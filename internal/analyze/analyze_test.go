package analyze_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"mdb-audit/internal/analyze"
	"mdb-audit/internal/dialect"
	"mdb-audit/internal/mdb"
	"mdb-audit/internal/mdb/mdbtest"
	"mdb-audit/internal/profile"
	"mdb-audit/internal/schema"
)

func set(values ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func TestClassifyConfidence(t *testing.T) {
	ref := set("1", "2", "3")
	cases := []struct {
		name   string
		values map[string]struct{}
		want   string
	}{
		{"subset", set("1", "2"), schema.ConfidenceHigh},
		{"partial", set("1", "2", "9"), schema.ConfidenceMedium},
		{"disjoint", set("9", "9"), schema.ConfidenceLow},
		{"empty", set(), schema.ConfidenceLow},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, _ := analyze.ClassifyConfidence(ref, c.values)
			if got != c.want {
				t.Errorf("got %s, want %s", got, c.want)
			}
		})
	}
}

func TestExactNameMatch_Percent(t *testing.T) {
	fk := analyze.ExactNameMatch("Actions", "Risks", "RiskID", set("1", "2", "3"), set("1", "2", "9"))

	if fk.MatchedValues != 2 || fk.TotalValues != 3 || fk.MatchPercent != 66.67 {
		t.Errorf("unexpected match stats %+v", fk)
	}
	if fk.Pattern != schema.PatternExactName {
		t.Errorf("pattern = %s", fk.Pattern)
	}
}

func TestClassifyDeadColumn(t *testing.T) {
	th := analyze.DefaultThresholds
	cases := []struct {
		name string
		q    schema.ColumnQuality
		rows int
		want string
	}{
		{"always null", schema.ColumnQuality{NullCount: 10, NullPercent: 100}, 10, schema.DeadAlwaysNull},
		{"single value", schema.ColumnQuality{DistinctCount: 1}, 11, schema.DeadSingleValue},
		{"mostly null", schema.ColumnQuality{NullCount: 24, NullPercent: 96, DistinctCount: 1}, 25, schema.DeadMostlyNull},
		{"single value small table", schema.ColumnQuality{DistinctCount: 1}, 10, ""},
		{"exactly threshold", schema.ColumnQuality{NullCount: 19, NullPercent: 95, DistinctCount: 1}, 20, schema.DeadSingleValue},
		{"empty table", schema.ColumnQuality{}, 0, ""},
		{"healthy", schema.ColumnQuality{DistinctCount: 7, NullCount: 1, NullPercent: 10}, 10, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := analyze.ClassifyDeadColumn(c.q, c.rows, th)
			if got != c.want || ok != (c.want != "") {
				t.Errorf("got %q/%v, want %q", got, ok, c.want)
			}
		})
	}
}

func TestClassifyDeadColumn_FromProfile(t *testing.T) {
	rows := make([][]string, 20)
	for i := range rows {
		rows[i] = []string{"", "same"}
	}
	rows[0][0] = "a"
	rows[1][0] = "b"
	f := profile.NewFrame([]string{"Sparse", "Constant"}, rows)

	tq := profile.ProfileTable("T", []schema.ColumnInfo{{Name: "Sparse"}, {Name: "Constant"}}, f, profile.DefaultOptions)
	dead := analyze.FindDeadColumns([]schema.TableQuality{tq}, analyze.DefaultThresholds)

	if len(dead) != 1 || dead[0].Column != "Constant" || dead[0].Reason != schema.DeadSingleValue {
		t.Fatalf("unexpected dead columns %+v", dead)
	}

	// 2 of 20 filled is 90% null; lowering the threshold flags it.
	dead = analyze.FindDeadColumns([]schema.TableQuality{tq}, analyze.Thresholds{MostlyNullPercent: 85, SingleValueMinRows: 10})
	if len(dead) != 2 || dead[0].Column != "Sparse" || dead[0].Reason != schema.DeadMostlyNull {
		t.Fatalf("unexpected dead columns with lower threshold %+v", dead)
	}
}

func TestDetectPrimaryKey_Priority(t *testing.T) {
	cols := []schema.ColumnInfo{
		{Name: "Code", Type: "TEXT", Nullable: false},
		{Name: "ID", Type: "COUNTER", Nullable: false},
		{Name: "Serial", Type: "TEXT", Nullable: true},
	}
	q := &schema.TableQuality{
		RowCount: 3,
		Columns: []schema.ColumnQuality{
			{Column: "Code", DistinctCount: 3},
			{Column: "ID", DistinctCount: 3},
			{Column: "Serial", DistinctCount: 3},
		},
	}
	keys := []string{"RiskID", "Code"}

	cases := []struct {
		name       string
		table      *schema.TableDetail
		wantCol    string
		wantMethod string
	}{
		{"declared wins", &schema.TableDetail{Columns: cols, DeclaredPK: "Serial"}, "Serial", schema.PKSchemaDeclared},
		{"autonumber id", &schema.TableDetail{Columns: cols}, "ID", schema.PKAutoNumberID},
		{"business key", &schema.TableDetail{Columns: cols[:1]}, "Code", schema.PKBusinessKey},
		{"inferred unique", &schema.TableDetail{Columns: cols[2:]}, "Serial", schema.PKInferredUnique},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			col, method := analyze.DetectPrimaryKey(c.table, q, keys)
			if col != c.wantCol || method != c.wantMethod {
				t.Errorf("got %s/%s, want %s/%s", col, method, c.wantCol, c.wantMethod)
			}
		})
	}
}

func TestDetectPrimaryKey_TextIDNotAutonumber(t *testing.T) {
	table := &schema.TableDetail{Columns: []schema.ColumnInfo{{Name: "ID", Type: "TEXT", Nullable: true}}}
	q := &schema.TableQuality{RowCount: 2, Columns: []schema.ColumnQuality{{Column: "ID", NullCount: 1, DistinctCount: 1}}}

	col, method := analyze.DetectPrimaryKey(table, q, nil)

	if col != "" || method != "" {
		t.Errorf("expected no key, got %s/%s", col, method)
	}
}

func TestSuffixMatches(t *testing.T) {
	tables := []*schema.TableDetail{
		{Name: "Owners", PgName: "owners", PrimaryKey: "OwnerKey"},
		{Name: "Actions", PgName: "actions", Columns: []schema.ColumnInfo{
			{Name: "Owner_ID", PgName: "owner_id"},
			{Name: "Dept Code", PgName: "dept_code"},
			{Name: "RiskID", PgName: "riskid"},
		}},
	}

	fks := analyze.SuffixMatches(tables, nil)

	if len(fks) != 1 {
		t.Fatalf("got %+v", fks)
	}
	fk := fks[0]
	if fk.TargetTable != "Owners" || fk.TargetColumn != "OwnerKey" || fk.Confidence != schema.ConfidenceLow || fk.Pattern != schema.PatternSuffix {
		t.Errorf("unexpected fk %+v", fk)
	}
}

func TestFindOrphans(t *testing.T) {
	f := profile.NewFrame([]string{"RiskID"}, [][]string{{"1"}, {"2.0"}, {"9"}, {""}, {"9"}, {"12"}})

	rep := analyze.FindOrphans("Actions", "Risks", "RiskID", set("1", "2", "3"), f)

	if rep.OrphanCount != 3 || rep.TotalRows != 6 || rep.OrphanPercent != 50 {
		t.Errorf("unexpected orphan stats %+v", rep)
	}
	if len(rep.SampleOrphans) != 2 || rep.SampleOrphans[0] != "9" || rep.SampleOrphans[1] != "12" {
		t.Errorf("samples = %v", rep.SampleOrphans)
	}
}

func TestFindIssues(t *testing.T) {
	r := &schema.Report{
		Queries: schema.QueryList{Count: 2},
		TableDetails: []*schema.TableDetail{{
			Name:       "Order",
			PgName:     "order",
			PrimaryKey: "",
			Columns: []schema.ColumnInfo{
				{Name: "Risk Title", PgName: "risk_title", Type: "TEXT"},
				{Name: "photo", PgName: "photo", Type: "OLE"},
			},
		}},
	}

	summary := analyze.SummarizeIssues(analyze.FindIssues(r, dialect.GetDialect("postgres")))

	counts := map[string]int{}
	for _, i := range summary.Details {
		counts[i.Type]++
	}
	want := map[string]int{
		analyze.IssueNaming:       2,
		analyze.IssueReservedWord: 1,
		analyze.IssueDataType:     1,
		analyze.IssueSchema:       1,
		analyze.IssueQueries:      1,
	}
	for typ, n := range want {
		if counts[typ] != n {
			t.Errorf("%s issues = %d, want %d", typ, counts[typ], n)
		}
	}
	if summary.BySeverity[schema.SeverityHigh] != 3 || summary.BySeverity[schema.SeverityLow] != 0 {
		t.Errorf("by severity = %v", summary.BySeverity)
	}
}

func TestFindIssues_NameCollisions(t *testing.T) {
	r := &schema.Report{
		TableDetails: []*schema.TableDetail{
			{Name: "Risk Log", PgName: "risk_log", PrimaryKey: "ID", Columns: []schema.ColumnInfo{
				{Name: "ID", PgName: "id", Type: "COUNTER"},
				{Name: "Owner Name", PgName: "owner_name", Type: "TEXT"},
				{Name: "Owner-Name", PgName: "owner_name", Type: "TEXT"},
			}},
			{Name: "Risk-Log", PgName: "risk_log", PrimaryKey: "ID", Columns: []schema.ColumnInfo{
				{Name: "ID", PgName: "id", Type: "COUNTER"},
			}},
		},
	}

	issues := analyze.FindIssues(r, dialect.GetDialect("postgres"))

	var tableHit, columnHit bool
	for _, i := range issues {
		if i.Severity != schema.SeverityHigh || i.Type != analyze.IssueNaming {
			continue
		}
		switch {
		case i.Table == "Risk-Log" && i.Column == "":
			tableHit = strings.Contains(i.Issue, "'Risk Log'") && strings.Contains(i.Issue, "'risk_log'")
		case i.Table == "Risk Log" && i.Column == "Owner-Name":
			columnHit = strings.Contains(i.Issue, "'Owner Name'")
		}
	}
	if !tableHit {
		t.Errorf("expected a table collision issue, got %+v", issues)
	}
	if !columnHit {
		t.Errorf("expected a column collision issue, got %+v", issues)
	}
	high := analyze.SummarizeIssues(issues).BySeverity[schema.SeverityHigh]
	if high != 2 {
		t.Errorf("HIGH issues = %d, want 2", high)
	}
}

func TestDAXImpacts(t *testing.T) {
	tables := []*schema.TableDetail{{
		Name:   "Risk Log",
		PgName: "risk_log",
		Columns: []schema.ColumnInfo{
			{Name: "Owner Name", PgName: "owner_name"},
			{Name: "score", PgName: "score"},
		},
	}}

	got := analyze.DAXImpacts(tables, dialect.GetDialect("postgres"))

	if len(got) != 1 {
		t.Fatalf("got %+v", got)
	}
	if got[0].OldRef != "'Risk Log'[Owner Name]" || got[0].NewRef != "'risk_log'[owner_name]" {
		t.Errorf("refs = %s -> %s", got[0].OldRef, got[0].NewRef)
	}
}

func TestRecommendIndexes(t *testing.T) {
	r := &schema.Report{
		TableDetails: []*schema.TableDetail{
			{Name: "Risks", PgName: "risks", PrimaryKey: "RiskID", PKMethod: schema.PKBusinessKey, RowCount: 2,
				Columns: []schema.ColumnInfo{{Name: "RiskID", PgName: "riskid", Type: "LONG INTEGER"}, {Name: "Raised", PgName: "raised", Type: "DATETIME"}}},
			{Name: "Actions", PgName: "actions", RowCount: 2,
				Columns: []schema.ColumnInfo{{Name: "RiskID", PgName: "riskid", Type: "LONG INTEGER"}}},
		},
		DataQuality: []schema.TableQuality{
			{Table: "Risks", RowCount: 2, Columns: []schema.ColumnQuality{{Column: "RiskID", DistinctCount: 2}}},
		},
		InferredForeignKeys: []schema.InferredForeignKey{
			{SourceTable: "Actions", SourceColumn: "RiskID", TargetTable: "Risks", TargetColumn: "RiskID", Confidence: schema.ConfidenceHigh},
		},
	}

	idx := analyze.RecommendIndexes(r, []string{"RiskID"}, dialect.GetDialect("postgres"), "public")

	if len(idx) != 3 {
		t.Fatalf("got %d indexes: %+v", len(idx), idx)
	}
	if idx[0].Kind != analyze.IndexPrimary || !strings.Contains(idx[0].SQL, "PRIMARY KEY (\"riskid\")") {
		t.Errorf("primary = %+v", idx[0])
	}
	if idx[1].Table != "Actions" || idx[1].SQL != `CREATE INDEX "idx_actions_riskid" ON "public"."actions" ("riskid");` {
		t.Errorf("fk index = %+v", idx[1])
	}
	if idx[2].Column != "Raised" {
		t.Errorf("date index = %+v", idx[2])
	}
}

func newDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "risk.mdb")
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestBuilder_EndToEndSystemTablesExcluded(t *testing.T) {
	ctx := context.Background()
	runner := mdbtest.New().
		On("mdb-tables -1", "Orders\nMSysTest\n").
		On("mdb-queries -L", "").
		On("mdb-schema --relationships", "").
		On("mdb-schema -T Orders", "CREATE TABLE [Orders]\n (\n\t[ID]\t\t\tLong Integer,\n\t[Order Date]\t\t\tDateTime\n);\n").
		On("mdb-export Orders", "ID,Order Date\n1,2024-01-02\n2,2024-02-03\n").
		On("mdb-schema postgres", "CREATE TABLE \"orders\" ();\n")

	src, err := mdb.New(ctx, runner, newDB(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var profiled []string
	total := -1
	b := analyze.NewBuilder(src, analyze.DefaultConfig(), zaptest.NewLogger(t))
	b.OnTables = func(n int) { total = n }
	b.OnTable = func(table string) { profiled = append(profiled, table) }
	b.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	r, err := b.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if r.Tables.Count != 1 || len(r.TableDetails) != 1 {
		t.Fatalf("expected one table, got %+v", r.Tables)
	}
	orders := r.TableDetails[0]
	if orders.Name != "Orders" || orders.PgName != "orders" {
		t.Errorf("unexpected detail %+v", orders)
	}
	if orders.RowCount != 2 || orders.PrimaryKey != "ID" || orders.PKMethod != schema.PKAutoNumberID {
		t.Errorf("unexpected profile %+v", orders)
	}
	if len(profiled) != 1 || profiled[0] != "Orders" {
		t.Errorf("OnTable calls = %v", profiled)
	}
	if total != 1 {
		t.Errorf("OnTables total = %d", total)
	}
	if r.AnalysisDate != "2026-01-02T03:04:05Z" {
		t.Errorf("AnalysisDate = %s", r.AnalysisDate)
	}
	if r.NativeDDL == "" {
		t.Error("native DDL not captured")
	}

	// No Risks table here: key inference degrades but the run completes.
	var refFailure bool
	for _, e := range b.Errors() {
		if e.Step == analyze.StepForeignKeys && errors.Is(e, analyze.ErrNoReferenceData) {
			refFailure = true
		}
	}
	if !refFailure {
		t.Errorf("expected a foreign key step failure, got %v", b.Errors())
	}
	if len(r.Failures) != len(b.Errors()) {
		t.Errorf("failures not serialized: %d vs %d", len(r.Failures), len(b.Errors()))
	}
}

func TestBuilder_ForeignKeysAndOrphans(t *testing.T) {
	ctx := context.Background()
	runner := mdbtest.New().
		On("mdb-tables -1", "Risks\nActions\n").
		On("mdb-queries -L", "").
		On("mdb-schema --relationships", "").
		On("mdb-schema -T Risks", "CREATE TABLE [Risks]\n (\n\t[RiskID]\t\t\tLong Integer NOT NULL,\n\t[Title]\t\t\tText (50)\n);\n").
		On("mdb-schema -T Actions", "CREATE TABLE [Actions]\n (\n\t[ActionID]\t\t\tLong Integer,\n\t[RiskID]\t\t\tLong Integer\n);\n").
		On("mdb-export Risks", "RiskID,Title\n1,A\n2,B\n3,C\n").
		On("mdb-export Actions", "ActionID,RiskID\n10,1\n11,2\n12,9\n13,\n").
		On("mdb-schema postgres", "--")

	src, err := mdb.New(ctx, runner, newDB(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r, err := analyze.NewBuilder(src, analyze.DefaultConfig(), zaptest.NewLogger(t)).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if risks := r.Detail("Risks"); risks.PrimaryKey != "RiskID" || risks.PKMethod != schema.PKBusinessKey {
		t.Errorf("Risks key = %s/%s", risks.PrimaryKey, risks.PKMethod)
	}
	if len(r.InferredForeignKeys) != 1 || r.InferredForeignKeys[0].Confidence != schema.ConfidenceMedium {
		t.Fatalf("inferred keys = %+v", r.InferredForeignKeys)
	}
	if len(r.Orphans) != 1 || r.Orphans[0].OrphanCount != 1 || r.Orphans[0].SampleOrphans[0] != "9" {
		t.Fatalf("orphans = %+v", r.Orphans)
	}
	if len(r.Failures) != 0 {
		t.Errorf("unexpected failures %+v", r.Failures)
	}
}

func TestBuilder_ConfiguredIntegrityTables(t *testing.T) {
	ctx := context.Background()
	runner := mdbtest.New().
		On("mdb-tables -1", "Risks\nActions\nLookups\n").
		On("mdb-queries -L", "").
		On("mdb-schema --relationships", "").
		On("mdb-schema -T Risks", "CREATE TABLE [Risks]\n (\n\t[RiskID]\t\t\tLong Integer NOT NULL,\n\t[Title]\t\t\tText (50)\n);\n").
		On("mdb-schema -T Actions", "CREATE TABLE [Actions]\n (\n\t[ActionID]\t\t\tLong Integer,\n\t[RiskID]\t\t\tLong Integer\n);\n").
		On("mdb-schema -T Lookups", "CREATE TABLE [Lookups]\n (\n\t[Code]\t\t\tText (10),\n\t[Label]\t\t\tText (50)\n);\n").
		On("mdb-export Risks", "RiskID,Title\n1,A\n2,B\n").
		On("mdb-export Actions", "ActionID,RiskID\n10,1\n11,2\n12,7\n13,8\n").
		On("mdb-export Lookups", "Code,Label\nA,Alpha\nB,Beta\n").
		On("mdb-schema postgres", "--")

	src, err := mdb.New(ctx, runner, newDB(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg := analyze.DefaultConfig()
	cfg.IntegrityTables = []string{"Actions", "Ghost", "Lookups"}

	r, err := analyze.NewBuilder(src, cfg, zaptest.NewLogger(t)).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(r.Orphans) != 1 {
		t.Fatalf("orphans = %+v", r.Orphans)
	}
	if o := r.Orphans[0]; o.Table != "Actions" || o.OrphanCount != 2 || o.TotalRows != 4 {
		t.Errorf("orphan report = %+v", o)
	}

	failed := map[string]bool{}
	for _, f := range r.Failures {
		if f.Step == analyze.StepIntegrity {
			failed[f.Item] = true
		}
	}
	if len(failed) != 2 || !failed["Ghost"] || !failed["Lookups"] {
		t.Errorf("integrity failures = %+v", r.Failures)
	}
}

func TestBuilder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src, err := mdb.New(context.Background(), mdbtest.New(), newDB(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = analyze.NewBuilder(src, analyze.DefaultConfig(), zaptest.NewLogger(t)).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDefaultConfigThresholds(t *testing.T) {
	cfg := analyze.DefaultConfig()
	if cfg.Thresholds.MostlyNullPercent != 95 || cfg.Thresholds.SingleValueMinRows != 10 {
		t.Errorf("unexpected thresholds %+v", cfg.Thresholds)
	}
	if cfg.Profile.SampleValues != 5 || cfg.Profile.SampleLength != 50 {
		t.Errorf("unexpected profile options %+v", cfg.Profile)
	}
}
