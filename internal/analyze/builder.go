package analyze

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mdb-audit/internal/profile"
	"mdb-audit/internal/schema"
)

// Step names, as recorded in StepError and Report.Failures.
const (
	StepTables        = "tables"
	StepQueries       = "queries"
	StepRelationships = "relationships"
	StepTableDetails  = "table_details"
	StepPrimaryKeys   = "primary_keys"
	StepIssues        = "issues"
	StepForeignKeys   = "foreign_keys"
	StepIntegrity     = "referential_integrity"
	StepDeadColumns   = "dead_columns"
	StepIndexes       = "indexes"
	StepPowerBI       = "powerbi_impact"
	StepNativeSchema  = "native_schema"
)

// Source is what the pipeline reads from. *mdb.Client satisfies it.
type Source interface {
	Path() string
	Tables(ctx context.Context) []string
	Queries(ctx context.Context) []schema.SavedQuery
	Relationships(ctx context.Context) []schema.Relationship
	TableSchema(ctx context.Context, table string) ([]schema.ColumnInfo, string)
	Export(ctx context.Context, table string) (*profile.Frame, error)
	NativeSchema(ctx context.Context, backend string) string
}

// StepError records a failure that degraded one step of the run without
// aborting it.
type StepError struct {
	Step string
	Item string
	Err  error
}

func (e *StepError) Error() string {
	if e.Item == "" {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Step, e.Item, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

var (
	ErrNoColumns       = errors.New("no columns parsed from schema dump")
	ErrNoReferenceData = errors.New("reference table has no usable key values")
)

// Builder runs the analysis pipeline step by step. Each step reads what
// earlier steps stored in the report and appends its own section.
type Builder struct {
	src Source
	cfg Config
	log *zap.Logger

	// OnTables receives the number of user tables once they are listed;
	// OnTable is called after each table is profiled.
	OnTables func(total int)
	OnTable  func(table string)

	// Now stamps the report; tests pin it.
	Now func() time.Time

	report *schema.Report
	errs   []*StepError
}

func NewBuilder(src Source, cfg Config, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		src: src,
		cfg: cfg.withDefaults(),
		log: log,
		Now: time.Now,
	}
}

// Errors returns the step failures collected so far.
func (b *Builder) Errors() []*StepError {
	return b.errs
}

func (b *Builder) fail(step, item string, err error) {
	se := &StepError{Step: step, Item: item, Err: err}
	b.errs = append(b.errs, se)
	b.log.Warn("step failed", zap.String("step", step), zap.String("item", item), zap.Error(err))
}

// Run executes the whole pipeline. Only context cancellation stops it
// early; every other failure is recorded and the run continues.
func (b *Builder) Run(ctx context.Context) (*schema.Report, error) {
	b.report = &schema.Report{
		DatabasePath:  b.src.Path(),
		AnalysisDate:  b.Now().Format(time.RFC3339),
		TargetDialect: b.cfg.Dialect.Name(),
	}

	steps := []struct {
		name string
		fn   func(context.Context)
	}{
		{StepTables, b.discoverTables},
		{StepQueries, b.discoverQueries},
		{StepRelationships, b.discoverRelationships},
		{StepTableDetails, b.profileTables},
		{StepPrimaryKeys, b.detectPrimaryKeys},
		{StepIssues, b.findIssues},
		{StepForeignKeys, b.inferForeignKeys},
		{StepIntegrity, b.checkIntegrity},
		{StepDeadColumns, b.findDeadColumns},
		{StepIndexes, b.recommendIndexes},
		{StepPowerBI, b.assessImpact},
		{StepNativeSchema, b.captureNativeSchema},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return b.finish(), err
		}
		b.log.Info("running step", zap.String("step", s.name))
		s.fn(ctx)
	}
	return b.finish(), nil
}

func (b *Builder) finish() *schema.Report {
	b.report.Failures = make([]schema.Failure, 0, len(b.errs))
	for _, e := range b.errs {
		b.report.Failures = append(b.report.Failures, schema.Failure{
			Step:    e.Step,
			Item:    e.Item,
			Message: e.Err.Error(),
		})
	}
	return b.report
}

func (b *Builder) discoverTables(ctx context.Context) {
	names := b.src.Tables(ctx)
	b.report.Tables = schema.TableList{Count: len(names), Names: names}
	b.log.Info("tables found", zap.Int("count", len(names)))
	if b.OnTables != nil {
		b.OnTables(len(names))
	}
}

func (b *Builder) discoverQueries(ctx context.Context) {
	qs := b.src.Queries(ctx)
	b.report.Queries = schema.QueryList{Count: len(qs), Details: qs}
}

func (b *Builder) discoverRelationships(ctx context.Context) {
	rels := b.src.Relationships(ctx)
	b.report.Relationships = schema.RelationshipList{Count: len(rels), Details: rels}
}

// profileTables reads each table's schema and exports it once; the export
// feeds both the row count and the column statistics.
func (b *Builder) profileTables(ctx context.Context) {
	b.report.TableDetails = make([]*schema.TableDetail, 0, len(b.report.Tables.Names))
	b.report.DataQuality = make([]schema.TableQuality, 0, len(b.report.Tables.Names))

	for _, name := range b.report.Tables.Names {
		if ctx.Err() != nil {
			return
		}
		cols, declared := b.src.TableSchema(ctx, name)
		if len(cols) == 0 {
			b.fail(StepTableDetails, name, ErrNoColumns)
		}

		frame, err := b.src.Export(ctx, name)
		if err != nil {
			b.fail(StepTableDetails, name, err)
			frame = profile.NewFrame(nil, nil)
		}

		b.report.TableDetails = append(b.report.TableDetails, &schema.TableDetail{
			Name:       name,
			PgName:     schema.Normalize(name),
			Columns:    cols,
			RowCount:   frame.Len(),
			DeclaredPK: declared,
		})
		b.report.DataQuality = append(b.report.DataQuality, profile.ProfileTable(name, cols, frame, b.cfg.Profile))

		if b.OnTable != nil {
			b.OnTable(name)
		}
	}
}

func (b *Builder) detectPrimaryKeys(_ context.Context) {
	for _, t := range b.report.TableDetails {
		t.PrimaryKey, t.PKMethod = DetectPrimaryKey(t, b.report.Quality(t.Name), b.cfg.BusinessKeys)
	}
}

func (b *Builder) findIssues(_ context.Context) {
	b.report.PotentialIssues = SummarizeIssues(FindIssues(b.report, b.cfg.Dialect))
}

// referenceValues exports the reference table and returns its key set.
func (b *Builder) referenceValues(ctx context.Context, step string) (map[string]struct{}, bool) {
	ref := b.report.Detail(b.cfg.ReferenceTable)
	if ref == nil {
		b.fail(step, b.cfg.ReferenceTable, fmt.Errorf("%w: table %q not found", ErrNoReferenceData, b.cfg.ReferenceTable))
		return nil, false
	}
	frame, err := b.src.Export(ctx, ref.Name)
	if err != nil {
		b.fail(step, ref.Name, err)
		return nil, false
	}
	if !frame.Has(b.cfg.ReferenceKey) {
		b.fail(step, ref.Name, fmt.Errorf("%w: column %q missing from export", ErrNoReferenceData, b.cfg.ReferenceKey))
		return nil, false
	}
	return frame.ValueSet(b.cfg.ReferenceKey), true
}

func (b *Builder) inferForeignKeys(ctx context.Context) {
	fks := []schema.InferredForeignKey{}

	if refSet, ok := b.referenceValues(ctx, StepForeignKeys); ok {
		for _, t := range b.report.TableDetails {
			if t.Name == b.cfg.ReferenceTable {
				continue
			}
			if _, has := t.Column(b.cfg.ReferenceKey); !has {
				continue
			}
			frame, err := b.src.Export(ctx, t.Name)
			if err != nil {
				b.fail(StepForeignKeys, t.Name, err)
				continue
			}
			fks = append(fks, ExactNameMatch(t.Name, b.cfg.ReferenceTable, b.cfg.ReferenceKey, refSet, frame.ValueSet(b.cfg.ReferenceKey)))
		}
	}

	fks = append(fks, SuffixMatches(b.report.TableDetails, fks)...)
	b.report.InferredForeignKeys = fks
}

func (b *Builder) checkIntegrity(ctx context.Context) {
	b.report.Orphans = []schema.OrphanReport{}

	tables := b.integrityTables()
	if len(tables) == 0 {
		return
	}
	refSet, ok := b.referenceValues(ctx, StepIntegrity)
	if !ok {
		return
	}

	for _, name := range tables {
		t := b.report.Detail(name)
		if t == nil {
			b.fail(StepIntegrity, name, fmt.Errorf("table %q not found", name))
			continue
		}
		frame, err := b.src.Export(ctx, t.Name)
		if err != nil {
			b.fail(StepIntegrity, t.Name, err)
			continue
		}
		if !frame.Has(b.cfg.ReferenceKey) {
			b.fail(StepIntegrity, t.Name, fmt.Errorf("column %q missing from export", b.cfg.ReferenceKey))
			continue
		}
		b.report.Orphans = append(b.report.Orphans,
			FindOrphans(t.Name, b.cfg.ReferenceTable, b.cfg.ReferenceKey, refSet, frame))
	}
}

func (b *Builder) integrityTables() []string {
	if len(b.cfg.IntegrityTables) > 0 {
		return b.cfg.IntegrityTables
	}
	var out []string
	for _, t := range b.report.TableDetails {
		if t.Name == b.cfg.ReferenceTable {
			continue
		}
		if _, ok := t.Column(b.cfg.ReferenceKey); ok {
			out = append(out, t.Name)
		}
	}
	return out
}

func (b *Builder) findDeadColumns(_ context.Context) {
	b.report.DeadColumns = FindDeadColumns(b.report.DataQuality, b.cfg.Thresholds)
}

func (b *Builder) recommendIndexes(_ context.Context) {
	b.report.Indexes = RecommendIndexes(b.report, b.cfg.BusinessKeys, b.cfg.Dialect, b.cfg.Schema)
}

func (b *Builder) assessImpact(_ context.Context) {
	b.report.PowerBIImpact = PowerBIImpacts(b.report.TableDetails, b.cfg.Dialect, b.cfg.Schema)
	b.report.DAXImpact = DAXImpacts(b.report.TableDetails, b.cfg.Dialect)
}

func (b *Builder) captureNativeSchema(ctx context.Context) {
	backend := b.cfg.Dialect.NativeBackend()
	ddl := b.src.NativeSchema(ctx, backend)
	if ddl == "" {
		b.fail(StepNativeSchema, backend, errors.New("mdb-schema produced no output"))
	}
	b.report.NativeDDL = ddl
}
