package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"mdb-audit/internal/dialect"
	"mdb-audit/internal/schema"
)

// Output folders.
const (
	DirSummary   = "00_summary"
	DirSchema    = "01_schema"
	DirQuality   = "02_quality"
	DirKeys      = "03_keys"
	DirPowerBI   = "04_powerbi"
	DirMigration = "05_migration"

	ReportFile = "full_analysis.json"
)

// ReportPath is where the JSON dump of a run lives under outputDir.
func ReportPath(outputDir string) string {
	return filepath.Join(outputDir, DirSummary, ReportFile)
}

// Exporter writes the whole output tree for one report.
type Exporter struct {
	Dialect dialect.Dialect
	Schema  string
	Log     *zap.Logger
}

type artifact struct {
	dir, name string
	write     func(path string) error
}

func textFile(content func() string, mode os.FileMode) func(string) error {
	return func(path string) error {
		return os.WriteFile(path, []byte(content()), mode)
	}
}

func workbook(sheet func(*schema.Report) Sheet, r *schema.Report) func(string) error {
	return func(path string) error {
		return WriteWorkbook(path, sheet(r))
	}
}

// WriteJSON dumps the report with two-space indentation.
func WriteJSON(r *schema.Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) (*schema.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r schema.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &r, nil
}

// ExportAll writes every artifact under dir. A failing artifact does not stop
// the others; all failures are returned joined. The written paths are
// returned in order.
func (e *Exporter) ExportAll(r *schema.Report, dir string) ([]string, error) {
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}
	sw := SQLWriter{Dialect: e.Dialect, Schema: e.Schema}
	target := e.Dialect.Name()

	artifacts := []artifact{
		{DirSummary, ReportFile, func(p string) error { return WriteJSON(r, p) }},
		{DirSummary, "EXECUTIVE_SUMMARY.md", textFile(func() string { return ExecutiveSummary(r, target) }, 0o644)},
		{DirSummary, "MIGRATION_CHECKLIST.md", textFile(func() string { return MigrationChecklist(r, target) }, 0o644)},

		{DirSchema, "tables_summary.xlsx", workbook(TablesSummarySheet, r)},
		{DirSchema, "columns_detail.xlsx", workbook(ColumnsDetailSheet, r)},
		{DirSchema, "primary_keys.xlsx", workbook(PrimaryKeysSheet, r)},
		{DirSchema, "relationships.xlsx", workbook(RelationshipsSheet, r)},
		{DirSchema, "queries.xlsx", workbook(QueriesSheet, r)},
		{DirSchema, "create_tables.sql", textFile(func() string { return sw.CreateTables(r) }, 0o644)},
		{DirSchema, "native_schema.sql", textFile(func() string { return sw.NativeSchema(r) }, 0o644)},

		{DirQuality, "data_quality.xlsx", workbook(DataQualitySheet, r)},
		{DirQuality, "dead_columns.xlsx", workbook(DeadColumnsSheet, r)},
		{DirQuality, "orphan_records.xlsx", workbook(OrphansSheet, r)},
		{DirQuality, "issues.xlsx", workbook(IssuesSheet, r)},

		{DirKeys, "inferred_foreign_keys.xlsx", workbook(ForeignKeysSheet, r)},
		{DirKeys, "foreign_keys.sql", textFile(func() string { return sw.ForeignKeys(r) }, 0o644)},
		{DirKeys, "index_recommendations.xlsx", workbook(IndexesSheet, r)},
		{DirKeys, "indexes.sql", textFile(func() string { return sw.Indexes(r) }, 0o644)},

		{DirPowerBI, "powerbi_impact.xlsx", workbook(PowerBISheet, r)},
		{DirPowerBI, "dax_impact.xlsx", workbook(DAXSheet, r)},
		{DirPowerBI, "compatibility_views.sql", textFile(func() string { return sw.CompatibilityViews(r) }, 0o644)},

		{DirMigration, "migration_review_checklist.xlsx", func(p string) error { return WriteChecklist(r, p) }},
		{DirMigration, "validation_queries.sql", textFile(func() string { return sw.ValidationQueries(r) }, 0o644)},
		{DirMigration, "01_extract.sh", textFile(func() string { return ExtractScript(r) }, 0o755)},
		{DirMigration, "02_load.sql", textFile(func() string { return sw.LoadScript(r) }, 0o644)},
		{DirMigration, "03_transform.sql", textFile(func() string { return sw.TransformScript(r) }, 0o644)},
	}

	var written []string
	var errs []error
	made := map[string]bool{}
	for _, a := range artifacts {
		folder := filepath.Join(dir, a.dir)
		if !made[folder] {
			if err := os.MkdirAll(folder, 0o755); err != nil {
				return written, fmt.Errorf("creating %s: %w", folder, err)
			}
			made[folder] = true
		}
		path := filepath.Join(folder, a.name)
		if err := a.write(path); err != nil {
			log.Error("export failed", zap.String("file", path), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		log.Debug("saved", zap.String("file", path))
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}
