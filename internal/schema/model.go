package schema

// Severity levels used by Issue.
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
)

// Primary key detection methods, in priority order.
const (
	PKSchemaDeclared = "SCHEMA_DECLARED"
	PKAutoNumberID   = "AUTONUMBER_ID"
	PKBusinessKey    = "BUSINESS_KEY"
	PKInferredUnique = "INFERRED_UNIQUE"
)

// Foreign key confidence levels and inference patterns.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"

	PatternExactName = "EXACT_NAME_MATCH"
	PatternSuffix    = "SUFFIX_CONVENTION"
)

// Dead column reasons.
const (
	DeadAlwaysNull  = "ALWAYS_NULL"
	DeadSingleValue = "SINGLE_VALUE"
	DeadMostlyNull  = "MOSTLY_NULL"
)

// Report accumulates everything one analysis run learns about the source
// database. It is serialized as-is to full_analysis.json.
type Report struct {
	DatabasePath  string `json:"database_path"`
	AnalysisDate  string `json:"analysis_date"`
	TargetDialect string `json:"target_dialect"`

	Tables        TableList        `json:"tables"`
	Queries       QueryList        `json:"queries"`
	Relationships RelationshipList `json:"relationships"`

	TableDetails    []*TableDetail `json:"table_details"`
	DataQuality     []TableQuality `json:"data_quality"`
	PotentialIssues IssueSummary   `json:"potential_issues"`

	InferredForeignKeys []InferredForeignKey `json:"inferred_foreign_keys"`
	Orphans             []OrphanReport       `json:"orphan_records"`
	DeadColumns         []DeadColumn         `json:"dead_columns"`
	Indexes             []IndexInfo          `json:"index_recommendations"`
	PowerBIImpact       []PowerBIImpact      `json:"powerbi_impact"`
	DAXImpact           []DAXImpact          `json:"dax_impact"`

	Failures []Failure `json:"failures,omitempty"`

	// NativeDDL is mdb-schema's own DDL for the target backend.
	NativeDDL string `json:"-"`
}

type TableList struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

type SavedQuery struct {
	Name string `json:"name"`
	Type string `json:"type"`
	SQL  string `json:"sql"`
}

type QueryList struct {
	Count   int          `json:"count"`
	Details []SavedQuery `json:"details"`
}

type Relationship struct {
	Definition string `json:"definition"`
	Parsed     bool   `json:"parsed"`
}

type RelationshipList struct {
	Count   int            `json:"count"`
	Details []Relationship `json:"details"`
}

type TableDetail struct {
	Name       string       `json:"name"`
	PgName     string       `json:"pg_name"`
	Columns    []ColumnInfo `json:"columns"`
	RowCount   int          `json:"row_count"`
	PrimaryKey string       `json:"primary_key,omitempty"`
	PKMethod   string       `json:"primary_key_method,omitempty"`

	// DeclaredPK is the key found in the schema dump, if any.
	DeclaredPK string `json:"-"`
}

// Column returns the column with the given original name.
func (t *TableDetail) Column(name string) (ColumnInfo, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnInfo{}, false
}

type ColumnInfo struct {
	Name          string `json:"name"`
	PgName        string `json:"pg_name"`
	Type          string `json:"type"`
	Size          *int   `json:"size"`
	DecimalDigits *int   `json:"decimal_digits"`
	Nullable      bool   `json:"nullable"`
	Ordinal       int    `json:"ordinal"`
}

type ColumnQuality struct {
	Column        string   `json:"column"`
	NullCount     int      `json:"null_count"`
	NullPercent   float64  `json:"null_percent"`
	DistinctCount int      `json:"distinct_count"`
	SampleValues  []string `json:"sample_values"`
}

type TableQuality struct {
	Table    string          `json:"table"`
	RowCount int             `json:"row_count"`
	Columns  []ColumnQuality `json:"columns"`
}

// Column returns the quality record for the given column.
func (q *TableQuality) Column(name string) (ColumnQuality, bool) {
	for _, c := range q.Columns {
		if c.Column == name {
			return c, true
		}
	}
	return ColumnQuality{}, false
}

type Issue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Table    string `json:"table,omitempty"`
	Column   string `json:"column,omitempty"`
	Issue    string `json:"issue"`
	Action   string `json:"action"`
}

type IssueSummary struct {
	Count      int            `json:"count"`
	BySeverity map[string]int `json:"by_severity"`
	Details    []Issue        `json:"details"`
}

type InferredForeignKey struct {
	SourceTable   string  `json:"source_table"`
	SourceColumn  string  `json:"source_column"`
	TargetTable   string  `json:"target_table"`
	TargetColumn  string  `json:"target_column"`
	Confidence    string  `json:"confidence"`
	Pattern       string  `json:"pattern"`
	MatchedValues int     `json:"matched_values"`
	TotalValues   int     `json:"total_values"`
	MatchPercent  float64 `json:"match_percent"`
}

type OrphanReport struct {
	Table         string   `json:"table"`
	Column        string   `json:"column"`
	RefTable      string   `json:"ref_table"`
	RefColumn     string   `json:"ref_column"`
	OrphanCount   int      `json:"orphan_count"`
	TotalRows     int      `json:"total_rows"`
	OrphanPercent float64  `json:"orphan_percent"`
	SampleOrphans []string `json:"sample_orphans"`
}

type DeadColumn struct {
	Table         string  `json:"table"`
	Column        string  `json:"column"`
	Reason        string  `json:"reason"`
	NullPercent   float64 `json:"null_percent"`
	DistinctCount int     `json:"distinct_count"`
	RowCount      int     `json:"row_count"`
	Action        string  `json:"action"`
}

type IndexInfo struct {
	Table     string `json:"table"`
	Column    string `json:"column"`
	IndexName string `json:"index_name"`
	Kind      string `json:"kind"`
	Reason    string `json:"reason"`
	Priority  string `json:"priority"`
	SQL       string `json:"sql"`
}

type PowerBIImpact struct {
	AccessTable    string   `json:"access_table"`
	PgTable        string   `json:"pg_table"`
	TableRenamed   bool     `json:"table_renamed"`
	RenamedColumns int      `json:"renamed_columns"`
	ReservedWords  []string `json:"reserved_words"`
	RiskLevel      string   `json:"risk_level"`
	MQueryChange   string   `json:"m_query_change"`
}

type DAXImpact struct {
	Table  string `json:"table"`
	Column string `json:"column"`
	OldRef string `json:"old_reference"`
	NewRef string `json:"new_reference"`
	Impact string `json:"impact"`
	Note   string `json:"note"`
}

// Failure is the serialized form of a step error.
type Failure struct {
	Step    string `json:"step"`
	Item    string `json:"item,omitempty"`
	Message string `json:"message"`
}

// Detail returns the table detail with the given original name.
func (r *Report) Detail(name string) *TableDetail {
	for _, t := range r.TableDetails {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Quality returns the quality record for the given table.
func (r *Report) Quality(table string) *TableQuality {
	for i := range r.DataQuality {
		if r.DataQuality[i].Table == table {
			return &r.DataQuality[i]
		}
	}
	return nil
}

// TotalRows sums row counts across all tables.
func (r *Report) TotalRows() int {
	total := 0
	for _, t := range r.TableDetails {
		total += t.RowCount
	}
	return total
}

// IssuesFor returns issues attached to the given table.
func (r *Report) IssuesFor(table string) []Issue {
	var out []Issue
	for _, i := range r.PotentialIssues.Details {
		if i.Table == table {
			out = append(out, i)
		}
	}
	return out
}
