package analyze

import (
	"mdb-audit/internal/dialect"
	"mdb-audit/internal/profile"
)

// Thresholds drive dead-column classification.
type Thresholds struct {
	// MostlyNullPercent flags a column whose null percent is strictly above it.
	MostlyNullPercent float64
	// SingleValueMinRows flags a constant column only when the table has
	// more rows than this.
	SingleValueMinRows int
}

var DefaultThresholds = Thresholds{MostlyNullPercent: 95, SingleValueMinRows: 10}

// Config holds the policy choices of one analysis run.
type Config struct {
	// ReferenceTable is the master table other tables are assumed to point
	// at; ReferenceKey is its business key column.
	ReferenceTable string
	ReferenceKey   string

	// BusinessKeys are column names accepted as primary keys when declared
	// NOT NULL.
	BusinessKeys []string

	// IntegrityTables limits the orphan check. Empty means every table
	// carrying ReferenceKey.
	IntegrityTables []string

	Thresholds Thresholds
	Profile    profile.Options
	Dialect    dialect.Dialect
	Schema     string
}

// DefaultConfig mirrors the settings the tool was first written for.
func DefaultConfig() Config {
	return Config{
		ReferenceTable: "Risks",
		ReferenceKey:   "RiskID",
		BusinessKeys:   []string{"RiskID", "Code", "Reference"},
		Thresholds:     DefaultThresholds,
		Profile:        profile.DefaultOptions,
		Dialect:        dialect.GetDialect("postgres"),
		Schema:         "public",
	}
}

func (c Config) withDefaults() Config {
	if c.Dialect == nil {
		c.Dialect = dialect.GetDialect("postgres")
	}
	if c.Profile.SampleValues <= 0 {
		c.Profile.SampleValues = profile.DefaultOptions.SampleValues
	}
	if c.Profile.SampleLength <= 0 {
		c.Profile.SampleLength = profile.DefaultOptions.SampleLength
	}
	if c.Thresholds.MostlyNullPercent <= 0 {
		c.Thresholds.MostlyNullPercent = DefaultThresholds.MostlyNullPercent
	}
	if c.Thresholds.SingleValueMinRows <= 0 {
		c.Thresholds.SingleValueMinRows = DefaultThresholds.SingleValueMinRows
	}
	return c
}
