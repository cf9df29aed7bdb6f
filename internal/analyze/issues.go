package analyze

import (
	"fmt"
	"strings"

	"mdb-audit/internal/dialect"
	"mdb-audit/internal/schema"
)

// Issue categories.
const (
	IssueNaming       = "NAMING"
	IssueReservedWord = "RESERVED_WORD"
	IssueDataType     = "DATA_TYPE"
	IssueSchema       = "SCHEMA"
	IssueQueries      = "QUERIES"
)

// FindIssues lists the migration risks visible from names, types and keys.
// Primary keys must already be detected. Two names that normalize to the
// same target identifier are reported as a HIGH naming issue.
func FindIssues(r *schema.Report, d dialect.Dialect) []schema.Issue {
	issues := []schema.Issue{}
	target := d.Name()
	tableOwners := map[string]string{}

	for _, t := range r.TableDetails {
		if first, ok := tableOwners[strings.ToLower(t.PgName)]; ok {
			issues = append(issues, schema.Issue{
				Type:     IssueNaming,
				Severity: schema.SeverityHigh,
				Table:    t.Name,
				Issue:    fmt.Sprintf("Tables '%s' and '%s' both become '%s'", first, t.Name, t.PgName),
				Action:   "Rename one of the tables before migrating",
			})
		} else {
			tableOwners[strings.ToLower(t.PgName)] = t.Name
		}
		if t.Name != t.PgName {
			issues = append(issues, schema.Issue{
				Type:     IssueNaming,
				Severity: schema.SeverityMedium,
				Table:    t.Name,
				Issue:    fmt.Sprintf("Table name will change: '%s' -> '%s'", t.Name, t.PgName),
				Action:   "Update Power BI queries to use new name",
			})
		}
		if d.IsReserved(strings.ToLower(t.PgName)) {
			issues = append(issues, schema.Issue{
				Type:     IssueReservedWord,
				Severity: schema.SeverityHigh,
				Table:    t.Name,
				Issue:    fmt.Sprintf("'%s' is a %s reserved word", t.PgName, target),
				Action:   "Rename table or use quoted identifiers",
			})
		}

		columnOwners := map[string]string{}
		for _, c := range t.Columns {
			if first, ok := columnOwners[strings.ToLower(c.PgName)]; ok {
				issues = append(issues, schema.Issue{
					Type:     IssueNaming,
					Severity: schema.SeverityHigh,
					Table:    t.Name,
					Column:   c.Name,
					Issue:    fmt.Sprintf("Columns '%s' and '%s' both become '%s'", first, c.Name, c.PgName),
					Action:   "Rename one of the columns before migrating",
				})
			} else {
				columnOwners[strings.ToLower(c.PgName)] = c.Name
			}
			if c.Name != c.PgName {
				issues = append(issues, schema.Issue{
					Type:     IssueNaming,
					Severity: schema.SeverityMedium,
					Table:    t.Name,
					Column:   c.Name,
					Issue:    fmt.Sprintf("Column name will change: '%s' -> '%s'", c.Name, c.PgName),
					Action:   "Update Power BI queries",
				})
			}
			if d.IsReserved(strings.ToLower(c.PgName)) {
				issues = append(issues, schema.Issue{
					Type:     IssueReservedWord,
					Severity: schema.SeverityHigh,
					Table:    t.Name,
					Column:   c.Name,
					Issue:    fmt.Sprintf("'%s' is a %s reserved word", c.PgName, target),
					Action:   "Rename column or use quoted identifiers",
				})
			}
			if dialect.IsBinaryType(c.Type) {
				issues = append(issues, schema.Issue{
					Type:     IssueDataType,
					Severity: schema.SeverityHigh,
					Table:    t.Name,
					Column:   c.Name,
					Issue:    "OLE Object field - may contain embedded files/images",
					Action:   "Decide how to handle binary data",
				})
			}
		}

		if t.PrimaryKey == "" {
			issues = append(issues, schema.Issue{
				Type:     IssueSchema,
				Severity: schema.SeverityMedium,
				Table:    t.Name,
				Issue:    "No primary key defined",
				Action:   fmt.Sprintf("Consider adding a primary key in %s", target),
			})
		}
	}

	if r.Queries.Count > 0 {
		issues = append(issues, schema.Issue{
			Type:     IssueQueries,
			Severity: schema.SeverityHigh,
			Issue:    fmt.Sprintf("%d saved queries found", r.Queries.Count),
			Action:   "Review and recreate as views or Power BI queries",
		})
	}
	return issues
}

// SummarizeIssues counts issues per severity. All three levels are always
// present in the map.
func SummarizeIssues(issues []schema.Issue) schema.IssueSummary {
	by := map[string]int{
		schema.SeverityHigh:   0,
		schema.SeverityMedium: 0,
		schema.SeverityLow:    0,
	}
	for _, i := range issues {
		by[i.Severity]++
	}
	return schema.IssueSummary{Count: len(issues), BySeverity: by, Details: issues}
}

// ClassifyDeadColumn decides whether a column carries no useful data.
// Checks run in order: always null, mostly null, single value.
func ClassifyDeadColumn(q schema.ColumnQuality, rows int, th Thresholds) (string, bool) {
	switch {
	case rows <= 0:
		return "", false
	case q.NullCount >= rows:
		return schema.DeadAlwaysNull, true
	case q.NullPercent > th.MostlyNullPercent:
		return schema.DeadMostlyNull, true
	case q.DistinctCount == 1 && rows > th.SingleValueMinRows:
		return schema.DeadSingleValue, true
	}
	return "", false
}

var deadActions = map[string]string{
	schema.DeadAlwaysNull:  "DROP - column is never populated",
	schema.DeadMostlyNull:  "REVIEW - rarely populated, consider dropping",
	schema.DeadSingleValue: "REVIEW - constant value, consider a default instead",
}

// FindDeadColumns classifies every profiled column.
func FindDeadColumns(quality []schema.TableQuality, th Thresholds) []schema.DeadColumn {
	dead := []schema.DeadColumn{}
	for _, tq := range quality {
		for _, cq := range tq.Columns {
			reason, ok := ClassifyDeadColumn(cq, tq.RowCount, th)
			if !ok {
				continue
			}
			dead = append(dead, schema.DeadColumn{
				Table:         tq.Table,
				Column:        cq.Column,
				Reason:        reason,
				NullPercent:   cq.NullPercent,
				DistinctCount: cq.DistinctCount,
				RowCount:      tq.RowCount,
				Action:        deadActions[reason],
			})
		}
	}
	return dead
}
