package verify

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/table"
	"go.uber.org/zap"

	"mdb-audit/internal/dialect"
	"mdb-audit/internal/schema"
)

// Result statuses.
const (
	StatusOK        = "OK"
	StatusRowCount  = "ROW_MISMATCH"
	StatusColumns   = "COLUMN_MISMATCH"
	StatusUnreached = "VERIFY_FAIL"
)

// Inspector reads the state of one migrated table on the target.
type Inspector interface {
	Count(ctx context.Context, table string) (int, error)
	Columns(ctx context.Context, table string) ([]string, error)
}

// DBInspector queries a live target database.
type DBInspector struct {
	DB      *sql.DB
	Dialect dialect.Dialect
	Schema  string
}

func (p *DBInspector) Count(ctx context.Context, table string) (int, error) {
	var n int
	if err := p.DB.QueryRowContext(ctx, p.Dialect.CountQuery(p.Schema, table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// Columns selects zero rows and reads the result set's column names.
func (p *DBInspector) Columns(ctx context.Context, table string) ([]string, error) {
	q := p.Dialect.GetLimitRowQuery("SELECT * FROM "+p.Dialect.QualifiedName(p.Schema, table), 0)
	rows, err := p.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", table, err)
	}
	defer rows.Close()
	return rows.Columns()
}

// Result compares one table of the snapshot with the target.
type Result struct {
	Table          string
	Target         string
	Expected       int
	Actual         int
	MissingColumns []string
	Status         string
	Error          string
}

// Compare checks the observed row count and column names against the
// snapshot. Column names compare case-insensitively.
func Compare(t *schema.TableDetail, rows int, columns []string) Result {
	res := Result{Table: t.Name, Target: t.PgName, Expected: t.RowCount, Actual: rows, Status: StatusOK}

	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[strings.ToLower(c)] = true
	}
	for _, c := range t.Columns {
		if !have[strings.ToLower(c.PgName)] {
			res.MissingColumns = append(res.MissingColumns, c.PgName)
		}
	}

	switch {
	case rows != t.RowCount:
		res.Status = StatusRowCount
	case len(res.MissingColumns) > 0:
		res.Status = StatusColumns
	}
	return res
}

// Run inspects every table in the report. Lookup failures become results with
// StatusUnreached; only a canceled context aborts the run.
func Run(ctx context.Context, r *schema.Report, p Inspector, log *zap.Logger) ([]Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([]Result, 0, len(r.TableDetails))
	for _, t := range r.TableDetails {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		rows, err := p.Count(ctx, t.PgName)
		if err != nil {
			log.Warn("count failed", zap.String("table", t.PgName), zap.Error(err))
			results = append(results, unreached(t, err))
			continue
		}
		cols, err := p.Columns(ctx, t.PgName)
		if err != nil {
			log.Warn("column lookup failed", zap.String("table", t.PgName), zap.Error(err))
			results = append(results, unreached(t, err))
			continue
		}

		res := Compare(t, rows, cols)
		log.Debug("verified", zap.String("table", t.PgName), zap.String("status", res.Status),
			zap.Int("expected", res.Expected), zap.Int("actual", res.Actual))
		results = append(results, res)
	}
	return results, nil
}

func unreached(t *schema.TableDetail, err error) Result {
	return Result{
		Table: t.Name, Target: t.PgName, Expected: t.RowCount,
		Status: StatusUnreached, Error: err.Error(),
	}
}

// Failed counts results that are not OK.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Status != StatusOK {
			n++
		}
	}
	return n
}

// Print renders the comparison table.
func Print(w io.Writer, results []Result) {
	tb := table.NewWriter()
	tb.SetStyle(table.StyleLight)
	tb.SetTitle("🔎 Target Verification")
	tb.AppendHeader(table.Row{"#", "Access Table", "Target Table", "Expected", "Actual", "Status", "Detail"})
	for i, r := range results {
		detail := r.Error
		if len(r.MissingColumns) > 0 {
			detail = "missing: " + strings.Join(r.MissingColumns, ", ")
		}
		icon := "✓"
		if r.Status != StatusOK {
			icon = "!"
		}
		tb.AppendRow(table.Row{i + 1, r.Table, r.Target, r.Expected, r.Actual, icon + " " + r.Status, detail})
	}
	tb.AppendFooter(table.Row{"", "", "", "", "", "FAILED", Failed(results)})
	fmt.Fprintln(w, tb.Render())
}
