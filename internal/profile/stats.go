package profile

import (
	"math"

	"mdb-audit/internal/schema"
)

// Options bound the sample values kept per column.
type Options struct {
	SampleValues int
	SampleLength int
}

// DefaultOptions keeps five samples of at most fifty characters.
var DefaultOptions = Options{SampleValues: 5, SampleLength: 50}

// Percent returns 100*part/total rounded to two decimals, or 0 when total
// is 0.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}

// ProfileColumn computes null and distinct statistics for one column. A
// column missing from the export reports zeros.
func ProfileColumn(f *Frame, column string, opts Options) schema.ColumnQuality {
	q := schema.ColumnQuality{Column: column, SampleValues: []string{}}
	if !f.Has(column) {
		return q
	}

	seen := make(map[string]bool)
	for row := 0; row < f.Len(); row++ {
		v, ok := f.Value(row, column)
		if !ok {
			q.NullCount++
			continue
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		if len(q.SampleValues) < opts.SampleValues {
			q.SampleValues = append(q.SampleValues, truncate(v, opts.SampleLength))
		}
	}

	q.DistinctCount = len(seen)
	q.NullPercent = Percent(q.NullCount, f.Len())
	return q
}

// ProfileTable profiles the given columns of an exported table.
func ProfileTable(table string, columns []schema.ColumnInfo, f *Frame, opts Options) schema.TableQuality {
	tq := schema.TableQuality{
		Table:    table,
		RowCount: f.Len(),
		Columns:  make([]schema.ColumnQuality, 0, len(columns)),
	}
	for _, c := range columns {
		tq.Columns = append(tq.Columns, ProfileColumn(f, c.Name, opts))
	}
	return tq
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}
