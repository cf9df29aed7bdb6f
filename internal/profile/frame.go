package profile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// nullTokens are the markers read as missing values, matching the defaults
// spreadsheet tooling applies to mdb-export CSV.
var nullTokens = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

// Frame is a fully materialized table export.
type Frame struct {
	Columns []string
	rows    [][]string
	nulls   [][]bool
	index   map[string]int
}

// NewFrame builds a frame from a header and raw rows, applying the null
// markers. Short rows are padded with nulls.
func NewFrame(columns []string, rows [][]string) *Frame {
	f := &Frame{
		Columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := f.index[c]; !dup {
			f.index[c] = i
		}
	}
	for _, r := range rows {
		row := make([]string, len(columns))
		null := make([]bool, len(columns))
		for i := range columns {
			if i < len(r) && !nullTokens[r[i]] {
				row[i] = r[i]
			} else {
				null[i] = true
			}
		}
		f.rows = append(f.rows, row)
		f.nulls = append(f.nulls, null)
	}
	return f
}

// ParseCSV reads mdb-export output: a header line followed by data rows.
// Empty input yields an empty frame.
func ParseCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return NewFrame(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return NewFrame(header, rows), nil
}

// Len is the number of data rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Has reports whether the export contains the column.
func (f *Frame) Has(column string) bool {
	_, ok := f.index[column]
	return ok
}

// Value returns the cell at row/column and whether it is non-null.
func (f *Frame) Value(row int, column string) (string, bool) {
	i, ok := f.index[column]
	if !ok || f.nulls[row][i] {
		return "", false
	}
	return f.rows[row][i], true
}

// ValueSet returns the canonical non-null values of a column.
func (f *Frame) ValueSet(column string) map[string]struct{} {
	set := make(map[string]struct{})
	for row := range f.rows {
		if v, ok := f.Value(row, column); ok {
			set[Canonical(v)] = struct{}{}
		}
	}
	return set
}

// Canonical trims a value and folds integral numbers to one spelling so
// "7", "7.0" and " 7" compare equal across tables.
// Integers are parsed exactly; a float spelling folds only while float64
// still holds every integer in range.
func Canonical(v string) string {
	v = strings.TrimSpace(v)
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && math.Abs(f) <= maxExactFloat && f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return v
}

// maxExactFloat is 2^53, the largest magnitude below which float64 is exact
// for integers.
const maxExactFloat = 1 << 53
