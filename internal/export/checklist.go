package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"mdb-audit/internal/schema"
)

// Estimated table status in the review checklist.
const (
	StatusDeprecated = "DEPRECATED"
	StatusActive     = "ACTIVE"
	StatusEmpty      = "EMPTY"
)

const (
	checklistSamples      = 3
	checklistSampleLength = 30
)

// IsDeprecated flags test copies, paste errors, xxx-prefixed and empty tables.
func IsDeprecated(t *schema.TableDetail) bool {
	name := strings.ToLower(t.Name)
	return strings.HasPrefix(name, "xxx") ||
		strings.Contains(name, "paste error") ||
		strings.Contains(name, "copy of") ||
		t.RowCount == 0
}

// TableStatus estimates whether a table is still in use.
func TableStatus(t *schema.TableDetail) string {
	switch {
	case IsDeprecated(t):
		return StatusDeprecated
	case t.RowCount > 0:
		return StatusActive
	default:
		return StatusEmpty
	}
}

// SuggestedPriority ranks a table by size alone.
func SuggestedPriority(rows int) string {
	switch {
	case rows > 100:
		return schema.SeverityHigh
	case rows > 20:
		return schema.SeverityMedium
	default:
		return schema.SeverityLow
	}
}

func tablesReview(r *schema.Report) Sheet {
	s := Sheet{
		Name: "Tables_Review",
		Headers: []string{
			"Table_Name_Access", "Table_Name_Target", "Row_Count", "Column_Count",
			"Name_Will_Change", "Estimated_Status", "Suggested_Priority", "Issues_Count",
			"DECISION_Keep_or_Discard", "DECISION_Final_Priority", "DECISION_Notes", "Used_in_PowerBI",
		},
		Widths: map[string]float64{
			"A": 35, "B": 35, "C": 12, "D": 12, "E": 15, "F": 15,
			"G": 18, "H": 12, "I": 22, "J": 22, "K": 40, "L": 18,
		},
	}
	for _, t := range r.TableDetails {
		s.Rows = append(s.Rows, []any{
			t.Name, t.PgName, t.RowCount, len(t.Columns),
			yesNo(t.Name != t.PgName), TableStatus(t), SuggestedPriority(t.RowCount), len(r.IssuesFor(t.Name)),
			"", "", "", "",
		})
	}
	return s
}

func columnsReview(r *schema.Report) Sheet {
	s := Sheet{
		Name: "Columns_Review",
		Headers: []string{
			"Table_Name", "Column_Name_Access", "Column_Name_Target", "Data_Type", "Size",
			"Nullable", "Name_Will_Change", "Has_Special_Characters", "Null_Percent",
			"Distinct_Count", "Sample_Values", "Suggested_Action",
			"DECISION_Keep_or_Discard", "DECISION_Notes",
		},
		Widths: map[string]float64{
			"A": 30, "B": 30, "C": 30, "D": 15, "E": 8, "F": 10, "G": 15,
			"H": 20, "I": 12, "J": 12, "K": 35, "L": 15, "M": 22, "N": 40,
		},
	}
	for _, t := range r.TableDetails {
		q := r.Quality(t.Name)
		for _, c := range t.Columns {
			var nullPct, distinct, samples any = "", "", ""
			if q != nil {
				if cq, ok := q.Column(c.Name); ok {
					nullPct, distinct, samples = cq.NullPercent, cq.DistinctCount, shortSamples(cq.SampleValues)
				}
			}
			action := "KEEP"
			if schema.IsGenericName(c.Name) {
				action = "REVIEW"
			}
			s.Rows = append(s.Rows, []any{
				t.Name, c.Name, c.PgName, c.Type, optionalInt(c.Size),
				yesNo(c.Nullable), yesNo(c.Name != c.PgName), yesNo(schema.HasSpecialChars(c.Name)),
				nullPct, distinct, samples, action, "", "",
			})
		}
	}
	return s
}

func shortSamples(values []string) string {
	if len(values) > checklistSamples {
		values = values[:checklistSamples]
	}
	out := make([]string, len(values))
	for i, v := range values {
		if r := []rune(v); len(r) > checklistSampleLength {
			v = string(r[:checklistSampleLength])
		}
		out[i] = v
	}
	return strings.Join(out, "; ")
}

func summaryDashboard(r *schema.Report, tables, columns Sheet) Sheet {
	var active, deprecated, empty int
	for _, row := range tables.Rows {
		switch row[5] {
		case StatusActive:
			active++
		case StatusDeprecated:
			deprecated++
		case StatusEmpty:
			empty++
		}
	}
	var renamed, special int
	for _, row := range columns.Rows {
		if row[6] == "YES" {
			renamed++
		}
		if row[7] == "YES" {
			special++
		}
	}
	by := r.PotentialIssues.BySeverity

	return Sheet{
		Name:    "Summary_Dashboard",
		Headers: []string{"Metric", "Count"},
		Widths:  map[string]float64{"A": 35, "B": 15},
		Rows: [][]any{
			{"Total Tables", len(r.TableDetails)},
			{"- Active Tables", active},
			{"- Deprecated/Test Tables", deprecated},
			{"- Empty Tables", empty},
			{"", ""},
			{"Total Columns", len(columns.Rows)},
			{"- Columns with Name Changes", renamed},
			{"- Columns with Special Characters", special},
			{"", ""},
			{"Total Data Rows", r.TotalRows()},
			{"", ""},
			{"Total Issues Identified", r.PotentialIssues.Count},
			{"- HIGH Severity", by[schema.SeverityHigh]},
			{"- MEDIUM Severity", by[schema.SeverityMedium]},
			{"- LOW Severity", by[schema.SeverityLow]},
		},
	}
}

var instructions = [][]any{
	{"PURPOSE", "This checklist helps you review all database objects before migration"},
	{"", ""},
	{"HOW TO USE", ""},
	{"1. Tables Review", "Review each table and fill in the DECISION columns:"},
	{"", "  - DECISION_Keep_or_Discard: Enter KEEP, DISCARD, or REVIEW"},
	{"", "  - DECISION_Final_Priority: Enter CRITICAL, HIGH, MEDIUM, or LOW"},
	{"", "  - DECISION_Notes: Add any comments or reasons"},
	{"", "  - Used_in_PowerBI: Enter YES or NO if you know"},
	{"", ""},
	{"2. Columns Review", "Review columns for tables you're keeping:"},
	{"", "  - DECISION_Keep_or_Discard: Enter KEEP or DISCARD"},
	{"", "  - DECISION_Notes: Note why you're discarding (if applicable)"},
	{"", ""},
	{"3. Look for", ""},
	{"", "  - Tables with 'xxx' prefix (usually test/deprecated)"},
	{"", "  - Tables with 0 rows (may be obsolete)"},
	{"", "  - 'Copy Of' or 'Paste Error' tables (backups/errors)"},
	{"", "  - Columns with generic names (F1, F2, F10)"},
	{"", "  - Columns that are always empty (high null %)"},
	{"", ""},
	{"4. Save", "Save this file and share with migration team"},
	{"", ""},
	{"SUGGESTED PRIORITIES", ""},
	{"", "  - CRITICAL: Core business data, used in production reports"},
	{"", "  - HIGH: Important data, used regularly"},
	{"", "  - MEDIUM: Reference data, used occasionally"},
	{"", "  - LOW: Archive data, rarely used"},
	{"", ""},
	{"QUESTIONS?", "Contact your migration team lead"},
}

func instructionsSheet() Sheet {
	return Sheet{
		Name:    "Instructions",
		Headers: []string{"Section", "Instructions"},
		Widths:  map[string]float64{"A": 20, "B": 80},
		Rows:    instructions,
	}
}

// ChecklistSheets builds the four review sheets.
func ChecklistSheets(r *schema.Report) []Sheet {
	tables := tablesReview(r)
	columns := columnsReview(r)
	return []Sheet{tables, columns, summaryDashboard(r, tables, columns), instructionsSheet()}
}

type dropdown struct {
	column string
	values []string
}

// WriteChecklist saves the stakeholder review workbook: highlighted
// decision columns with drop-down lists and a frozen header row.
func WriteChecklist(r *schema.Report, path string) error {
	sheets := ChecklistSheets(r)

	f := excelize.NewFile()
	defer f.Close()
	for i, s := range sheets {
		if err := writeSheet(f, s, i == 0); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	tables, columns, summary, help := sheets[0], sheets[1], sheets[2], sheets[3]

	if err := formatDecisions(f, tables, []string{"I", "J", "L"}, []string{"K"}); err != nil {
		return err
	}
	if err := addDropdowns(f, tables, []dropdown{
		{"I", []string{"KEEP", "DISCARD", "REVIEW"}},
		{"J", []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"}},
		{"L", []string{"YES", "NO", "UNKNOWN"}},
	}); err != nil {
		return err
	}

	if err := formatDecisions(f, columns, []string{"M"}, []string{"N"}); err != nil {
		return err
	}
	if err := addDropdowns(f, columns, []dropdown{{"M", []string{"KEEP", "DISCARD", "REVIEW"}}}); err != nil {
		return err
	}

	for _, s := range []Sheet{tables, columns} {
		if err := f.SetPanes(s.Name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}
	}

	if err := formatLabels(f, summary, &excelize.Alignment{}); err != nil {
		return err
	}
	if err := formatLabels(f, help, &excelize.Alignment{WrapText: true, Vertical: "top"}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// formatDecisions fills the user-editable columns. Dropdown columns get the
// bold orange font; free-text columns only the fill.
func formatDecisions(f *excelize.File, s Sheet, choice, free []string) error {
	if len(s.Rows) == 0 {
		return nil
	}
	last := len(s.Rows) + 1

	choiceStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{decisionColor}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: decisionFont, Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	freeStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{decisionColor}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for _, col := range choice {
		if err := f.SetCellStyle(s.Name, fmt.Sprintf("%s2", col), fmt.Sprintf("%s%d", col, last), choiceStyle); err != nil {
			return err
		}
	}
	for _, col := range free {
		if err := f.SetCellStyle(s.Name, fmt.Sprintf("%s2", col), fmt.Sprintf("%s%d", col, last), freeStyle); err != nil {
			return err
		}
	}
	return nil
}

func addDropdowns(f *excelize.File, s Sheet, lists []dropdown) error {
	last := len(s.Rows) + 1
	if last < 2 {
		last = 2
	}
	for _, l := range lists {
		dv := excelize.NewDataValidation(true)
		dv.Sqref = fmt.Sprintf("%s2:%s%d", l.column, l.column, last)
		if err := dv.SetDropList(l.values); err != nil {
			return err
		}
		dv.SetError(excelize.DataValidationErrorStyleStop, "Invalid Entry",
			"Please select "+joinChoices(l.values))
		if err := f.AddDataValidation(s.Name, dv); err != nil {
			return fmt.Errorf("validation on %s!%s: %w", s.Name, l.column, err)
		}
	}
	return nil
}

// joinChoices renders "A, B, or C".
func joinChoices(values []string) string {
	if len(values) < 2 {
		return strings.Join(values, "")
	}
	return strings.Join(values[:len(values)-1], ", ") + ", or " + values[len(values)-1]
}

// formatLabels bolds the first column and applies align to the second.
func formatLabels(f *excelize.File, s Sheet, align *excelize.Alignment) error {
	if len(s.Rows) == 0 {
		return nil
	}
	last := len(s.Rows) + 1
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 10}})
	if err != nil {
		return err
	}
	body, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Alignment: align})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.Name, "A2", fmt.Sprintf("A%d", last), bold); err != nil {
		return err
	}
	return f.SetCellStyle(s.Name, "B2", fmt.Sprintf("B%d", last), body)
}
