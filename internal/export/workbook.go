package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet: a header row followed by data rows.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
	Widths  map[string]float64
}

const (
	headerColor   = "366092"
	decisionColor = "FFF2CC"
	decisionFont  = "C65911"
)

// headerStyle is the dark blue, bold white header used on every sheet.
func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

// writeSheet fills a worksheet, creating it unless it is the workbook's
// default first sheet, and styles the header row.
func writeSheet(f *excelize.File, s Sheet, first bool) error {
	if first {
		if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
			return fmt.Errorf("renaming sheet: %w", err)
		}
	} else if _, err := f.NewSheet(s.Name); err != nil {
		return fmt.Errorf("creating sheet %s: %w", s.Name, err)
	}

	header := make([]any, len(s.Headers))
	for i, h := range s.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
		return err
	}
	for i, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
			return fmt.Errorf("writing row %d of %s: %w", i+2, s.Name, err)
		}
	}

	if len(s.Headers) > 0 {
		style, err := headerStyle(f)
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(s.Headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(s.Name, "A1", last, style); err != nil {
			return err
		}
	}

	for col, width := range s.Widths {
		if err := f.SetColWidth(s.Name, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

// WriteWorkbook saves the sheets, in order, as one xlsx file.
func WriteWorkbook(path string, sheets ...Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if err := writeSheet(f, s, i == 0); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func optionalInt(p *int) any {
	if p == nil {
		return ""
	}
	return *p
}
