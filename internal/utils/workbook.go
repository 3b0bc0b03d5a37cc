package utils

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WorkbookSummary describes the layout of an .xlsx workbook. It is shown
// next to an attachment and never used to accept or reject one.
type WorkbookSummary struct {
	Sheets []string
	// Rows is the number of rows in the first sheet
	Rows int
}

// String returns a short description such as "2 sheets, 120 rows"
func (s *WorkbookSummary) String() string {
	sheets := "sheets"
	if len(s.Sheets) == 1 {
		sheets = "sheet"
	}
	rows := "rows"
	if s.Rows == 1 {
		rows = "row"
	}
	return fmt.Sprintf("%d %s, %d %s", len(s.Sheets), sheets, s.Rows, rows)
}

// InspectWorkbook opens path as a workbook and counts its sheets and the
// rows of the first sheet
func InspectWorkbook(path string) (*WorkbookSummary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	summary := &WorkbookSummary{Sheets: f.GetSheetList()}
	if len(summary.Sheets) == 0 {
		return summary, nil
	}

	rows, err := f.Rows(summary.Sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", summary.Sheets[0], err)
	}
	defer rows.Close()

	for rows.Next() {
		summary.Rows++
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", summary.Sheets[0], err)
	}

	return summary, nil
}
