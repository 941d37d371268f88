// Package report renders suite runs as XLSX workbooks for operators who
// want offline data-quality reports.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dataprobe/internal/domain"
)

const (
	sheetName          = "Results"
	defaultColumnWidth = 24

	failedBgColor  = "FF5900"
	abortedBgColor = "FFEB9C"
)

var headers = []string{"Test Case", "Status", "Result", "Values", "Executed At"}

// WriteRunReport writes one suite run to an XLSX file at path.
func WriteRunReport(path string, run *domain.SuiteRun) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for col := 'A'; col < 'A'+rune(len(headers)); col++ {
		name := string(col)
		_ = f.SetColWidth(sheetName, name, name, defaultColumnWidth)
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	failedStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{failedBgColor}},
	})
	abortedStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{abortedBgColor}},
	})

	for i, cr := range run.Results {
		row := i + 2
		writeCaseRow(f, row, cr)
		switch cr.Result.Status {
		case domain.StatusFailed:
			_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), failedStyle)
		case domain.StatusAborted:
			_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), abortedStyle)
		}
	}

	writeSummary(f, len(run.Results)+3, run)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func writeCaseRow(f *excelize.File, row int, cr domain.CaseResult) {
	values := make([]string, 0, len(cr.Result.Values))
	for _, v := range cr.Result.Values {
		rendered := "null"
		if v.Value != nil {
			rendered = *v.Value
		}
		values = append(values, v.Name+"="+rendered)
	}

	cells := []interface{}{
		cr.TestCase,
		string(cr.Result.Status),
		cr.Result.Result,
		strings.Join(values, ", "),
		cr.Result.Timestamp.Format(time.RFC3339),
	}
	for i, cell := range cells {
		_ = f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+i, row), cell)
	}
}

func writeSummary(f *excelize.File, startRow int, run *domain.SuiteRun) {
	var failed, aborted int
	for _, cr := range run.Results {
		switch cr.Result.Status {
		case domain.StatusFailed:
			failed++
		case domain.StatusAborted:
			aborted++
		}
	}

	lines := []string{
		fmt.Sprintf("Suite: %s (run %s)", run.SuiteName, run.ID),
		fmt.Sprintf("Status: %s", run.Status),
		fmt.Sprintf("Test cases: %d (failed: %d, aborted: %d)", len(run.Results), failed, aborted),
		fmt.Sprintf("Duration: %s", run.FinishedAt.Sub(run.StartedAt)),
	}
	for i, line := range lines {
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", startRow+i), line)
	}
}
