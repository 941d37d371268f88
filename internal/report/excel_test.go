package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dataprobe/internal/domain"
)

func strPtr(s string) *string { return &s }

func sampleRun() *domain.SuiteRun {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.SuiteRun{
		ID:         "run-1",
		SuiteName:  "orders_quality",
		Status:     domain.StatusFailed,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Results: []domain.CaseResult{
			{
				TestCase: "orders_amount_sum",
				Result: domain.TestCaseResult{
					Timestamp: started,
					Status:    domain.StatusSuccess,
					Result:    "Found sum=150 vs. the expected min=100.0, max=200.0.",
					Values:    []domain.TestResultValue{{Name: "sum", Value: strPtr("150")}},
				},
			},
			{
				TestCase: "orders_missing_column",
				Result: domain.TestCaseResult{
					Timestamp: started,
					Status:    domain.StatusAborted,
					Result:    "Error computing orders_missing_column for orders: column not found",
					Values:    []domain.TestResultValue{{Name: "sum", Value: nil}},
				},
			},
		},
	}
}

func TestWriteRunReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteRunReport(path, sampleRun()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Test Case", header)

	name, err := f.GetCellValue(sheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "orders_amount_sum", name)

	status, err := f.GetCellValue(sheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Aborted", status)

	values, err := f.GetCellValue(sheetName, "D3")
	require.NoError(t, err)
	assert.Equal(t, "sum=null", values)

	summary, err := f.GetCellValue(sheetName, "A5")
	require.NoError(t, err)
	assert.Equal(t, "Suite: orders_quality (run run-1)", summary)
}

func TestWriteRunReportEmptyRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	run := sampleRun()
	run.Results = nil
	run.Status = domain.StatusSuccess

	require.NoError(t, WriteRunReport(path, run))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	summary, err := f.GetCellValue(sheetName, "A5")
	require.NoError(t, err)
	assert.Contains(t, summary, "Test cases: 0")
}
