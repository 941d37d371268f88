package validation

import (
	"context"
	"log/slog"
	"time"

	"dataprobe/internal/domain"
	"dataprobe/internal/metrics"
	"dataprobe/internal/runner"
)

// TableRowCountToBeBetween asserts that the table's row count falls within
// configured inclusive bounds. A table-level rule: no column is resolved.
type TableRowCountToBeBetween struct {
	logger *slog.Logger
}

func (v *TableRowCountToBeBetween) Name() string { return "tableRowCountToBeBetween" }

func (v *TableRowCountToBeBetween) Validate(ctx context.Context, tc *domain.TestCase, executionTime time.Time, r *runner.QueryRunner) domain.TestCaseResult {
	row, err := r.SelectFirst(ctx, metrics.RowCount.Expr(""))
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.RowCount.Name, err)
	}
	rowCountValue := row[metrics.RowCount.Name]

	min, max, err := boundParams(tc, paramMinValue, paramMaxValue)
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.RowCount.Name, err)
	}
	rowCount, err := toFloat(rowCountValue)
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.RowCount.Name, err)
	}

	return domain.TestCaseResult{
		Timestamp: executionTime,
		Status:    classify(rowCount, min, max),
		Result: "Found rowCount=" + renderValue(rowCountValue) +
			" vs. the expected min=" + formatBound(min) + ", max=" + formatBound(max) + ".",
		Values: []domain.TestResultValue{{Name: metrics.RowCount.Name, Value: strPtr(renderValue(rowCountValue))}},
	}
}
