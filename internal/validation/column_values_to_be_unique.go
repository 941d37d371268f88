package validation

import (
	"context"
	"log/slog"
	"time"

	"dataprobe/internal/domain"
	"dataprobe/internal/metrics"
	"dataprobe/internal/runner"
)

// ColumnValuesToBeUnique asserts that a column holds no duplicate values:
// the non-null value count must equal the distinct count.
type ColumnValuesToBeUnique struct {
	logger *slog.Logger
}

func (v *ColumnValuesToBeUnique) Name() string { return "columnValuesToBeUnique" }

func (v *ColumnValuesToBeUnique) Validate(ctx context.Context, tc *domain.TestCase, executionTime time.Time, r *runner.QueryRunner) domain.TestCaseResult {
	col, err := resolveColumn(ctx, tc, r)
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Count.Name, err)
	}

	row, err := r.SelectFirst(ctx, metrics.Count.Expr(col), metrics.DistinctCount.Expr(col))
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Count.Name, err)
	}
	count, err := toFloat(row[metrics.Count.Name])
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Count.Name, err)
	}
	distinct, err := toFloat(row[metrics.DistinctCount.Name])
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.DistinctCount.Name, err)
	}

	status := domain.StatusFailed
	if count == distinct {
		status = domain.StatusSuccess
	}

	return domain.TestCaseResult{
		Timestamp: executionTime,
		Status:    status,
		Result: "Found valuesCount=" + renderValue(row[metrics.Count.Name]) +
			" vs. uniqueCount=" + renderValue(row[metrics.DistinctCount.Name]) +
			". Both counts should be equal.",
		Values: []domain.TestResultValue{
			{Name: metrics.Count.Name, Value: strPtr(renderValue(row[metrics.Count.Name]))},
			{Name: metrics.DistinctCount.Name, Value: strPtr(renderValue(row[metrics.DistinctCount.Name]))},
		},
	}
}
