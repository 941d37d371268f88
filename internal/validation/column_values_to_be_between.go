package validation

import (
	"context"
	"log/slog"
	"time"

	"dataprobe/internal/domain"
	"dataprobe/internal/metrics"
	"dataprobe/internal/runner"
)

const (
	paramMinValue = "minValue"
	paramMaxValue = "maxValue"
)

// ColumnValuesToBeBetween asserts that every value of a column falls within
// configured inclusive bounds, checked via the column's MIN and MAX.
type ColumnValuesToBeBetween struct {
	logger *slog.Logger
}

func (v *ColumnValuesToBeBetween) Name() string { return "columnValuesToBeBetween" }

func (v *ColumnValuesToBeBetween) Validate(ctx context.Context, tc *domain.TestCase, executionTime time.Time, r *runner.QueryRunner) domain.TestCaseResult {
	col, err := resolveColumn(ctx, tc, r)
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Min.Name, err)
	}

	row, err := r.SelectFirst(ctx, metrics.Min.Expr(col), metrics.Max.Expr(col))
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Min.Name, err)
	}

	minBound, maxBound, err := boundParams(tc, paramMinValue, paramMaxValue)
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Min.Name, err)
	}
	minValue, err := toFloat(row[metrics.Min.Name])
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Min.Name, err)
	}
	maxValue, err := toFloat(row[metrics.Max.Name])
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Max.Name, err)
	}

	status := domain.StatusFailed
	if minBound <= minValue && maxValue <= maxBound {
		status = domain.StatusSuccess
	}

	return domain.TestCaseResult{
		Timestamp: executionTime,
		Status:    status,
		Result: "Found min=" + renderValue(row[metrics.Min.Name]) +
			", max=" + renderValue(row[metrics.Max.Name]) +
			" vs. the expected min=" + formatBound(minBound) + ", max=" + formatBound(maxBound) + ".",
		Values: []domain.TestResultValue{
			{Name: metrics.Min.Name, Value: strPtr(renderValue(row[metrics.Min.Name]))},
			{Name: metrics.Max.Name, Value: strPtr(renderValue(row[metrics.Max.Name]))},
		},
	}
}
