package validation

import (
	"context"
	"log/slog"
	"time"

	"dataprobe/internal/domain"
	"dataprobe/internal/metrics"
	"dataprobe/internal/runner"
)

// Parameter names for the sum-between rule.
const (
	paramMinColSum = "minValueForColSum"
	paramMaxColSum = "maxValueForColSum"
)

// ColumnValuesSumToBeBetween asserts that the aggregate SUM of a column falls
// within configured inclusive bounds.
type ColumnValuesSumToBeBetween struct {
	logger *slog.Logger
}

func (v *ColumnValuesSumToBeBetween) Name() string { return "columnValuesSumToBeBetween" }

func (v *ColumnValuesSumToBeBetween) Validate(ctx context.Context, tc *domain.TestCase, executionTime time.Time, r *runner.QueryRunner) domain.TestCaseResult {
	col, err := resolveColumn(ctx, tc, r)
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Sum.Name, err)
	}

	row, err := r.SelectFirst(ctx, metrics.Sum.Expr(col))
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Sum.Name, err)
	}
	sumValue := row[metrics.Sum.Name]

	min, max, err := boundParams(tc, paramMinColSum, paramMaxColSum)
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Sum.Name, err)
	}
	sum, err := toFloat(sumValue)
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Sum.Name, err)
	}

	return domain.TestCaseResult{
		Timestamp: executionTime,
		Status:    classify(sum, min, max),
		Result: "Found sum=" + renderValue(sumValue) +
			" vs. the expected min=" + formatBound(min) + ", max=" + formatBound(max) + ".",
		Values: []domain.TestResultValue{{Name: metrics.Sum.Name, Value: strPtr(renderValue(sumValue))}},
	}
}
