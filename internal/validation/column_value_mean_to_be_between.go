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
	paramMinMean = "minValueForMeanInCol"
	paramMaxMean = "maxValueForMeanInCol"
)

// ColumnValueMeanToBeBetween asserts that the mean of a column's values falls
// within configured inclusive bounds.
type ColumnValueMeanToBeBetween struct {
	logger *slog.Logger
}

func (v *ColumnValueMeanToBeBetween) Name() string { return "columnValueMeanToBeBetween" }

func (v *ColumnValueMeanToBeBetween) Validate(ctx context.Context, tc *domain.TestCase, executionTime time.Time, r *runner.QueryRunner) domain.TestCaseResult {
	col, err := resolveColumn(ctx, tc, r)
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Mean.Name, err)
	}

	row, err := r.SelectFirst(ctx, metrics.Mean.Expr(col))
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Mean.Name, err)
	}
	meanValue := row[metrics.Mean.Name]

	min, max, err := boundParams(tc, paramMinMean, paramMaxMean)
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Mean.Name, err)
	}
	mean, err := toFloat(meanValue)
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.Mean.Name, err)
	}

	return domain.TestCaseResult{
		Timestamp: executionTime,
		Status:    classify(mean, min, max),
		Result: "Found mean=" + renderValue(meanValue) +
			" vs. the expected min=" + formatBound(min) + ", max=" + formatBound(max) + ".",
		Values: []domain.TestResultValue{{Name: metrics.Mean.Name, Value: strPtr(renderValue(meanValue))}},
	}
}
