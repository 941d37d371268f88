package validation

import (
	"context"
	"log/slog"
	"time"

	"dataprobe/internal/domain"
	"dataprobe/internal/metrics"
	"dataprobe/internal/runner"
)

// ColumnValuesToBeNotNull asserts that a column contains no null values.
type ColumnValuesToBeNotNull struct {
	logger *slog.Logger
}

func (v *ColumnValuesToBeNotNull) Name() string { return "columnValuesToBeNotNull" }

func (v *ColumnValuesToBeNotNull) Validate(ctx context.Context, tc *domain.TestCase, executionTime time.Time, r *runner.QueryRunner) domain.TestCaseResult {
	col, err := resolveColumn(ctx, tc, r)
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.NullCount.Name, err)
	}

	row, err := r.SelectFirst(ctx, metrics.NullCount.Expr(col))
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.NullCount.Name, err)
	}
	nullCount, err := toFloat(row[metrics.NullCount.Name])
	if err != nil {
		return aborted(v.logger, tc, r.Table(), executionTime, metrics.NullCount.Name, err)
	}

	status := domain.StatusFailed
	if nullCount == 0 {
		status = domain.StatusSuccess
	}

	return domain.TestCaseResult{
		Timestamp: executionTime,
		Status:    status,
		Result:    "Found nullCount=" + renderValue(row[metrics.NullCount.Name]) + ". It should be 0.",
		Values:    []domain.TestResultValue{{Name: metrics.NullCount.Name, Value: strPtr(renderValue(row[metrics.NullCount.Name]))}},
	}
}
