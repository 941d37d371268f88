// Package validation implements the data-quality rules. Every rule shares
// the same shape: resolve the target from the test case's entity link, run
// one aggregate metric query through the runner, classify the outcome, and
// return a terminal result. Nothing escapes a validator as an error: all
// failure modes become an Aborted result.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"dataprobe/internal/domain"
	"dataprobe/internal/runner"
)

// Validator evaluates one test case against its bound table. Implementations
// are stateless and safe for concurrent use; each invocation issues exactly
// one query through the runner.
type Validator interface {
	// Name is the test-definition key the validator is registered under.
	Name() string
	// Validate never returns an error; every failure path is folded into a
	// terminal TestCaseResult.
	Validate(ctx context.Context, tc *domain.TestCase, executionTime time.Time, r *runner.QueryRunner) domain.TestCaseResult
}

// Registry maps test-definition names to validators.
type Registry struct {
	logger     *slog.Logger
	validators map[string]Validator
}

// NewRegistry creates a registry with all built-in rules registered.
func NewRegistry(logger *slog.Logger) *Registry {
	reg := &Registry{logger: logger, validators: map[string]Validator{}}
	reg.register(
		&ColumnValuesSumToBeBetween{logger: logger},
		&ColumnValuesToBeBetween{logger: logger},
		&ColumnValueMeanToBeBetween{logger: logger},
		&ColumnValuesToBeNotNull{logger: logger},
		&ColumnValuesToBeUnique{logger: logger},
		&TableRowCountToBeBetween{logger: logger},
	)
	return reg
}

func (reg *Registry) register(vs ...Validator) {
	for _, v := range vs {
		reg.validators[v.Name()] = v
	}
}

// Lookup returns the validator for the given test-definition name.
func (reg *Registry) Lookup(definition string) (Validator, bool) {
	v, ok := reg.validators[definition]
	return v, ok
}

// Definitions lists the registered test-definition names.
func (reg *Registry) Definitions() []string {
	out := make([]string, 0, len(reg.validators))
	for name := range reg.validators {
		out = append(out, name)
	}
	return out
}

// aborted builds the uniform Aborted result: a summarized message for the
// caller, full detail at debug level for operators, and a null result value.
func aborted(logger *slog.Logger, tc *domain.TestCase, table string, ts time.Time, valueName string, err error) domain.TestCaseResult {
	msg := fmt.Sprintf("Error computing %s for %s: %v", tc.Name, table, err)
	logger.Debug("test case aborted", "testCase", tc.Name, "table", table, "error", err)
	logger.Warn(msg)
	return domain.TestCaseResult{
		Timestamp: ts,
		Status:    domain.StatusAborted,
		Result:    msg,
		Values:    []domain.TestResultValue{{Name: valueName, Value: nil}},
	}
}

// resolveColumn extracts the column name from the test case's entity link and
// checks it exists on the runner's bound table. Absence is a validation
// failure, not a programming error.
func resolveColumn(ctx context.Context, tc *domain.TestCase, r *runner.QueryRunner) (string, error) {
	name := tc.EntityLink.Column
	if name == "" {
		name = domain.ColumnFromRef(tc.EntityLink.Raw)
	}

	cols, err := r.Columns(ctx)
	if err != nil {
		return "", err
	}
	for _, col := range cols {
		if col == name {
			return name, nil
		}
	}
	return "", &domain.ColumnNotFoundError{Column: name, TestCase: tc.Name}
}

// boundParams reads and parses the two bound parameters. A missing or
// unparsable parameter is a configuration error terminating the test case.
func boundParams(tc *domain.TestCase, minName, maxName string) (float64, float64, error) {
	min, err := floatParam(tc, minName)
	if err != nil {
		return 0, 0, err
	}
	max, err := floatParam(tc, maxName)
	if err != nil {
		return 0, 0, err
	}
	return min, max, nil
}

func floatParam(tc *domain.TestCase, name string) (float64, error) {
	raw, ok := tc.Parameter(name)
	if !ok {
		return 0, &domain.MissingParameterError{Parameter: name, TestCase: tc.Name}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %s is not numeric: %w", name, err)
	}
	return v, nil
}

// classify applies inclusive bounds.
func classify(value, min, max float64) domain.TestCaseStatus {
	if min <= value && value <= max {
		return domain.StatusSuccess
	}
	return domain.StatusFailed
}

// formatBound renders a bound the way operators configured it: integral
// values keep one decimal place so "100" reads back as "100.0".
func formatBound(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// renderValue renders a computed metric value as text.
func renderValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toFloat converts a metric value to float64 for bound comparison. A nil
// value means the metric produced no result (e.g. SUM over an empty table).
func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, fmt.Errorf("metric returned no value")
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("metric value %q is not numeric: %w", x, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("metric value %v (%T) is not numeric", v, v)
	}
}

func strPtr(s string) *string { return &s }
