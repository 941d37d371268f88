// Package service orchestrates test-suite execution: it fans test cases out
// to validators, collects their results, and persists suite runs.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"dataprobe/internal/domain"
	"dataprobe/internal/runner"
	"dataprobe/internal/validation"
)

var (
	testCasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dataprobe_test_cases_total",
		Help: "Test case evaluations by terminal status.",
	}, []string{"status"})

	suiteRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dataprobe_suite_run_duration_seconds",
		Help:    "Wall-clock duration of suite runs.",
		Buckets: prometheus.DefBuckets,
	})
)

const defaultParallelism = 4

// SuiteService runs test suites against the warehouse connection.
type SuiteService struct {
	warehouse   *sql.DB
	registry    *validation.Registry
	results     domain.ResultRepository
	logger      *slog.Logger
	parallelism int
	limiter     *rate.Limiter // shared across all runners; nil disables
}

// NewSuiteService creates a SuiteService. parallelism <= 0 selects the
// default of 4 concurrent test cases.
func NewSuiteService(warehouse *sql.DB, registry *validation.Registry, results domain.ResultRepository, logger *slog.Logger, parallelism int) *SuiteService {
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	return &SuiteService{
		warehouse:   warehouse,
		registry:    registry,
		results:     results,
		logger:      logger,
		parallelism: parallelism,
	}
}

// SetQueryRateLimit throttles metric queries across the whole service. All
// runners draw from one token bucket, so concurrent and scheduled suites
// together cannot exceed rps queries per second. Non-positive rps disables
// throttling.
func (s *SuiteService) SetQueryRateLimit(rps float64) {
	if rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	} else {
		s.limiter = nil
	}
}

// RunSuite executes every test case of the suite with bounded parallelism.
// Validators never fail outward, so a run always completes with a full set
// of case results; persistence errors are reported after the fact.
func (s *SuiteService) RunSuite(ctx context.Context, suite *domain.TestSuite) (*domain.SuiteRun, error) {
	if len(suite.Cases) == 0 {
		return nil, domain.ErrValidation("suite %s has no test cases", suite.Name)
	}

	run := &domain.SuiteRun{
		ID:        uuid.NewString(),
		SuiteName: suite.Name,
		Status:    domain.StatusSuccess,
		StartedAt: time.Now().UTC(),
	}
	if err := s.results.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("record suite run: %w", err)
	}
	s.logger.Info("suite run started", "suite", suite.Name, "run", run.ID, "cases", len(suite.Cases))

	results := make([]domain.CaseResult, len(suite.Cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i := range suite.Cases {
		tc := &suite.Cases[i]
		idx := i
		g.Go(func() error {
			results[idx] = domain.CaseResult{
				TestCase: tc.Name,
				Result:   s.evaluate(gctx, tc),
			}
			testCasesTotal.WithLabelValues(string(results[idx].Result.Status)).Inc()
			return nil
		})
	}
	_ = g.Wait() // validators never return errors

	run.Results = results
	run.Status = domain.DeriveRunStatus(results)
	run.FinishedAt = time.Now().UTC()
	suiteRunDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())

	if err := s.results.CompleteRun(ctx, run); err != nil {
		s.logger.Warn("persist suite run failed", "suite", suite.Name, "run", run.ID, "error", err)
	}
	s.logger.Info("suite run finished",
		"suite", suite.Name,
		"run", run.ID,
		"status", run.Status,
		"duration", run.FinishedAt.Sub(run.StartedAt),
	)
	return run, nil
}

// evaluate runs one test case. Unknown definitions abort the case with the
// same uniform message shape validators use.
func (s *SuiteService) evaluate(ctx context.Context, tc *domain.TestCase) domain.TestCaseResult {
	executionTime := time.Now().UTC()
	v, ok := s.registry.Lookup(tc.Definition)
	if !ok {
		msg := fmt.Sprintf("Error computing %s for %s: unknown test definition %q",
			tc.Name, tc.EntityLink.Table, tc.Definition)
		s.logger.Warn(msg)
		return domain.TestCaseResult{
			Timestamp: executionTime,
			Status:    domain.StatusAborted,
			Result:    msg,
		}
	}

	opts := []runner.Option{}
	if s.limiter != nil {
		opts = append(opts, runner.WithLimiter(s.limiter))
	}
	r := runner.New(s.warehouse, tc.EntityLink.Table, opts...)
	return v.Validate(ctx, tc, executionTime, r)
}
