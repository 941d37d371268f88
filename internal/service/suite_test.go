package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprobe/internal/domain"
	"dataprobe/internal/validation"
)

var errTest = errors.New("test error")

// mockResultRepo is a function-field mock for domain.ResultRepository.
type mockResultRepo struct {
	mu        sync.Mutex
	created   []string
	completed []*domain.SuiteRun

	createFn   func(ctx context.Context, run *domain.SuiteRun) error
	completeFn func(ctx context.Context, run *domain.SuiteRun) error
}

func (m *mockResultRepo) CreateRun(ctx context.Context, run *domain.SuiteRun) error {
	m.mu.Lock()
	m.created = append(m.created, run.ID)
	m.mu.Unlock()
	if m.createFn != nil {
		return m.createFn(ctx, run)
	}
	return nil
}

func (m *mockResultRepo) CompleteRun(ctx context.Context, run *domain.SuiteRun) error {
	m.mu.Lock()
	m.completed = append(m.completed, run)
	m.mu.Unlock()
	if m.completeFn != nil {
		return m.completeFn(ctx, run)
	}
	return nil
}

func (m *mockResultRepo) ListRuns(context.Context, domain.RunFilter) ([]domain.SuiteRun, error) {
	return nil, nil
}

func (m *mockResultRepo) GetRun(context.Context, string) (*domain.SuiteRun, error) {
	return nil, domain.ErrNotFound("not implemented")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func warehouseDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE orders (id INTEGER, amount REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO orders VALUES (1, 50), (2, 100)`)
	require.NoError(t, err)
	return db
}

func mustCase(t *testing.T, name, def, ref string, params map[string]string) domain.TestCase {
	t.Helper()
	link, err := domain.ParseEntityLink(ref)
	require.NoError(t, err)
	tc := domain.TestCase{Name: name, Definition: def, EntityLink: link}
	for k, v := range params {
		tc.Parameters = append(tc.Parameters, domain.ParameterValue{Name: k, Value: v})
	}
	return tc
}

func TestSuiteService_RunSuite(t *testing.T) {
	t.Run("mixed_statuses", func(t *testing.T) {
		repo := &mockResultRepo{}
		svc := NewSuiteService(warehouseDB(t), validation.NewRegistry(testLogger()), repo, testLogger(), 2)

		suite := &domain.TestSuite{
			Name: "orders-quality",
			Cases: []domain.TestCase{
				mustCase(t, "sum_ok", "columnValuesSumToBeBetween", "<#E::table::orders::columns::amount>",
					map[string]string{"minValueForColSum": "100", "maxValueForColSum": "200"}),
				mustCase(t, "sum_low", "columnValuesSumToBeBetween", "<#E::table::orders::columns::amount>",
					map[string]string{"minValueForColSum": "151", "maxValueForColSum": "200"}),
				mustCase(t, "bad_column", "columnValuesSumToBeBetween", "<#E::table::orders::columns::nonexistent>",
					map[string]string{"minValueForColSum": "0", "maxValueForColSum": "1"}),
			},
		}

		run, err := svc.RunSuite(context.Background(), suite)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusAborted, run.Status, "any aborted case aborts the run")
		require.Len(t, run.Results, 3)
		assert.Equal(t, domain.StatusSuccess, run.Results[0].Result.Status)
		assert.Equal(t, domain.StatusFailed, run.Results[1].Result.Status)
		assert.Equal(t, domain.StatusAborted, run.Results[2].Result.Status)
		assert.False(t, run.FinishedAt.Before(run.StartedAt))

		require.Len(t, repo.completed, 1)
		assert.Equal(t, run.ID, repo.completed[0].ID)
	})

	t.Run("unknown_definition_aborts_case", func(t *testing.T) {
		repo := &mockResultRepo{}
		svc := NewSuiteService(warehouseDB(t), validation.NewRegistry(testLogger()), repo, testLogger(), 0)

		suite := &domain.TestSuite{
			Name: "orders-quality",
			Cases: []domain.TestCase{
				mustCase(t, "mystery", "noSuchRule", "<#E::table::orders::columns::amount>", nil),
			},
		}

		run, err := svc.RunSuite(context.Background(), suite)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusAborted, run.Status)
		assert.Contains(t, run.Results[0].Result.Result, "noSuchRule")
	})

	t.Run("empty_suite_rejected", func(t *testing.T) {
		repo := &mockResultRepo{}
		svc := NewSuiteService(warehouseDB(t), validation.NewRegistry(testLogger()), repo, testLogger(), 0)

		_, err := svc.RunSuite(context.Background(), &domain.TestSuite{Name: "empty"})

		require.Error(t, err)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Empty(t, repo.created)
	})

	t.Run("create_run_error_propagates", func(t *testing.T) {
		repo := &mockResultRepo{
			createFn: func(context.Context, *domain.SuiteRun) error { return errTest },
		}
		svc := NewSuiteService(warehouseDB(t), validation.NewRegistry(testLogger()), repo, testLogger(), 0)

		suite := &domain.TestSuite{
			Name: "orders-quality",
			Cases: []domain.TestCase{
				mustCase(t, "sum_ok", "columnValuesSumToBeBetween", "<#E::table::orders::columns::amount>",
					map[string]string{"minValueForColSum": "100", "maxValueForColSum": "200"}),
			},
		}

		_, err := svc.RunSuite(context.Background(), suite)

		require.Error(t, err)
		assert.ErrorIs(t, err, errTest)
	})

	t.Run("query_rate_limit_throttles", func(t *testing.T) {
		repo := &mockResultRepo{}
		svc := NewSuiteService(warehouseDB(t), validation.NewRegistry(testLogger()), repo, testLogger(), 2)
		svc.SetQueryRateLimit(40)

		cases := make([]domain.TestCase, 5)
		for i := range cases {
			cases[i] = mustCase(t, fmt.Sprintf("rows_%d", i), "tableRowCountToBeBetween",
				"<#E::table::orders>", map[string]string{"minValue": "1", "maxValue": "10"})
		}
		suite := &domain.TestSuite{Name: "orders-quality", Cases: cases}

		start := time.Now()
		run, err := svc.RunSuite(context.Background(), suite)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusSuccess, run.Status)
		// One shared bucket with burst 1 at 40 rps: four of the five queries
		// must each wait 25ms for a token, regardless of parallelism.
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("persist_failure_does_not_fail_run", func(t *testing.T) {
		repo := &mockResultRepo{
			completeFn: func(context.Context, *domain.SuiteRun) error { return errTest },
		}
		svc := NewSuiteService(warehouseDB(t), validation.NewRegistry(testLogger()), repo, testLogger(), 0)

		suite := &domain.TestSuite{
			Name: "orders-quality",
			Cases: []domain.TestCase{
				mustCase(t, "sum_ok", "columnValuesSumToBeBetween", "<#E::table::orders::columns::amount>",
					map[string]string{"minValueForColSum": "100", "maxValueForColSum": "200"}),
			},
		}

		run, err := svc.RunSuite(context.Background(), suite)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusSuccess, run.Status)
	})
}

func TestScheduler(t *testing.T) {
	repo := &mockResultRepo{}
	svc := NewSuiteService(warehouseDB(t), validation.NewRegistry(testLogger()), repo, testLogger(), 0)

	t.Run("registers_scheduled_suites", func(t *testing.T) {
		sched := NewScheduler(svc, testLogger())
		defer sched.Stop()

		err := sched.Start([]domain.TestSuite{
			{Name: "nightly", Schedule: "0 6 * * *"},
			{Name: "on-demand"},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"nightly"}, sched.Scheduled())
	})

	t.Run("invalid_schedule", func(t *testing.T) {
		sched := NewScheduler(svc, testLogger())
		defer sched.Stop()

		err := sched.Start([]domain.TestSuite{{Name: "broken", Schedule: "not-a-cron"}})

		require.Error(t, err)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}
