// Package repository persists suite runs and case results in the SQLite
// metastore.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"dataprobe/internal/domain"
)

const defaultListLimit = 50

// ResultRepo implements domain.ResultRepository over hand-written SQL.
type ResultRepo struct {
	db *sql.DB
}

func NewResultRepo(db *sql.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// CreateRun records the start of a suite run.
func (r *ResultRepo) CreateRun(ctx context.Context, run *domain.SuiteRun) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO suite_runs (id, suite_name, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.SuiteName, string(run.Status), run.StartedAt)
	if err != nil {
		return fmt.Errorf("insert suite run: %w", err)
	}
	return nil
}

// CompleteRun stores the final status and all case results in one transaction.
func (r *ResultRepo) CompleteRun(ctx context.Context, run *domain.SuiteRun) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`UPDATE suite_runs SET status = ?, finished_at = ? WHERE id = ?`,
		string(run.Status), run.FinishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("update suite run: %w", err)
	}

	for _, cr := range run.Results {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO case_results (run_id, test_case, status, result, executed_at) VALUES (?, ?, ?, ?, ?)`,
			run.ID, cr.TestCase, string(cr.Result.Status), cr.Result.Result, cr.Result.Timestamp)
		if err != nil {
			return fmt.Errorf("insert case result: %w", err)
		}
		caseID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("case result id: %w", err)
		}
		for _, v := range cr.Result.Values {
			var value interface{}
			if v.Value != nil {
				value = *v.Value
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO result_values (case_result_id, name, value) VALUES (?, ?, ?)`,
				caseID, v.Name, value); err != nil {
				return fmt.Errorf("insert result value: %w", err)
			}
		}
	}

	return tx.Commit()
}

// ListRuns returns recent runs, newest first, without case results.
func (r *ResultRepo) ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.SuiteRun, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, suite_name, status, started_at, finished_at FROM suite_runs`
	args := []interface{}{}
	if filter.SuiteName != "" {
		query += ` WHERE suite_name = ?`
		args = append(args, filter.SuiteName)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list suite runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var runs []domain.SuiteRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun returns one run with its case results and result values.
func (r *ResultRepo) GetRun(ctx context.Context, id string) (*domain.SuiteRun, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, suite_name, status, started_at, finished_at FROM suite_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound("suite run %s not found", id)
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, test_case, status, result, executed_at FROM case_results WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list case results: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	caseIDs := []int64{}
	for rows.Next() {
		var (
			caseID int64
			cr     domain.CaseResult
			status string
		)
		if err := rows.Scan(&caseID, &cr.TestCase, &status, &cr.Result.Result, &cr.Result.Timestamp); err != nil {
			return nil, fmt.Errorf("scan case result: %w", err)
		}
		cr.Result.Status = domain.TestCaseStatus(status)
		run.Results = append(run.Results, cr)
		caseIDs = append(caseIDs, caseID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, caseID := range caseIDs {
		values, err := r.caseValues(ctx, caseID)
		if err != nil {
			return nil, err
		}
		run.Results[i].Result.Values = values
	}
	return run, nil
}

func (r *ResultRepo) caseValues(ctx context.Context, caseID int64) ([]domain.TestResultValue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, value FROM result_values WHERE case_result_id = ? ORDER BY id`, caseID)
	if err != nil {
		return nil, fmt.Errorf("list result values: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var values []domain.TestResultValue
	for rows.Next() {
		var (
			v   domain.TestResultValue
			raw sql.NullString
		)
		if err := rows.Scan(&v.Name, &raw); err != nil {
			return nil, fmt.Errorf("scan result value: %w", err)
		}
		if raw.Valid {
			s := raw.String
			v.Value = &s
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*domain.SuiteRun, error) {
	var (
		run      domain.SuiteRun
		status   string
		finished sql.NullTime
	)
	if err := row.Scan(&run.ID, &run.SuiteName, &status, &run.StartedAt, &finished); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan suite run: %w", err)
	}
	run.Status = domain.TestCaseStatus(status)
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return &run, nil
}
