package domain

import "time"

// TestSuite groups test cases that run together against one warehouse.
type TestSuite struct {
	Name        string
	Description string
	Schedule    string // cron expression; empty means on-demand only
	Cases       []TestCase
}

// CaseResult pairs a test-case name with its evaluation result.
type CaseResult struct {
	TestCase string
	Result   TestCaseResult
}

// SuiteRun records one execution of a test suite.
type SuiteRun struct {
	ID         string
	SuiteName  string
	Status     TestCaseStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []CaseResult
}

// DeriveRunStatus folds case statuses into a run status: any Aborted wins,
// then any Failed, otherwise Success.
func DeriveRunStatus(results []CaseResult) TestCaseStatus {
	status := StatusSuccess
	for _, r := range results {
		switch r.Result.Status {
		case StatusAborted:
			return StatusAborted
		case StatusFailed:
			status = StatusFailed
		}
	}
	return status
}
