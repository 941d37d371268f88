package domain

import "time"

// TestCaseStatus is the terminal status of a single test-case evaluation.
type TestCaseStatus string

const (
	// StatusSuccess means the asserted condition held.
	StatusSuccess TestCaseStatus = "Success"
	// StatusFailed means the condition was evaluated and did not hold.
	StatusFailed TestCaseStatus = "Failed"
	// StatusAborted means the test case could not be evaluated at all
	// (missing column, query failure, bad configuration).
	StatusAborted TestCaseStatus = "Aborted"
)

// TestResultValue is a named value computed during validation. Value is nil
// when the test case aborted before the metric could be computed.
type TestResultValue struct {
	Name  string
	Value *string
}

// TestCaseResult is the immutable outcome of one test-case evaluation.
// Validators always return one, even on failure; nothing escapes as an error.
type TestCaseResult struct {
	Timestamp time.Time
	Status    TestCaseStatus
	Result    string
	Values    []TestResultValue
}
