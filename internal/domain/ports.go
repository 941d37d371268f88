package domain

import "context"

// RunFilter narrows result listings.
type RunFilter struct {
	SuiteName string // empty matches all suites
	Limit     int    // 0 means repository default
}

// ResultRepository persists suite runs and their case results.
type ResultRepository interface {
	CreateRun(ctx context.Context, run *SuiteRun) error
	CompleteRun(ctx context.Context, run *SuiteRun) error
	ListRuns(ctx context.Context, filter RunFilter) ([]SuiteRun, error)
	GetRun(ctx context.Context, id string) (*SuiteRun, error)
}
