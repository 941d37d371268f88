package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"dataprobe/internal/domain"
)

// Scheduler manages cron-based suite execution.
type Scheduler struct {
	cron    *cron.Cron
	svc     *SuiteService
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string]cron.EntryID // suite name → cron entry
}

// NewScheduler creates a new suite scheduler.
func NewScheduler(svc *SuiteService, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		svc:     svc,
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

// Start registers every suite that carries a cron schedule and starts the
// scheduler. Suites without a schedule are skipped.
func (s *Scheduler) Start(suites []domain.TestSuite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range suites {
		suite := suites[i]
		if suite.Schedule == "" {
			continue
		}
		entryID, err := s.cron.AddFunc(suite.Schedule, func() {
			if _, err := s.svc.RunSuite(context.Background(), &suite); err != nil {
				s.logger.Warn("scheduled suite run failed", "suite", suite.Name, "error", err)
			}
		})
		if err != nil {
			return domain.ErrValidation("suite %s has invalid schedule %q: %v", suite.Name, suite.Schedule, err)
		}
		s.entries[suite.Name] = entryID
		s.logger.Info("suite scheduled", "suite", suite.Name, "schedule", suite.Schedule)
	}

	s.cron.Start()
	s.logger.Info("suite scheduler started", "suites", len(s.entries))
	return nil
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("suite scheduler stopped")
}

// Scheduled returns the names of suites with an active cron entry.
func (s *Scheduler) Scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}
