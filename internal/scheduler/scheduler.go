package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/drivehub/service-rental/internal/jobs"
)

// Schedules holds the cron expressions (with seconds) for each job.
type Schedules struct {
	SweepDueContracts   string
	ReportContractStats string
}

// Scheduler manages cron job scheduling.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *jobs.JobRunner
	logger *zap.Logger
}

// NewScheduler creates a new scheduler and registers every job. An empty
// schedule disables that job.
func NewScheduler(jobRunner *jobs.JobRunner, schedules Schedules, logger *zap.Logger) (*Scheduler, error) {
	// UTC so day boundaries match the contract calendar.
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{
		cron:   c,
		jobs:   jobRunner,
		logger: logger.Named("scheduler"),
	}

	if err := s.registerJobs(schedules); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs(schedules Schedules) error {
	entries := []struct {
		name  string
		sched string
		fn    func()
	}{
		{"SweepDueContracts", schedules.SweepDueContracts, s.jobs.SweepDueContracts},
		{"ReportContractStats", schedules.ReportContractStats, s.jobs.ReportContractStats},
	}

	for _, e := range entries {
		if e.sched == "" {
			s.logger.Info("job disabled", zap.String("job", e.name))
			continue
		}
		if _, err := s.cron.AddFunc(e.sched, e.fn); err != nil {
			return fmt.Errorf("failed to register %s job with schedule %q: %w", e.name, e.sched, err)
		}
		s.logger.Info("job registered", zap.String("job", e.name), zap.String("schedule", e.sched))
	}
	return nil
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cron scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("cron scheduler stopped")
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
