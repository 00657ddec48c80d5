package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/drivehub/service-rental/internal/application"
)

// ContractSweeper is the part of the contract service the scheduled jobs drive.
type ContractSweeper interface {
	SweepDue(ctx context.Context, asOf time.Time) (*application.SweepResult, error)
	ContractStats(ctx context.Context) (*application.ContractStatsDTO, error)
}

// JobRunner coordinates all scheduled jobs.
type JobRunner struct {
	contracts ContractSweeper
	logger    *zap.Logger
	timeout   time.Duration
	now       func() time.Time
}

// NewJobRunner creates a new job runner. Each job run is bounded by timeout.
func NewJobRunner(contracts ContractSweeper, timeout time.Duration, logger *zap.Logger) *JobRunner {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &JobRunner{
		contracts: contracts,
		logger:    logger.Named("jobs"),
		timeout:   timeout,
		now:       time.Now,
	}
}

// runWithRecovery wraps job execution with panic recovery.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			jr.logger.Error("job panicked", zap.String("job", jobName), zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	start := jr.now()
	jr.logger.Info("starting job", zap.String("job", jobName))
	jobFunc(ctx)
	jr.logger.Info("job completed",
		zap.String("job", jobName),
		zap.Duration("elapsed", jr.now().Sub(start)),
	)
}

// RunAll runs every job once (for manual execution).
func (jr *JobRunner) RunAll() {
	jr.SweepDueContracts()
	jr.ReportContractStats()
}
