package jobs

import (
	"context"

	"go.uber.org/zap"
)

// SweepDueContracts starts confirmed rentals whose first day has arrived and
// completes active rentals whose period is over.
func (jr *JobRunner) SweepDueContracts() {
	jr.runWithRecovery("SweepDueContracts", func(ctx context.Context) {
		result, err := jr.contracts.SweepDue(ctx, jr.now().UTC())
		if err != nil {
			jr.logger.Error("failed to sweep due contracts", zap.Error(err))
			if result == nil {
				return
			}
		}

		jr.logger.Info("swept due contracts",
			zap.Int("started", result.Started),
			zap.Int("completed", result.Completed),
			zap.Int("failed", result.Failed),
		)
	})
}

// ReportContractStats logs contract counts by state.
func (jr *JobRunner) ReportContractStats() {
	jr.runWithRecovery("ReportContractStats", func(ctx context.Context) {
		stats, err := jr.contracts.ContractStats(ctx)
		if err != nil {
			jr.logger.Error("failed to load contract stats", zap.Error(err))
			return
		}

		fields := []zap.Field{zap.Int64("total", stats.TotalContracts)}
		for state, n := range stats.ByState {
			fields = append(fields, zap.Int64(state, n))
		}
		jr.logger.Info("contract stats", fields...)
	})
}
