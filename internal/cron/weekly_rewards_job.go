package cron

import (
	"context"
	"fmt"

	"github.com/aldomartell/tipply-backend/internal/payouts"
	"github.com/aldomartell/tipply-backend/internal/rewards"
	"github.com/aldomartell/tipply-backend/pkg/enums"
	"github.com/aldomartell/tipply-backend/pkg/logger"
	"github.com/aldomartell/tipply-backend/pkg/metrics"
	"go.uber.org/multierr"
)

type weeklyRunner interface {
	RunWeekly(ctx context.Context, params payouts.GenerateParams) (*rewards.WeeklyRunResult, error)
}

// WeeklyRewardsJobParams configures the scheduled reward cycle.
type WeeklyRewardsJobParams struct {
	Logger  *logger.Logger
	Runner  weeklyRunner
	Metrics *metrics.JobMetrics
}

// WeeklyRewardsJob runs milestone evaluation, reversal evaluation and payout
// batch generation on the cron cadence.
type WeeklyRewardsJob struct {
	logg    *logger.Logger
	runner  weeklyRunner
	metrics *metrics.JobMetrics
}

// NewWeeklyRewardsJob constructs the weekly reward cycle job.
func NewWeeklyRewardsJob(params WeeklyRewardsJobParams) (*WeeklyRewardsJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Runner == nil {
		return nil, fmt.Errorf("weekly runner required")
	}
	return &WeeklyRewardsJob{
		logg:    params.Logger,
		runner:  params.Runner,
		metrics: params.Metrics,
	}, nil
}

// Name implements Job.
func (j *WeeklyRewardsJob) Name() string { return "weekly_rewards" }

// Run implements Job.
func (j *WeeklyRewardsJob) Run(ctx context.Context) error {
	result, err := j.runner.RunWeekly(ctx, payouts.GenerateParams{})
	if err != nil {
		return err
	}

	if j.metrics != nil {
		j.metrics.AddLedgerEntries(string(enums.LedgerEntryTypeEarned), result.Milestones.Processed)
		j.metrics.AddLedgerEntries(string(enums.LedgerEntryTypeReversal), result.Reversals.Processed)
	}

	fields := map[string]any{
		"milestones_processed": result.Milestones.Processed,
		"reversals_processed":  result.Reversals.Processed,
	}
	if result.Batch != nil {
		fields["batch_number"] = result.Batch.Batch.BatchNumber
		fields["batch_net_cents"] = result.Batch.Batch.TotalNetCents
	}
	lctx := j.logg.WithFields(ctx, fields)
	j.logg.Info(lctx, "weekly reward cycle finished")

	// All writes behind these failures are committed or idempotent, so a
	// retried run only redoes the failed work.
	var errs []error
	if n := len(result.Milestones.Errors); n > 0 {
		errs = append(errs, fmt.Errorf("milestone evaluation: %d candidate failures", n))
	}
	if n := len(result.Reversals.Errors); n > 0 {
		errs = append(errs, fmt.Errorf("reversal evaluation: %d candidate failures", n))
	}
	if result.BatchError != "" {
		errs = append(errs, fmt.Errorf("payout batch generation: %s", result.BatchError))
	}
	return multierr.Combine(errs...)
}
