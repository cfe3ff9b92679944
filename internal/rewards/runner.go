package rewards

import (
	"context"
	"fmt"

	"github.com/aldomartell/tipply-backend/internal/payouts"
	"github.com/aldomartell/tipply-backend/pkg/logger"
)

type evaluator interface {
	Run(ctx context.Context) (*Summary, error)
}

type batchGenerator interface {
	Generate(ctx context.Context, params payouts.GenerateParams) (*payouts.BatchResult, error)
}

// WeeklyRunResult bundles the three stages of the weekly reward cycle.
type WeeklyRunResult struct {
	Milestones *Summary             `json:"milestones"`
	Reversals  *Summary             `json:"reversals"`
	Batch      *payouts.BatchResult `json:"batch,omitempty"`
	BatchError string               `json:"batch_error,omitempty"`
}

// Runner drives the weekly cycle: milestone evaluation, reversal evaluation,
// then payout batch generation. Milestones run first so fresh rewards are
// visible to the reversal pass, and both run before batch generation so
// eligibility reflects them.
type Runner struct {
	milestones evaluator
	reversals  evaluator
	batches    batchGenerator
	logg       *logger.Logger
}

// RunnerParams groups dependencies for the weekly runner.
type RunnerParams struct {
	Milestones evaluator
	Reversals  evaluator
	Batches    batchGenerator
	Logger     *logger.Logger
}

// NewRunner builds the weekly cycle runner.
func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Milestones == nil {
		return nil, fmt.Errorf("milestone evaluator required")
	}
	if params.Reversals == nil {
		return nil, fmt.Errorf("reversal evaluator required")
	}
	if params.Batches == nil {
		return nil, fmt.Errorf("batch generator required")
	}
	return &Runner{
		milestones: params.Milestones,
		reversals:  params.Reversals,
		batches:    params.Batches,
		logg:       params.Logger,
	}, nil
}

// RunWeekly executes the full cycle. A zero params value targets the default
// reporting period. Evaluator failures abort the run; a batch generation
// failure is reported in the result rather than returned, since the
// evaluator writes before it are already committed.
func (r *Runner) RunWeekly(ctx context.Context, params payouts.GenerateParams) (*WeeklyRunResult, error) {
	milestoneSummary, err := r.milestones.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("milestone evaluation: %w", err)
	}
	r.logStage(ctx, "milestone evaluation finished", milestoneSummary)

	reversalSummary, err := r.reversals.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("reversal evaluation: %w", err)
	}
	r.logStage(ctx, "reversal evaluation finished", reversalSummary)

	result := &WeeklyRunResult{
		Milestones: milestoneSummary,
		Reversals:  reversalSummary,
	}

	batch, err := r.batches.Generate(ctx, params)
	if err != nil {
		result.BatchError = err.Error()
		if r.logg != nil {
			r.logg.Error(ctx, "payout batch generation failed", err)
		}
		return result, nil
	}
	result.Batch = batch
	return result, nil
}

func (r *Runner) logStage(ctx context.Context, msg string, summary *Summary) {
	if r.logg == nil {
		return
	}
	lctx := r.logg.WithFields(ctx, map[string]any{
		"candidates":   summary.Candidates,
		"processed":    summary.Processed,
		"total_amount": summary.TotalAmountCents,
		"errors":       len(summary.Errors),
	})
	r.logg.Info(lctx, msg)
}
