package controllers

import (
	"context"
	"net/http"

	"github.com/aldomartell/tipply-backend/api/responses"
	"github.com/aldomartell/tipply-backend/api/validators"
	"github.com/aldomartell/tipply-backend/internal/payouts"
	"github.com/aldomartell/tipply-backend/internal/rewards"
	pkgerrors "github.com/aldomartell/tipply-backend/pkg/errors"
	"github.com/aldomartell/tipply-backend/pkg/logger"
)

type evaluationRunner interface {
	Run(ctx context.Context) (*rewards.Summary, error)
}

type weeklyCycleRunner interface {
	RunWeekly(ctx context.Context, params payouts.GenerateParams) (*rewards.WeeklyRunResult, error)
}

// RunMilestones triggers one milestone evaluation pass.
func RunMilestones(svc evaluationRunner, logg *logger.Logger) http.HandlerFunc {
	return runEvaluation(svc, logg, "milestone")
}

// RunReversals triggers one reversal evaluation pass.
func RunReversals(svc evaluationRunner, logg *logger.Logger) http.HandlerFunc {
	return runEvaluation(svc, logg, "reversal")
}

func runEvaluation(svc evaluationRunner, logg *logger.Logger, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, kind+" evaluator unavailable"))
			return
		}
		summary, err := svc.Run(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// RunWeeklyCycle triggers the full weekly cycle: milestones, reversals, then
// payout batch generation. An optional body overrides the batch period.
func RunWeeklyCycle(runner weeklyCycleRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if runner == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "weekly runner unavailable"))
			return
		}

		var body generateBatchRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		result, err := runner.RunWeekly(r.Context(), payouts.GenerateParams{
			PeriodStart: body.PeriodStart,
			PeriodEnd:   body.PeriodEnd,
			Force:       body.Force,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
