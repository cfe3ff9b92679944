package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aldomartell/tipply-backend/api/controllers"
	"github.com/aldomartell/tipply-backend/api/middleware"
	"github.com/aldomartell/tipply-backend/internal/ledger"
	"github.com/aldomartell/tipply-backend/internal/milestones"
	"github.com/aldomartell/tipply-backend/internal/payouts"
	"github.com/aldomartell/tipply-backend/internal/reversals"
	"github.com/aldomartell/tipply-backend/internal/rewards"
	"github.com/aldomartell/tipply-backend/pkg/config"
	"github.com/aldomartell/tipply-backend/pkg/logger"
	"github.com/aldomartell/tipply-backend/pkg/pagination"
	"github.com/google/uuid"
)

type statementReader interface {
	Statement(ctx context.Context, referrerID uuid.UUID, params pagination.Params) (*ledger.Statement, error)
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         controllers.Pinger
	Redis      controllers.Pinger
	Milestones milestones.Service
	Reversals  reversals.Service
	Payouts    payouts.Service
	Runner     *rewards.Runner
	Ledger     statementReader
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    deps.Redis,
		}))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/rewards", func(r chi.Router) {
			r.Post("/milestones/run", controllers.RunMilestones(deps.Milestones, logg))
			r.Post("/reversals/run", controllers.RunReversals(deps.Reversals, logg))
			r.With(middleware.RequireAdmin(logg)).Post("/run", controllers.RunWeeklyCycle(deps.Runner, logg))
		})

		r.Route("/payouts/batches", func(r chi.Router) {
			r.Post("/", controllers.GeneratePayoutBatch(deps.Payouts, logg))
			r.Get("/{batchId}", controllers.GetPayoutBatch(deps.Payouts, logg))
		})

		r.Get("/referrers/{referrerId}/ledger", controllers.ReferrerLedger(deps.Ledger, logg))
		r.Post("/fees/quote", controllers.QuoteFees(cfg.Payouts, logg))
	})

	return r
}
