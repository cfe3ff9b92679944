package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aldomartell/tipply-backend/api/responses"
	"github.com/aldomartell/tipply-backend/api/validators"
	"github.com/aldomartell/tipply-backend/internal/ledger"
	pkgerrors "github.com/aldomartell/tipply-backend/pkg/errors"
	"github.com/aldomartell/tipply-backend/pkg/logger"
	"github.com/aldomartell/tipply-backend/pkg/pagination"
)

type statementReader interface {
	Statement(ctx context.Context, referrerID uuid.UUID, params pagination.Params) (*ledger.Statement, error)
}

// ReferrerLedger returns a referrer's balance and a page of ledger entries,
// newest first.
func ReferrerLedger(history statementReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger history unavailable"))
			return
		}

		referrerID, err := uuid.Parse(chi.URLParam(r, "referrerId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid referrer id"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		statement, err := history.Statement(r.Context(), referrerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, statement)
	}
}
